package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidtube/backend/internal/application"
	"github.com/vidtube/backend/pkg/response"
)

func statusOf(err error) int {
	switch application.KindOf(err) {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindConflict:
		return http.StatusConflict
	case application.KindNotFound:
		return http.StatusNotFound
	case application.KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail renders an application error through the uniform envelope.
func fail(c *gin.Context, err error) {
	response.Error[any](c, statusOf(err), err.Error(), nil)
}
