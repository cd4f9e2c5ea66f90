package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vidtube/backend/pkg/helpers"
	"github.com/vidtube/backend/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth reads the accessToken cookie (or a Bearer header), validates it, and
// injects the user id into the Gin context. The access token is stateless;
// session revocation happens through the stored refresh token.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the user id when a valid access token is present but lets
// anonymous requests through. Used by public endpoints whose response varies
// with the viewer (channel profile isSubscribed flag).
func OptionalAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c); token != "" {
			if claims, err := jwt.ParseAccessToken(token); err == nil {
				c.Set(CtxUserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
