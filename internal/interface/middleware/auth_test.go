package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/pkg/helpers"
)

func authRouter(jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", Auth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	r.GET("/maybe", OptionalAuth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	jwt := helpers.NewJWTManager("a-secret", "r-secret", time.Minute, time.Hour)
	r := authRouter(jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsCookieAndBearer(t *testing.T) {
	jwt := helpers.NewJWTManager("a-secret", "r-secret", time.Minute, time.Hour)
	r := authRouter(jwt)

	token, _, err := jwt.GenerateAccessToken("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}

func TestAuthRejectsRefreshTokenAsAccess(t *testing.T) {
	jwt := helpers.NewJWTManager("a-secret", "r-secret", time.Minute, time.Hour)
	r := authRouter(jwt)

	refresh, _, err := jwt.GenerateRefreshToken("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	jwt := helpers.NewJWTManager("a-secret", "r-secret", time.Minute, time.Hour)
	r := authRouter(jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/maybe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String(), "anonymous requests pass with no user id")

	token, _, err := jwt.GenerateAccessToken("user-42")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "user-42", w.Body.String())
}
