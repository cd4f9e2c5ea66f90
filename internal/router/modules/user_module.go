package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidtube/backend/internal/container"
	handlers "github.com/vidtube/backend/internal/interface/http"
	"github.com/vidtube/backend/internal/interface/middleware"
	"github.com/vidtube/backend/pkg/helpers"
)

// UserModule wires account and session routes.
// Public: POST /users/register, /users/login, /users/refresh-token
// Protected: logout, change-password, me, avatar/cover updates, watch history.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/users/register", registerLimiter, m.Handler.Register)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)
	rg.POST("/users/refresh-token", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/users/logout", m.Handler.Logout)
		auth.POST("/users/change-password", m.Handler.ChangePassword)
		auth.GET("/users/me", m.Handler.Me)
		auth.PATCH("/users/me", m.Handler.UpdateAccount)
		auth.PATCH("/users/me/avatar", m.Handler.UpdateAvatar)
		auth.PATCH("/users/me/cover-image", m.Handler.UpdateCoverImage)
		auth.GET("/users/me/watch-history", m.Handler.WatchHistory)
		auth.POST("/users/me/watch-history/:videoId", m.Handler.RecordWatch)
	}
}
