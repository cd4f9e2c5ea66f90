package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidtube/backend/internal/container"
	handlers "github.com/vidtube/backend/internal/interface/http"
	"github.com/vidtube/backend/internal/interface/middleware"
	"github.com/vidtube/backend/pkg/helpers"
)

// ChannelModule wires the public channel surface. Profile lookup identifies
// the viewer when a token is present but never requires one.
type ChannelModule struct {
	Handler *handlers.ChannelHandler
	JWT     *helpers.JWTManager
}

func NewChannelModule(h *handlers.ChannelHandler, jwt *helpers.JWTManager) *ChannelModule {
	return &ChannelModule{Handler: h, JWT: jwt}
}

func (m *ChannelModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/channels/search", readLimiter, m.Handler.Search)
	rg.GET("/channels/:username", readLimiter, middleware.OptionalAuth(m.JWT), m.Handler.Profile)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/channels/:username/subscribe", m.Handler.ToggleSubscription)
	}
}
