package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vidtube/backend/internal/application"
	"github.com/vidtube/backend/internal/interface/middleware"
	"github.com/vidtube/backend/pkg/response"
)

// ChannelHandler exposes the public channel surface: aggregated profiles,
// search and the subscribe toggle.
type ChannelHandler struct {
	Profiles *application.ProfileService
	Logger   *logrus.Logger
}

func NewChannelHandler(profiles *application.ProfileService, logger *logrus.Logger) *ChannelHandler {
	return &ChannelHandler{Profiles: profiles, Logger: logger}
}

// Profile returns the aggregated channel view. The viewer is optional: with a
// valid access token the is_subscribed flag reflects their subscription.
func (h *ChannelHandler) Profile(c *gin.Context) {
	viewerID := c.GetString(middleware.CtxUserIDKey)
	username := c.Param("username")

	profile, err := h.Profiles.GetChannelProfile(c.Request.Context(), viewerID, username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile, "channel profile", nil)
}

func (h *ChannelHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Profiles.SearchChannels(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "channel search results", gin.H{"count": len(hits)})
}

// ToggleSubscription subscribes the caller to the channel, or unsubscribes if
// already subscribed.
func (h *ChannelHandler) ToggleSubscription(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	username := c.Param("username")

	subscribed, err := h.Profiles.ToggleSubscription(c.Request.Context(), uid, username)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "unsubscribed"
	if subscribed {
		msg = "subscribed"
	}
	response.Success(c, http.StatusOK, gin.H{"subscribed": subscribed}, msg, nil)
}
