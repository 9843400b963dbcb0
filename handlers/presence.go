package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/felixzhu97/whatschat-sub002/services"
)

// PresenceHandler exposes the live registry over HTTP for dashboards and
// sibling services.
type PresenceHandler struct {
	registry *services.PresenceRegistry
}

func NewPresenceHandler(registry *services.PresenceRegistry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

// GetOnlineUsers returns every currently connected user id.
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	ids := h.registry.OnlineUserIDs()

	c.JSON(http.StatusOK, gin.H{
		"count": len(ids),
		"users": ids,
	})
}
