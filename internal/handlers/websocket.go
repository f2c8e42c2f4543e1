package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/services"
)

// WebSocketHandler upgrades the authenticated request into a realtime
// notification channel.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		services.HandleWebSocket(hub, c.Writer, c.Request, userID)
	}
}
