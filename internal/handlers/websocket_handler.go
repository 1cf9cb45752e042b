package handlers

import (
	"net/http"

	"boundless-travel/internal/middleware"
	"boundless-travel/internal/services"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler mint notification socket
type WebSocketHandler struct {
	notifications *services.NotificationService
}

// NewWebSocketHandler creates the socket handler
func NewWebSocketHandler(notifications *services.NotificationService) *WebSocketHandler {
	return &WebSocketHandler{notifications: notifications}
}

// HandleWebSocket upgrades an authenticated request; browsers pass the token as ?token=
// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	account, ok := middleware.AccountFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	h.notifications.HandleWebSocket(c.Writer, c.Request, account)
}
