// Package helpers provides common helper functions for HTTP handlers
package helpers

import (
	"fmt"
	"log"
	"net/http"

	"boundless-travel/internal/dto"
	"boundless-travel/internal/middleware"
	"boundless-travel/internal/state"
	"boundless-travel/internal/wallet"

	"github.com/gin-gonic/gin"
)

// RespondWithError unified error response function
func RespondWithError(c *gin.Context, statusCode int, errorType, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: errorType, Message: message})
}

// LogError unified error logging function
func LogError(operation, message string, err error) {
	log.Printf("❌ %s: %s: %v", operation, message, err)
}

// LogSuccess unified success logging function
func LogSuccess(operation, message string, args ...interface{}) {
	log.Printf("✅ %s: %s", operation, fmt.Sprintf(message, args...))
}

// Session session of the authenticated account. A valid token whose session was
// lost (restart) reconnects it with the connector recorded in the token.
func Session(c *gin.Context, store *state.Store) (*state.Session, bool) {
	account, ok := middleware.AccountFromContext(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "Authentication required", "")
		return nil, false
	}
	sess := store.Get(account)
	if !sess.Snapshot().Connected {
		kind, err := wallet.ParseConnectorKind(c.GetString(middleware.ContextConnector))
		if err != nil {
			kind = wallet.ConnectorUnknown
		}
		sess.Connect(kind)
	}
	return sess, true
}
