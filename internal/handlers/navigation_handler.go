package handlers

import (
	"net/http"

	"boundless-travel/internal/config"
	"boundless-travel/internal/middleware"
	"boundless-travel/internal/navigation"
	"boundless-travel/internal/state"

	"github.com/gin-gonic/gin"
)

// NavigationHandler site header
type NavigationHandler struct {
	urls  config.ExternalURLs
	store *state.Store
}

// NewNavigationHandler creates the handler
func NewNavigationHandler(urls config.ExternalURLs, store *state.Store) *NavigationHandler {
	return &NavigationHandler{urls: urls, store: store}
}

// HeaderHandler header model, personalised when a valid token is present
// GET /api/navigation
func (h *NavigationHandler) HeaderHandler(c *gin.Context) {
	var st state.AppState
	if account, ok := middleware.AccountFromContext(c); ok {
		if sess, found := h.store.Lookup(account); found {
			st = sess.Snapshot()
		}
	}
	c.JSON(http.StatusOK, navigation.Build(h.urls, st))
}
