package handlers

import (
	"net/http"

	helpers "boundless-travel/internal/handlers/internal"
	"boundless-travel/internal/services"
	"boundless-travel/internal/state"

	"github.com/gin-gonic/gin"
)

// VPassHandler campaign page endpoints
type VPassHandler struct {
	vpass      *services.VPassService
	onboarding *services.OnboardingService
	store      *state.Store
}

// NewVPassHandler creates the page handler
func NewVPassHandler(vpass *services.VPassService, onboarding *services.OnboardingService, store *state.Store) *VPassHandler {
	return &VPassHandler{vpass: vpass, onboarding: onboarding, store: store}
}

// PageHandler VPass page model
// GET /api/vpass
func (h *VPassHandler) PageHandler(c *gin.Context) {
	sess, ok := helpers.Session(c, h.store)
	if !ok {
		return
	}
	st, err := h.onboarding.EnsureTravelInfo(c.Request.Context(), sess)
	if err != nil {
		helpers.LogError("VPass", "load travel info", err)
	}

	view, err := h.vpass.Page(c.Request.Context(), st)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Failed to build VPass page", err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

// BalancesHandler native balance per chain; failed lookups have no balance
// GET /api/vpass/balances
func (h *VPassHandler) BalancesHandler(c *gin.Context) {
	sess, ok := helpers.Session(c, h.store)
	if !ok {
		return
	}
	rows, err := h.vpass.Balances(c.Request.Context(), sess.Snapshot().Account)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid account", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"chains": rows, "total": len(rows)})
}
