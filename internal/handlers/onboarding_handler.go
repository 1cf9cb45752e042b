package handlers

import (
	"errors"
	"net/http"

	"boundless-travel/internal/clients"
	"boundless-travel/internal/dto"
	helpers "boundless-travel/internal/handlers/internal"
	"boundless-travel/internal/services"
	"boundless-travel/internal/state"

	"github.com/gin-gonic/gin"
)

// OnboardingHandler welcome wizard endpoints
type OnboardingHandler struct {
	svc   *services.OnboardingService
	store *state.Store
}

// NewOnboardingHandler creates the wizard handler
func NewOnboardingHandler(svc *services.OnboardingService, store *state.Store) *OnboardingHandler {
	return &OnboardingHandler{svc: svc, store: store}
}

// GetHandler GET /api/onboarding
func (h *OnboardingHandler) GetHandler(c *gin.Context) {
	sess, ok := helpers.Session(c, h.store)
	if !ok {
		return
	}
	if _, err := h.svc.EnsureTravelInfo(c.Request.Context(), sess); err != nil {
		helpers.LogError("Onboarding", "load travel info", err)
	}
	c.JSON(http.StatusOK, h.svc.View(sess))
}

// NextHandler POST /api/onboarding/next
func (h *OnboardingHandler) NextHandler(c *gin.Context) {
	sess, ok := helpers.Session(c, h.store)
	if !ok {
		return
	}
	if _, err := h.svc.EnsureTravelInfo(c.Request.Context(), sess); err != nil {
		helpers.LogError("Onboarding", "load travel info", err)
	}
	view, err := h.svc.Next(sess)
	if err != nil {
		respondWizard(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PreviousHandler POST /api/onboarding/previous
func (h *OnboardingHandler) PreviousHandler(c *gin.Context) {
	sess, ok := helpers.Session(c, h.store)
	if !ok {
		return
	}
	view, err := h.svc.Previous(sess)
	if err != nil {
		respondWizard(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// InviteCodeHandler POST /api/onboarding/invite-code
func (h *OnboardingHandler) InviteCodeHandler(c *gin.Context) {
	sess, ok := helpers.Session(c, h.store)
	if !ok {
		return
	}
	var req dto.InviteCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	view, err := h.svc.SubmitInviteCode(c.Request.Context(), sess, req.Code)
	if err != nil {
		respondWizard(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func respondWizard(c *gin.Context, view services.OnboardingView, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, clients.ErrInvalidInviteCode):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrWalletNotConnected):
		status = http.StatusConflict
	default:
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) {
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, gin.H{"error": err.Error(), "view": view})
}
