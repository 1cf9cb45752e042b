package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"boundless-travel/internal/dto"
	helpers "boundless-travel/internal/handlers/internal"
	"boundless-travel/internal/repository"
	"boundless-travel/internal/services"
	"boundless-travel/internal/utils"
	"boundless-travel/internal/wallet"

	"github.com/gin-gonic/gin"
)

// WalletProvider connects the operator wallet used for mints
type WalletProvider func(ctx context.Context) (wallet.Wallet, error)

// MintHandler operator mint endpoints
type MintHandler struct {
	orch   *services.MintOrchestrator
	wallet WalletProvider
}

// NewMintHandler creates the mint handler
func NewMintHandler(orch *services.MintOrchestrator, provider WalletProvider) *MintHandler {
	return &MintHandler{orch: orch, wallet: provider}
}

// StartHandler starts an attempt and returns it once the chain is verified
// POST /api/vpass/mint
func (h *MintHandler) StartHandler(c *gin.Context) {
	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	w, err := h.wallet(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Operator wallet unavailable", err.Error())
		return
	}

	attempt, err := h.orch.Start(c.Request.Context(), w, req.Chain)
	if err != nil {
		c.JSON(mintErrorStatus(err), gin.H{"error": err.Error(), "attempt": attempt})
		return
	}
	if attempt == nil {
		helpers.RespondWithError(c, http.StatusConflict, "Wallet not connected", "")
		return
	}
	helpers.LogSuccess("Mint", "attempt %s started on %s", attempt.ID, attempt.ChainName)
	c.JSON(http.StatusAccepted, attempt)
}

// GetHandler GET /api/vpass/mint/:id
func (h *MintHandler) GetHandler(c *gin.Context) {
	attempt, err := h.orch.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mintErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempt":    attempt,
		"inProgress": h.orch.InProgress(attempt.Account),
	})
}

// HistoryHandler GET /api/vpass/mint?account=0x...&limit=20
func (h *MintHandler) HistoryHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit", "")
		return
	}
	account := c.Query("account")
	if account != "" {
		addr, err := utils.NormalizeAddress(account)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid account", err.Error())
			return
		}
		account = addr.Hex()
	} else {
		w, err := h.wallet(c.Request.Context())
		if err != nil {
			helpers.RespondWithError(c, http.StatusServiceUnavailable, "Operator wallet unavailable", err.Error())
			return
		}
		account = w.Address().Hex()
	}
	attempts, err := h.orch.History(c.Request.Context(), account, limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch attempts", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts, "total": len(attempts)})
}

// CancelHandler POST /api/vpass/mint/:id/cancel
func (h *MintHandler) CancelHandler(c *gin.Context) {
	if err := h.orch.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(mintErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func mintErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrChainNotSelected):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyMinted),
		errors.Is(err, services.ErrMintInProgress),
		errors.Is(err, services.ErrAttemptNotActive),
		errors.Is(err, services.ErrChainSwitchRejected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
