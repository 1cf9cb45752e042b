package handlers

import (
	"net/http"

	"boundless-travel/internal/utils"

	"github.com/gin-gonic/gin"
)

// ChainHandler exposes the chain registry of the active environment
type ChainHandler struct {
	chains *utils.ChainRegistry
}

// NewChainHandler creates a new ChainHandler instance
func NewChainHandler(chains *utils.ChainRegistry) *ChainHandler {
	return &ChainHandler{chains: chains}
}

// ListChainsHandler lists the supported chains
// GET /api/chains
func (h *ChainHandler) ListChainsHandler(c *gin.Context) {
	chains := h.chains.Chains()
	c.JSON(http.StatusOK, gin.H{
		"environment": h.chains.Environment(),
		"home":        h.chains.Home(),
		"chains":      chains,
		"total":       len(chains),
	})
}

// GetChainHandler gets a chain by its exact name
// GET /api/chains/:name
func (h *ChainHandler) GetChainHandler(c *gin.Context) {
	chain, ok := h.chains.ByName(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chain not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chain":  chain,
		"isHome": h.chains.IsHome(chain.ID),
	})
}
