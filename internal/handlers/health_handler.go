package handlers

import (
	"context"
	"net/http"
	"time"

	"boundless-travel/internal/config"

	"github.com/gin-gonic/gin"
)

// HealthCheck check of one named dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler liveness and dependency status
type HealthHandler struct {
	env    config.Environment
	checks map[string]HealthCheck
}

// NewHealthHandler creates the handler; checks may be empty
func NewHealthHandler(env config.Environment, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{env: env, checks: checks}
}

// HealthCheckHandler reports ok, or degraded with the failing dependencies
// GET /health
func (h *HealthHandler) HealthCheckHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"service":      "boundless-travel",
		"environment":  h.env,
		"dependencies": deps,
	})
}
