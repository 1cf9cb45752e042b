package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"boundless-travel/internal/config"
	"boundless-travel/internal/dto"
	"boundless-travel/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
)

// AdminAuthHandler operator login: password plus TOTP, answered with an admin token
type AdminAuthHandler struct {
	cfg    config.AdminConfig
	tokens *middleware.AdminTokenManager
}

// NewAdminAuthHandler creates the operator login handler
func NewAdminAuthHandler(cfg config.AdminConfig, tokens *middleware.AdminTokenManager) *AdminAuthHandler {
	if !cfg.Configured() {
		logrus.Warn("⚠️ ADMIN_PASSWORD or ADMIN_TOTP_SECRET not set, operator login is disabled")
	}
	return &AdminAuthHandler{cfg: cfg, tokens: tokens}
}

// AdminLoginHandler POST /api/admin/login
func (h *AdminAuthHandler) AdminLoginHandler(c *gin.Context) {
	if !h.cfg.Configured() {
		c.JSON(http.StatusServiceUnavailable, dto.AdminLoginResponse{
			Message: "Operator login is not configured",
		})
		return
	}

	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.AdminLoginResponse{
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) == 1
	if !userOK || !passOK {
		logrus.WithField("username", req.Username).Warn("Admin login rejected - bad credentials")
		c.JSON(http.StatusUnauthorized, dto.AdminLoginResponse{Message: "Invalid credentials"})
		return
	}

	if !totp.Validate(strings.TrimSpace(req.TOTPCode), h.cfg.TOTPSecret) {
		logrus.WithField("username", req.Username).Warn("Admin login rejected - bad TOTP code")
		c.JSON(http.StatusUnauthorized, dto.AdminLoginResponse{Message: "Invalid TOTP code"})
		return
	}

	token, expiresAt, err := h.tokens.Issue(req.Username)
	if err != nil {
		logrus.WithError(err).Error("Admin token generation failed")
		c.JSON(http.StatusInternalServerError, dto.AdminLoginResponse{Message: "Failed to generate token"})
		return
	}

	logrus.WithField("username", req.Username).Info("Admin login successful")
	c.JSON(http.StatusOK, dto.AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Message:   "Login successful",
	})
}
