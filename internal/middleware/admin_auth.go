package middleware

import (
	"fmt"
	"net/http"
	"time"

	"boundless-travel/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// RoleAdmin role carried by operator tokens
const RoleAdmin = "admin"

// Context keys set by the admin middleware
const (
	ContextAdminUsername = "admin_username"
	ContextAdminRole     = "admin_role"
)

// distinct issuer so wallet session tokens never pass as operator tokens
const adminTokenIssuer = "boundless-travel-admin"

// AdminTokenManager issues and validates operator tokens
type AdminTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewAdminTokenManager creates the operator token manager; ttl <= 0 falls back to 1h
func NewAdminTokenManager(secret string, ttl time.Duration) *AdminTokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AdminTokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs an admin token for username
func (m *AdminTokenManager) Issue(username string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("admin token secret not configured")
	}
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := dto.AdminJWTClaims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    adminTokenIssuer,
			Subject:   username,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate parses an admin token
func (m *AdminTokenManager) Validate(tokenString string) (*dto.AdminJWTClaims, error) {
	if len(m.secret) == 0 {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &dto.AdminJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(adminTokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*dto.AdminJWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AdminAuthMiddleware guards operator routes
type AdminAuthMiddleware struct {
	logger *logrus.Logger
	tokens *AdminTokenManager
}

// NewAdminAuthMiddleware creates the operator auth middleware
func NewAdminAuthMiddleware(logger *logrus.Logger, tokens *AdminTokenManager) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{logger: logger, tokens: tokens}
}

// RequireAdminAuth rejects requests without a valid admin token
func (a *AdminAuthMiddleware) RequireAdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}

		tokenString, code := extractToken(c)
		if code != "" {
			a.logger.WithFields(fields).WithField("code", code).Warn("Admin auth failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Authentication required",
				Code:  code,
			})
			return
		}

		claims, err := a.tokens.Validate(tokenString)
		if err != nil {
			a.logger.WithFields(fields).WithError(err).Warn("Admin auth failed - invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Invalid or expired token",
				Code:  "INVALID_TOKEN",
			})
			return
		}

		if claims.Role != RoleAdmin {
			a.logger.WithFields(fields).WithField("role", claims.Role).Warn("Admin auth failed - insufficient permissions")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Error: "Insufficient permissions",
				Code:  "INSUFFICIENT_PERMISSIONS",
			})
			return
		}

		c.Set(ContextAdminUsername, claims.Username)
		c.Set(ContextAdminRole, claims.Role)
		c.Next()
	}
}
