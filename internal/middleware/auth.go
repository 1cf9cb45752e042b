package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"boundless-travel/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Context keys set by the auth middleware
const (
	ContextAccount   = "account"
	ContextConnector = "connector"
)

const tokenIssuer = "boundless-travel"

// ErrInvalidToken token missing, malformed, expired or signed with another key
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager issues and validates HS256 session tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager; ttl <= 0 falls back to 24h
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for account
func (m *TokenManager) Issue(account, connector string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := dto.JWTClaims{
		Account:   account,
		Connector: connector,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   account,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate parses tokenString and returns its claims
func (m *TokenManager) Validate(tokenString string) (*dto.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*dto.JWTClaims)
	if !ok || !token.Valid || claims.Account == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AuthMiddleware JWT authentication
type AuthMiddleware struct {
	logger *logrus.Logger
	tokens *TokenManager
}

// NewAuthMiddleware creates the JWT middleware
func NewAuthMiddleware(logger *logrus.Logger, tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{logger: logger, tokens: tokens}
}

// extractToken Bearer header, or the token query parameter used by websocket clients
func extractToken(c *gin.Context) (string, string) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", "INVALID_AUTH_FORMAT"
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return "", "EMPTY_TOKEN"
		}
		return token, ""
	}
	if token := c.Query("token"); token != "" {
		return token, ""
	}
	return "", "MISSING_AUTH_HEADER"
}

// RequireAuth rejects requests without a valid token
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}

		tokenString, code := extractToken(c)
		if code != "" {
			a.logger.WithFields(fields).WithField("code", code).Warn("JWT authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Authentication required",
				Message: "Provide a valid token as 'Authorization: Bearer <token>'",
				Code:    code,
			})
			return
		}

		claims, err := a.tokens.Validate(tokenString)
		if err != nil {
			a.logger.WithFields(fields).WithError(err).Warn("JWT validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Invalid or expired token",
				Message: err.Error(),
				Code:    "INVALID_TOKEN",
			})
			return
		}

		c.Set(ContextAccount, claims.Account)
		c.Set(ContextConnector, claims.Connector)
		a.logger.WithFields(fields).WithField("account", claims.Account).Debug("JWT authenticated")
		c.Next()
	}
}

// OptionalAuth sets the account when a valid token is present and never rejects
func (a *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, code := extractToken(c)
		if code != "" {
			c.Next()
			return
		}
		claims, err := a.tokens.Validate(tokenString)
		if err != nil {
			a.logger.WithFields(logrus.Fields{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			}).Debug("ignoring invalid optional token")
			c.Next()
			return
		}
		c.Set(ContextAccount, claims.Account)
		c.Set(ContextConnector, claims.Connector)
		c.Next()
	}
}

// AccountFromContext authenticated account of the request
func AccountFromContext(c *gin.Context) (string, bool) {
	account := c.GetString(ContextAccount)
	return account, account != ""
}
