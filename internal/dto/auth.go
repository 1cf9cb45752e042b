package dto

import (
	"boundless-travel/internal/state"

	"github.com/golang-jwt/jwt/v5"
)

// ==================== Auth DTOs ====================

// NonceResponse sign-in challenge for a wallet
type NonceResponse struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"` // text to personal_sign
	ExpiresAt int64  `json:"expires_at"`
}

// ConnectRequest signed challenge returned by the wallet
type ConnectRequest struct {
	Account   string `json:"account" binding:"required"`
	Connector string `json:"connector" binding:"required"` // metamask | okx | walletconnect | local_key
	Nonce     string `json:"nonce" binding:"required"`
	Signature string `json:"signature" binding:"required"` // 0x-prefixed 65 byte personal_sign signature
}

// ConnectResponse session token plus the initial session state
type ConnectResponse struct {
	Success   bool            `json:"success"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt int64           `json:"expires_at,omitempty"`
	State     *state.AppState `json:"state,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// JWTClaims session token claims
type JWTClaims struct {
	Account   string `json:"account"`   // checksummed wallet address
	Connector string `json:"connector"` // connector used to sign in
	jwt.RegisteredClaims
}

// ==================== Admin DTOs ====================

// AdminLoginRequest operator login; totp_code is checked after the password
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

// AdminLoginResponse operator login result
type AdminLoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Message   string `json:"message"`
}

// AdminJWTClaims operator token claims
type AdminJWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
