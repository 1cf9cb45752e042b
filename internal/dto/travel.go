package dto

// ==================== Travel DTOs ====================

// InviteCodeRequest invite code submitted in the onboarding wizard; empty skips the referral
type InviteCodeRequest struct {
	Code string `json:"code"`
}

// MintRequest operator mint on the given source chain
type MintRequest struct {
	Chain string `json:"chain" binding:"required"` // chain name as listed by /api/chains
}

// ErrorResponse error body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
