package interfaces

import (
	"context"

	"boundless-travel/internal/models"
)

// TravelBackend bookkeeping backend operations used by services
// Declared here so services and handlers can be tested without the REST client
type TravelBackend interface {
	// LoginOrCreate returns the travel info of account, creating it on first login
	LoginOrCreate(ctx context.Context, account string) (*models.AccountTravelInfo, error)
	// GetPreMintInfo returns the parameters of the next mint attempt
	GetPreMintInfo(ctx context.Context, account string) (*models.PreMintInfo, error)
	// GetMintSignature looks a relay signature up; ready is false until it exists
	GetMintSignature(ctx context.Context, signHash string) (signature string, ready bool, err error)
	// CheckInviteCode binds code to account or fails with clients.ErrInvalidInviteCode
	CheckInviteCode(ctx context.Context, account, code string) error
	GetTravelSettings(ctx context.Context) (*models.TravelSettings, error)
}
