package models

import (
	"time"

	"github.com/lib/pq"
)

// MintState orchestrator state of one attempt
type MintState string

const (
	MintStateIdle                    MintState = "idle"
	MintStateChainSelected           MintState = "chain_selected"
	MintStateChainVerified           MintState = "chain_verified"
	MintStatePreMintFetched          MintState = "pre_mint_fetched"
	MintStateDirectMintSubmitted     MintState = "direct_mint_submitted"
	MintStateRelaySignatureAwaited   MintState = "relay_signature_awaited"
	MintStateRelaySignatureReceived  MintState = "relay_signature_received"
	MintStateCrossChainMintSubmitted MintState = "cross_chain_mint_submitted"
	MintStateSettled                 MintState = "settled"
)

// MintPath direct mint on the home chain or relayed from another chain
type MintPath string

const (
	MintPathDirect     MintPath = "direct"
	MintPathCrossChain MintPath = "cross_chain"
)

// MintOutcome result reported to the user
type MintOutcome string

const (
	MintOutcomePending   MintOutcome = "pending"   // not submitted yet
	MintOutcomeSubmitted MintOutcome = "submitted" // tx broadcast, receipt pending
	MintOutcomeConfirmed MintOutcome = "confirmed" // receipt status 1
	MintOutcomeReverted  MintOutcome = "reverted"  // receipt status 0
	MintOutcomeFailed    MintOutcome = "failed"
	MintOutcomeTimedOut  MintOutcome = "timed_out" // relay signature never arrived
	MintOutcomeCancelled MintOutcome = "cancelled"
)

// IsFinal outcomes after which nothing else happens to the attempt
func (o MintOutcome) IsFinal() bool {
	switch o {
	case MintOutcomeConfirmed, MintOutcomeReverted, MintOutcomeFailed, MintOutcomeTimedOut, MintOutcomeCancelled:
		return true
	}
	return false
}

// MintAttempt persisted record of one mint attempt
type MintAttempt struct {
	ID         string         `json:"id" gorm:"primaryKey"` // UUID
	Account    string         `json:"account" gorm:"not null;index"`
	ChainID    int64          `json:"chainId" gorm:"not null"`
	ChainName  string         `json:"chainName"`
	Path       MintPath       `json:"path"`
	State      MintState      `json:"state" gorm:"not null;default:'idle'"`
	StateTrail pq.StringArray `json:"stateTrail" gorm:"type:text[]"`
	Outcome    MintOutcome    `json:"outcome" gorm:"not null;default:'pending';index"`

	InviteCode string `json:"inviteCode"` // hex of the effective invite code
	Price      string `json:"price"`      // wei
	RelayFee   string `json:"relayFee"`   // wei, cross-chain only
	SignHash   string `json:"signHash"`
	TxHash     string `json:"txHash" gorm:"index"`
	LastError  string `json:"lastError" gorm:"type:text"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SubmittedAt *time.Time `json:"submittedAt"`
	SettledAt   *time.Time `json:"settledAt"`
}

// TableName gorm table name
func (MintAttempt) TableName() string {
	return "mint_attempts"
}

// Transition moves the attempt to state and appends it to the trail
func (m *MintAttempt) Transition(state MintState) {
	m.State = state
	m.StateTrail = append(m.StateTrail, string(state))
}

// Clone deep copy of m
func (m *MintAttempt) Clone() *MintAttempt {
	c := *m
	c.StateTrail = append(pq.StringArray(nil), m.StateTrail...)
	if m.SubmittedAt != nil {
		t := *m.SubmittedAt
		c.SubmittedAt = &t
	}
	if m.SettledAt != nil {
		t := *m.SettledAt
		c.SettledAt = &t
	}
	return &c
}
