package events

import (
	"context"
	"fmt"
	"time"

	"boundless-travel/internal/models"
)

// MintEventType lifecycle point of a mint attempt
type MintEventType string

const (
	MintEventStarted   MintEventType = "started"
	MintEventSubmitted MintEventType = "submitted"
	MintEventConfirmed MintEventType = "confirmed"
	MintEventReverted  MintEventType = "reverted"
	MintEventFailed    MintEventType = "failed"
)

// MintEvent payload published for every mint attempt change
type MintEvent struct {
	Type      MintEventType      `json:"type"`
	AttemptID string             `json:"attemptId"`
	Account   string             `json:"account"`
	ChainID   int64              `json:"chainId"`
	ChainName string             `json:"chainName"`
	Path      models.MintPath    `json:"path"`
	State     models.MintState   `json:"state"`
	Outcome   models.MintOutcome `json:"outcome"`
	Price     string             `json:"price,omitempty"`
	TxHash    string             `json:"txHash,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewMintEvent snapshot of attempt as an event
func NewMintEvent(eventType MintEventType, attempt *models.MintAttempt) MintEvent {
	return MintEvent{
		Type:      eventType,
		AttemptID: attempt.ID,
		Account:   attempt.Account,
		ChainID:   attempt.ChainID,
		ChainName: attempt.ChainName,
		Path:      attempt.Path,
		State:     attempt.State,
		Outcome:   attempt.Outcome,
		Price:     attempt.Price,
		TxHash:    attempt.TxHash,
		Error:     attempt.LastError,
		Timestamp: time.Now().UTC(),
	}
}

// EventTypeForOutcome event type announcing outcome
func EventTypeForOutcome(outcome models.MintOutcome) MintEventType {
	switch outcome {
	case models.MintOutcomeSubmitted:
		return MintEventSubmitted
	case models.MintOutcomeConfirmed:
		return MintEventConfirmed
	case models.MintOutcomeReverted:
		return MintEventReverted
	case models.MintOutcomePending:
		return MintEventStarted
	default:
		return MintEventFailed
	}
}

// MintSubject NATS subject of e, e.g. travel.mint.28516.submitted
func MintSubject(prefix string, e MintEvent) string {
	return fmt.Sprintf("%s.mint.%d.%s", prefix, e.ChainID, e.Type)
}

// MintSubjectWildcard subject matching every mint event under prefix
func MintSubjectWildcard(prefix string) string {
	return prefix + ".mint.>"
}

// Publisher sink for mint events
type Publisher interface {
	PublishMintEvent(ctx context.Context, e MintEvent) error
}

// NopPublisher drops events; used when NATS is disabled
type NopPublisher struct{}

// PublishMintEvent implements Publisher
func (NopPublisher) PublishMintEvent(context.Context, MintEvent) error { return nil }
