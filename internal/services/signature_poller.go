package services

import (
	"context"
	"errors"
	"log"
	"time"

	"boundless-travel/internal/metrics"
)

// ErrSignatureTimeout the relay signature did not become available in time
var ErrSignatureTimeout = errors.New("relay signature not available before timeout")

// SignatureSource looks relay signatures up by hash
type SignatureSource interface {
	GetMintSignature(ctx context.Context, signHash string) (string, bool, error)
}

// SignaturePoller waits for a relay signature with a fixed interval and an upper bound
type SignaturePoller struct {
	source   SignatureSource
	interval time.Duration
	timeout  time.Duration
}

// NewSignaturePoller creates a poller; a non-positive timeout means wait until ctx ends
func NewSignaturePoller(source SignatureSource, interval, timeout time.Duration) *SignaturePoller {
	if interval <= 0 {
		interval = time.Second
	}
	return &SignaturePoller{source: source, interval: interval, timeout: timeout}
}

// Wait polls until a non-empty signature is returned, then stops immediately.
// Lookup errors are logged and polling continues.
func (p *SignaturePoller) Wait(ctx context.Context, signHash string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				metrics.SignaturePollTimeouts.Inc()
				log.Printf("⏰ Relay signature %s not ready after %d lookups", signHash, attempts)
				return "", ErrSignatureTimeout
			}
			return "", ctx.Err()
		case <-ticker.C:
		}

		attempts++
		signature, ready, err := p.source.GetMintSignature(ctx, signHash)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("⚠️ Relay signature lookup #%d failed: %v", attempts, err)
			continue
		}
		if ready && signature != "" {
			metrics.SignaturePollAttempts.Observe(float64(attempts))
			log.Printf("✍️ Relay signature %s ready after %d lookups", signHash, attempts)
			return signature, nil
		}
	}
}
