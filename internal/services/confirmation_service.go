package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrConfirmationTimeout no receipt appeared before the deadline
var ErrConfirmationTimeout = errors.New("transaction confirmation timeout")

// ConfirmationService waits for mint transaction receipts
type ConfirmationService struct {
	dial         ChainDialer
	timeout      time.Duration
	pollInterval time.Duration
}

// NewConfirmationService creates a receipt watcher
func NewConfirmationService(dial ChainDialer, timeout, pollInterval time.Duration) *ConfirmationService {
	if dial == nil {
		dial = DialChainClient
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &ConfirmationService{dial: dial, timeout: timeout, pollInterval: pollInterval}
}

// WaitForReceipt polls rpcURL until txHash has a receipt, the timeout passes or ctx ends
func (s *ConfirmationService) WaitForReceipt(ctx context.Context, rpcURL string, txHash common.Hash) (*types.Receipt, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	client, err := s.dial(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	defer client.Close()

	start := time.Now()
	log.Printf("🔄 Waiting for receipt of %s", txHash.Hex())

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	pollCount := 0
	for {
		pollCount++
		receipt, err := client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			log.Printf("✅ Receipt of %s after %v (poll #%d, block %v, status %d)",
				txHash.Hex(), time.Since(start).Round(time.Millisecond), pollCount, receipt.BlockNumber, receipt.Status)
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			log.Printf("⚠️ Receipt query #%d for %s failed: %v", pollCount, txHash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %v: %s", ErrConfirmationTimeout, time.Since(start).Round(time.Second), txHash.Hex())
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
