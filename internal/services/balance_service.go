package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"boundless-travel/internal/metrics"
	"boundless-travel/internal/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BalanceService native balance lookups across the chain table
type BalanceService struct {
	dial           ChainDialer
	timeout        time.Duration
	maxConcurrency int
}

// NewBalanceService creates a balance fetcher; timeout bounds each chain, maxConcurrency bounds parallel RPC calls
func NewBalanceService(dial ChainDialer, timeout time.Duration, maxConcurrency int) *BalanceService {
	if dial == nil {
		dial = DialChainClient
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &BalanceService{dial: dial, timeout: timeout, maxConcurrency: maxConcurrency}
}

// FetchBalances returns chains in input order with Balance set.
// A chain whose lookup fails keeps a nil Balance; the others are still returned.
func (s *BalanceService) FetchBalances(ctx context.Context, chains []utils.ChainConfig, address common.Address) []utils.ChainConfig {
	out := make([]utils.ChainConfig, len(chains))
	copy(out, chains)

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i := range out {
		i := i
		out[i].Balance = nil
		g.Go(func() error {
			balance, err := s.fetchOne(ctx, out[i], address)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"chain":   out[i].Name,
					"chainId": out[i].ID,
					"address": address.Hex(),
				}).WithError(err).Warn("balance lookup failed")
				metrics.BalanceFetchTotal.WithLabelValues(out[i].Name, "failure").Inc()
				return nil
			}
			metrics.BalanceFetchTotal.WithLabelValues(out[i].Name, "success").Inc()
			out[i].Balance = balance
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *BalanceService) fetchOne(ctx context.Context, chain utils.ChainConfig, address common.Address) (*big.Int, error) {
	start := time.Now()
	defer func() {
		metrics.BalanceFetchDuration.WithLabelValues(chain.Name).Observe(time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	client, err := s.dial(ctx, chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", chain.Name, err)
	}
	defer client.Close()

	balance, err := client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance on %s: %w", chain.Name, err)
	}
	return balance, nil
}

// FundedChains chains holding a positive balance, in input order
func FundedChains(chains []utils.ChainConfig) []utils.ChainConfig {
	var funded []utils.ChainConfig
	for _, c := range chains {
		if c.Balance != nil && c.Balance.Sign() > 0 {
			funded = append(funded, c)
		}
	}
	return funded
}
