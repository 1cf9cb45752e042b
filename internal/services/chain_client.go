package services

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainClient read side of a chain RPC endpoint
type ChainClient interface {
	ethereum.ContractCaller
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// ChainDialer opens a ChainClient for an RPC URL
type ChainDialer func(ctx context.Context, rawurl string) (ChainClient, error)

// DialChainClient ChainDialer backed by ethclient
func DialChainClient(ctx context.Context, rawurl string) (ChainClient, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return client, nil
}
