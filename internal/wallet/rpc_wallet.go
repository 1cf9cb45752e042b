package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"boundless-travel/internal/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes
const (
	codeUserRejected      = 4001
	codeUnrecognizedChain = 4902
)

// RPCCaller JSON-RPC surface of an external signer
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// RPCDialFunc opens an RPCCaller for an endpoint
type RPCDialFunc func(ctx context.Context, endpoint string) (RPCCaller, error)

// DialRPC RPCDialFunc backed by the go-ethereum rpc client
func DialRPC(ctx context.Context, endpoint string) (RPCCaller, error) {
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// RPCConnector browser or mobile wallet reached through a JSON-RPC signer endpoint
// (an injected-provider bridge for MetaMask / OKX, or a WalletConnect relay bridge)
type RPCConnector struct {
	kind     ConnectorKind
	endpoint string
	dial     RPCDialFunc
}

// NewRPCConnector creates a connector of kind talking to endpoint
func NewRPCConnector(kind ConnectorKind, endpoint string, dial RPCDialFunc) *RPCConnector {
	if dial == nil {
		dial = DialRPC
	}
	return &RPCConnector{kind: kind, endpoint: endpoint, dial: dial}
}

func (c *RPCConnector) Kind() ConnectorKind {
	return c.kind
}

// Connect requests accounts from the signer and uses the first one
func (c *RPCConnector) Connect(ctx context.Context) (Wallet, error) {
	client, err := c.dial(ctx, c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial signer %s: %w", c.endpoint, err)
	}
	var accounts []common.Address
	if err := client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, mapProviderError(err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: signer exposed no accounts", ErrUserRejected)
	}
	return &RPCWallet{kind: c.kind, client: client, address: accounts[0]}, nil
}

// RPCWallet wallet whose keys live in an external signer
type RPCWallet struct {
	kind    ConnectorKind
	client  RPCCaller
	address common.Address
}

func (w *RPCWallet) Kind() ConnectorKind {
	return w.kind
}

func (w *RPCWallet) Address() common.Address {
	return w.address
}

func (w *RPCWallet) ChainID(ctx context.Context) (int64, error) {
	var id hexutil.Big
	if err := w.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, mapProviderError(err)
	}
	return (*big.Int)(&id).Int64(), nil
}

type switchChainParams struct {
	ChainID string `json:"chainId"`
}

type addChainParams struct {
	ChainID           string               `json:"chainId"`
	ChainName         string               `json:"chainName"`
	RPCURLs           []string             `json:"rpcUrls"`
	BlockExplorerURLs []string             `json:"blockExplorerUrls"`
	NativeCurrency    utils.NativeCurrency `json:"nativeCurrency"`
}

// SwitchChain asks the signer to switch, adding the chain first when it is unknown to it
func (w *RPCWallet) SwitchChain(ctx context.Context, chain utils.ChainConfig) error {
	hexID := hexutil.EncodeBig(big.NewInt(chain.ID))
	err := w.client.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{ChainID: hexID})
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) || rpcErr.ErrorCode() != codeUnrecognizedChain {
		return mapProviderError(err)
	}

	add := addChainParams{
		ChainID:           hexID,
		ChainName:         chain.Name,
		RPCURLs:           []string{chain.RPCURL},
		BlockExplorerURLs: []string{chain.ExplorerURL},
		NativeCurrency:    chain.NativeCurrency,
	}
	if err := w.client.CallContext(ctx, nil, "wallet_addEthereumChain", add); err != nil {
		return mapProviderError(err)
	}
	if err := w.client.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{ChainID: hexID}); err != nil {
		return mapProviderError(err)
	}
	return nil
}

type sendTxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value"`
	Data  hexutil.Bytes  `json:"data"`
}

// SendTransaction delegates signing and broadcasting to the signer
func (w *RPCWallet) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}
	var hash common.Hash
	err := w.client.CallContext(ctx, &hash, "eth_sendTransaction", sendTxArgs{
		From:  w.address,
		To:    req.To,
		Value: (*hexutil.Big)(value),
		Data:  req.Data,
	})
	if err != nil {
		return common.Hash{}, mapProviderError(err)
	}
	return hash, nil
}

func mapProviderError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return fmt.Errorf("%w: %s", ErrUserRejected, rpcErr.Error())
		case codeUnrecognizedChain:
			return fmt.Errorf("%w: %s", ErrUnsupportedChain, rpcErr.Error())
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "user rejected") {
		return fmt.Errorf("%w: %s", ErrUserRejected, err.Error())
	}
	return err
}
