package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"

	"boundless-travel/internal/utils"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainBackend RPC surface a local key wallet needs
type ChainBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// DialFunc opens a ChainBackend for an RPC URL
type DialFunc func(ctx context.Context, rawurl string) (ChainBackend, error)

// DialEthClient DialFunc backed by ethclient
func DialEthClient(ctx context.Context, rawurl string) (ChainBackend, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ChainLookup resolves chain ids to registry entries
type ChainLookup interface {
	ByID(id int64) (utils.ChainConfig, bool)
}

// ParsePrivateKey accepts hex with or without 0x
func ParsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// LocalKeyConnector operator wallet signing with a configured private key
type LocalKeyConnector struct {
	key          *ecdsa.PrivateKey
	chains       ChainLookup
	dial         DialFunc
	initialChain int64
}

// NewLocalKeyConnector creates a connector; the wallet starts on initialChain
func NewLocalKeyConnector(key *ecdsa.PrivateKey, chains ChainLookup, dial DialFunc, initialChain int64) *LocalKeyConnector {
	if dial == nil {
		dial = DialEthClient
	}
	return &LocalKeyConnector{key: key, chains: chains, dial: dial, initialChain: initialChain}
}

func (c *LocalKeyConnector) Kind() ConnectorKind {
	return ConnectorLocalKey
}

func (c *LocalKeyConnector) Connect(ctx context.Context) (Wallet, error) {
	w := &LocalKeyWallet{
		key:     c.key,
		address: crypto.PubkeyToAddress(c.key.PublicKey),
		chains:  c.chains,
		dial:    c.dial,
	}
	chain, ok := c.chains.ByID(c.initialChain)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, c.initialChain)
	}
	if err := w.SwitchChain(ctx, chain); err != nil {
		return nil, err
	}
	return w, nil
}

// LocalKeyWallet signs EIP-155 legacy transactions locally
type LocalKeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chains  ChainLookup
	dial    DialFunc

	mu      sync.RWMutex
	chainID int64
	backend ChainBackend
}

func (w *LocalKeyWallet) Kind() ConnectorKind {
	return ConnectorLocalKey
}

func (w *LocalKeyWallet) Address() common.Address {
	return w.address
}

func (w *LocalKeyWallet) ChainID(_ context.Context) (int64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chainID, nil
}

// SwitchChain dials the chain's RPC and checks it reports the expected chain id
func (w *LocalKeyWallet) SwitchChain(ctx context.Context, chain utils.ChainConfig) error {
	if _, ok := w.chains.ByID(chain.ID); !ok {
		return fmt.Errorf("%w: %d", ErrUnsupportedChain, chain.ID)
	}
	backend, err := w.dial(ctx, chain.RPCURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", chain.Name, err)
	}
	remoteID, err := backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("query chain id of %s: %w", chain.Name, err)
	}
	if remoteID.Int64() != chain.ID {
		return fmt.Errorf("%w: rpc of %s reports chain %s", ErrUnsupportedChain, chain.Name, remoteID)
	}

	w.mu.Lock()
	w.chainID = chain.ID
	w.backend = backend
	w.mu.Unlock()
	log.Printf("🔗 Local wallet %s switched to %s (%d)", utils.AddressShortcut(w.address.Hex()), chain.Name, chain.ID)
	return nil
}

// SendTransaction builds, signs and broadcasts req on the current chain
func (w *LocalKeyWallet) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	w.mu.RLock()
	backend, chainID := w.backend, w.chainID
	w.mu.RUnlock()
	if backend == nil {
		return common.Hash{}, fmt.Errorf("wallet not connected to a chain")
	}

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	nonce, err := backend.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	suggested, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}
	// 20% headroom over the suggested price
	gasPrice := new(big.Int).Div(new(big.Int).Mul(suggested, big.NewInt(120)), big.NewInt(100))

	to := req.To
	gasLimit, err := backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.address,
		To:    &to,
		Value: value,
		Data:  req.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gasLimit = gasLimit * 12 / 10

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(chainID)), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	log.Printf("📤 Sent tx %s on chain %d (nonce=%d, gas=%d, value=%s)", signed.Hash().Hex(), chainID, nonce, gasLimit, value)
	return signed.Hash(), nil
}
