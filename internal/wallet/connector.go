package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"boundless-travel/internal/utils"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUserRejected the wallet owner declined the request
	ErrUserRejected = errors.New("request rejected by wallet")
	// ErrUnsupportedChain the wallet cannot switch to the requested chain
	ErrUnsupportedChain = errors.New("chain not supported by wallet")
	// ErrConnectorUnavailable no connector registered for the requested kind
	ErrConnectorUnavailable = errors.New("wallet connector unavailable")
)

// ConnectorKind supported wallet connectors
type ConnectorKind int

const (
	ConnectorUnknown ConnectorKind = iota
	ConnectorMetaMask
	ConnectorOkxWallet
	ConnectorWalletConnect
	ConnectorLocalKey
)

var connectorNames = map[ConnectorKind]string{
	ConnectorMetaMask:      "metamask",
	ConnectorOkxWallet:     "okx",
	ConnectorWalletConnect: "walletconnect",
	ConnectorLocalKey:      "local_key",
}

// String stable identifier used in config and API payloads
func (k ConnectorKind) String() string {
	if name, ok := connectorNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseConnectorKind inverse of String, case insensitive
func ParseConnectorKind(raw string) (ConnectorKind, error) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for kind, name := range connectorNames {
		if name == needle {
			return kind, nil
		}
	}
	return ConnectorUnknown, fmt.Errorf("unknown wallet connector %q", raw)
}

// MarshalText encodes the kind as its identifier
func (k ConnectorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes an identifier
func (k *ConnectorKind) UnmarshalText(text []byte) error {
	kind, err := ParseConnectorKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// TxRequest transaction to be signed and sent by a wallet
type TxRequest struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Wallet a connected wallet able to switch chains and send transactions
type Wallet interface {
	Kind() ConnectorKind
	Address() common.Address
	ChainID(ctx context.Context) (int64, error)
	SwitchChain(ctx context.Context, chain utils.ChainConfig) error
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)
}

// Connector produces a connected Wallet
type Connector interface {
	Kind() ConnectorKind
	Connect(ctx context.Context) (Wallet, error)
}

// Registry resolves connector kinds to connectors
type Registry struct {
	mu         sync.RWMutex
	connectors map[ConnectorKind]Connector
}

// NewRegistry creates a registry with the given connectors
func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{connectors: make(map[ConnectorKind]Connector)}
	for _, c := range connectors {
		r.Register(c)
	}
	return r
}

// Register adds or replaces the connector of its kind
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Kind()] = c
}

// Lookup connector of kind
func (r *Registry) Lookup(kind ConnectorKind) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[kind]
	return c, ok
}

// Connect connects through the connector of kind
func (r *Registry) Connect(ctx context.Context, kind ConnectorKind) (Wallet, error) {
	c, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConnectorUnavailable, kind)
	}
	w, err := c.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", kind, err)
	}
	return w, nil
}

// Kinds registered kinds in declaration order
func (r *Registry) Kinds() []ConnectorKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]ConnectorKind, 0, len(r.connectors))
	for k := range r.connectors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
