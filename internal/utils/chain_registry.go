package utils

import (
	"fmt"
	"math/big"
	"strings"

	"boundless-travel/internal/config"
)

// HomeChainName chain on which the pass contract lives; mints there are direct
const HomeChainName = "Vizing"

// NativeCurrency native currency descriptor
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// ChainConfig supported chain entry
type ChainConfig struct {
	Name           string         `json:"name"`
	ID             int64          `json:"id"`
	RPCURL         string         `json:"rpcUrl"`
	ExplorerURL    string         `json:"explorerUrl"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
	Balance        *big.Int       `json:"balance,omitempty"` // nil when unknown
}

// ExplorerAddressURL explorer page of an address on this chain
func (c ChainConfig) ExplorerAddressURL(address string) string {
	return fmt.Sprintf("%s/address/%s", strings.TrimRight(c.ExplorerURL, "/"), address)
}

// ExplorerTxURL explorer page of a transaction on this chain
func (c ChainConfig) ExplorerTxURL(txHash string) string {
	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(c.ExplorerURL, "/"), txHash)
}

var ether = NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}

var sepoliaChains = []ChainConfig{
	{Name: "Arbitrum", ID: 421614, RPCURL: "https://sepolia-rollup.arbitrum.io/rpc", ExplorerURL: "https://sepolia.arbiscan.io", NativeCurrency: ether},
	{Name: "Ethereum", ID: 11155111, RPCURL: "https://ethereum-sepolia-rpc.publicnode.com", ExplorerURL: "https://sepolia.etherscan.io", NativeCurrency: ether},
	{Name: "Base", ID: 84532, RPCURL: "https://sepolia.base.org", ExplorerURL: "https://sepolia.basescan.org", NativeCurrency: ether},
	{Name: "Linea", ID: 59141, RPCURL: "https://rpc.sepolia.linea.build", ExplorerURL: "https://sepolia.lineascan.build", NativeCurrency: ether},
	{Name: "Scroll", ID: 534351, RPCURL: "https://sepolia-rpc.scroll.io", ExplorerURL: "https://sepolia.scrollscan.com", NativeCurrency: ether},
	{Name: "Optimism", ID: 11155420, RPCURL: "https://sepolia.optimism.io", ExplorerURL: "https://sepolia-optimism.etherscan.io", NativeCurrency: ether},
	{Name: "Polygon zkEVM", ID: 2442, RPCURL: "https://etherscan.cardona.zkevm-rpc.com", ExplorerURL: "https://cardona-zkevm.polygonscan.com", NativeCurrency: ether},
	{Name: "Blast", ID: 168587773, RPCURL: "https://sepolia.blast.io", ExplorerURL: "https://sepolia.blastscan.io", NativeCurrency: ether},
	{Name: "Taiko", ID: 167009, RPCURL: "https://rpc.hekla.taiko.xyz", ExplorerURL: "https://hekla.taikoscan.network", NativeCurrency: ether},
	{Name: "BOB", ID: 111, RPCURL: "https://testnet.rpc.gobob.xyz", ExplorerURL: "https://testnet-explorer.gobob.xyz", NativeCurrency: ether},
	{Name: HomeChainName, ID: 28516, RPCURL: "https://rpc-sepolia.vizing.com", ExplorerURL: "https://explorer.vizing.com", NativeCurrency: ether},
}

var mainnetChains = []ChainConfig{
	{Name: "Arbitrum", ID: 42161, RPCURL: "https://arb1.arbitrum.io/rpc", ExplorerURL: "https://arbiscan.io", NativeCurrency: ether},
	{Name: "Ethereum", ID: 1, RPCURL: "https://ethereum.publicnode.com", ExplorerURL: "https://etherscan.io", NativeCurrency: ether},
	{Name: "Base", ID: 8453, RPCURL: "https://mainnet.base.org", ExplorerURL: "https://basescan.org", NativeCurrency: ether},
	{Name: "Linea", ID: 59144, RPCURL: "https://rpc.linea.build", ExplorerURL: "https://lineascan.build", NativeCurrency: ether},
	{Name: "Scroll", ID: 534352, RPCURL: "https://rpc.scroll.io", ExplorerURL: "https://scrollscan.com", NativeCurrency: ether},
	{Name: "Optimism", ID: 10, RPCURL: "https://optimism.publicnode.com", ExplorerURL: "https://optimistic.etherscan.io", NativeCurrency: ether},
	{Name: "Polygon zkEVM", ID: 1101, RPCURL: "https://zkevm-rpc.com", ExplorerURL: "https://polygonscan.com", NativeCurrency: ether},
	{Name: "Blast", ID: 81457, RPCURL: "https://rpc.blast.io", ExplorerURL: "https://blastexplorer.io", NativeCurrency: ether},
	{Name: "Taiko", ID: 167000, RPCURL: "https://rpc.mainnet.taiko.xyz", ExplorerURL: "https://taikoscan.io", NativeCurrency: ether},
	{Name: "BOB", ID: 60808, RPCURL: "https://rpc.gobob.xyz", ExplorerURL: "https://explorer.gobob.xyz", NativeCurrency: ether},
	{Name: HomeChainName, ID: 28518, RPCURL: "https://rpc.vizing.com", ExplorerURL: "https://explorer.vizing.com", NativeCurrency: ether},
}

var chainTables = map[config.Environment][]ChainConfig{
	config.EnvDevelopment: sepoliaChains,
	config.EnvTest:        sepoliaChains,
	config.EnvProduction:  mainnetChains,
}

// GetChainsForEnvironment ordered chain table of env; the slice is a copy
func GetChainsForEnvironment(env config.Environment) []ChainConfig {
	table := chainTables[env]
	out := make([]ChainConfig, len(table))
	copy(out, table)
	return out
}

// FindChainByName looks a chain up by its exact name; ok is false when absent
func FindChainByName(env config.Environment, name string) (ChainConfig, bool) {
	for _, chain := range chainTables[env] {
		if chain.Name == name {
			return chain, true
		}
	}
	return ChainConfig{}, false
}

// FindChainByID looks a chain up by chain id
func FindChainByID(env config.Environment, id int64) (ChainConfig, bool) {
	for _, chain := range chainTables[env] {
		if chain.ID == id {
			return chain, true
		}
	}
	return ChainConfig{}, false
}

// ChainRegistry chain table of the active environment with RPC overrides applied
type ChainRegistry struct {
	env    config.Environment
	chains []ChainConfig
	byName map[string]int
	byID   map[int64]int
}

// NewChainRegistry builds the registry of env; rpcOverrides maps chain id to RPC URL
func NewChainRegistry(env config.Environment, rpcOverrides map[int64]string) *ChainRegistry {
	r := &ChainRegistry{
		env:    env,
		chains: GetChainsForEnvironment(env),
		byName: make(map[string]int),
		byID:   make(map[int64]int),
	}
	for i := range r.chains {
		if url, ok := rpcOverrides[r.chains[i].ID]; ok && url != "" {
			r.chains[i].RPCURL = url
		}
		r.byName[r.chains[i].Name] = i
		r.byID[r.chains[i].ID] = i
	}
	return r
}

// Environment active environment
func (r *ChainRegistry) Environment() config.Environment {
	return r.env
}

// Chains ordered copy of the table
func (r *ChainRegistry) Chains() []ChainConfig {
	out := make([]ChainConfig, len(r.chains))
	copy(out, r.chains)
	return out
}

// ByName lookup by exact name
func (r *ChainRegistry) ByName(name string) (ChainConfig, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ChainConfig{}, false
	}
	return r.chains[i], true
}

// ByID lookup by chain id
func (r *ChainRegistry) ByID(id int64) (ChainConfig, bool) {
	i, ok := r.byID[id]
	if !ok {
		return ChainConfig{}, false
	}
	return r.chains[i], true
}

// Home the home chain entry; every table carries one
func (r *ChainRegistry) Home() ChainConfig {
	chain, _ := r.ByName(HomeChainName)
	return chain
}

// IsHome reports whether id is the home chain
func (r *ChainRegistry) IsHome(id int64) bool {
	return r.Home().ID == id
}
