package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// AddressHeadLength prefix kept when shortening a wallet address
	AddressHeadLength = 8
	// AddressTailLength suffix kept when shortening a wallet address
	AddressTailLength = 4
	// ContractHeadLength prefix kept when shortening the SBT contract address
	ContractHeadLength = 16
)

// IsEvmAddress checks whether address is a 0x-prefixed 20 byte hex address
func IsEvmAddress(address string) bool {
	return strings.HasPrefix(strings.ToLower(address), "0x") && common.IsHexAddress(address)
}

// NormalizeAddress parses an EVM address into checksum form
func NormalizeAddress(address string) (common.Address, error) {
	if !IsEvmAddress(address) {
		return common.Address{}, fmt.Errorf("invalid EVM address: %q", address)
	}
	return common.HexToAddress(address), nil
}

// Shorten keeps head leading and tail trailing characters joined by "..."
// Strings too short to shorten are returned unchanged.
func Shorten(s string, head, tail int) string {
	if head < 0 || tail < 0 || len(s) <= head+tail {
		return s
	}
	return s[:head] + "..." + s[len(s)-tail:]
}

// AddressShortcut wallet address shortcut, e.g. 0x123456...5678
func AddressShortcut(address string) string {
	return Shorten(address, AddressHeadLength, AddressTailLength)
}

// ContractAddressShortcut SBT contract shortcut with a longer prefix
func ContractAddressShortcut(address string) string {
	return Shorten(address, ContractHeadLength, AddressTailLength)
}
