package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseEther converts a decimal ETH amount ("0.001") to wei
func ParseEther(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid ether amount %q: %w", amount, err)
	}
	wei := d.Shift(18)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("ether amount %q has more than 18 decimals", amount)
	}
	return wei.BigInt(), nil
}

// MustParseEther ParseEther for constants
func MustParseEther(amount string) *big.Int {
	wei, err := ParseEther(amount)
	if err != nil {
		panic(err)
	}
	return wei
}

// FormatUnits renders a base-unit amount with the given decimals, trailing zeros trimmed
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return ""
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// FormatEther renders wei as ETH
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, 18)
}
