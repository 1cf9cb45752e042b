package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressShortcut(t *testing.T) {
	assert.Equal(t, "0x123456...5678", AddressShortcut("0x1234567890abcdef1234567890abcdef12345678"))
	assert.Equal(t, "0x1234567890abcd...5678", ContractAddressShortcut("0x1234567890abcdef1234567890abcdef12345678"))
	assert.Equal(t, "0x12", AddressShortcut("0x12"))
	assert.Equal(t, "", AddressShortcut(""))
}

func TestNormalizeAddress(t *testing.T) {
	addr, err := NormalizeAddress("0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678"), addr)

	_, err = NormalizeAddress("0x1234")
	assert.Error(t, err)
	assert.False(t, IsEvmAddress("vizing"))
	assert.True(t, IsEvmAddress("0x1234567890abcdef1234567890abcdef12345678"))
}
