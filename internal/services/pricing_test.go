package services

import (
	"testing"

	"boundless-travel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintPrice(t *testing.T) {
	assert.Equal(t, "1000000000000000", MintPrice(models.EmptyInviteCode).String())

	code, err := models.ParseInviteCode("qwerty")
	require.NoError(t, err)
	assert.Equal(t, "800000000000000", MintPrice(code).String())
	assert.Equal(t, "500000000000000", ShareToEarnRebate().String())
}

func TestPricesAreCopies(t *testing.T) {
	p := HomeMintPrice()
	p.SetInt64(1)
	assert.Equal(t, "1000000000000000", HomeMintPrice().String())
}
