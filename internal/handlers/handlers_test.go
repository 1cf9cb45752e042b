package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"boundless-travel/internal/repository"
	"boundless-travel/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nonceAccount = "0x1234567890AbcdEF1234567890aBcdef12345678"

func TestNonceStoreSingleUse(t *testing.T) {
	store := NewNonceStore()
	nonce, message, expiresAt := store.Issue(nonceAccount)
	assert.Contains(t, message, nonce)
	assert.WithinDuration(t, time.Now().Add(NonceTTL), expiresAt, time.Second)

	got, err := store.Consume(nonce, "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)
	assert.Equal(t, message, got)

	_, err = store.Consume(nonce, nonceAccount)
	assert.ErrorIs(t, err, errNonceNotFound)
}

func TestNonceStoreRejectsOtherAccount(t *testing.T) {
	store := NewNonceStore()
	nonce, _, _ := store.Issue(nonceAccount)
	_, err := store.Consume(nonce, "0x00000000000000000000000000000000000000a1")
	assert.ErrorIs(t, err, errNonceNotFound)
}

func TestNonceStoreExpiry(t *testing.T) {
	store := NewNonceStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	nonce, _, _ := store.Issue(nonceAccount)

	now = now.Add(NonceTTL + time.Second)
	_, err := store.Consume(nonce, nonceAccount)
	assert.ErrorIs(t, err, errNonceNotFound)
}

func TestMintErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrChainNotSelected, http.StatusBadRequest},
		{fmt.Errorf("get: %w", repository.ErrNotFound), http.StatusNotFound},
		{services.ErrAlreadyMinted, http.StatusConflict},
		{services.ErrMintInProgress, http.StatusConflict},
		{services.ErrAttemptNotActive, http.StatusConflict},
		{fmt.Errorf("%w: user rejected", services.ErrChainSwitchRejected), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mintErrorStatus(tc.err), tc.err.Error())
	}
}
