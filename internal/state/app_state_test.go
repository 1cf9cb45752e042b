package state

import (
	"testing"

	"boundless-travel/internal/models"
	"boundless-travel/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionUpdatesAreWholeObject(t *testing.T) {
	store := NewStore()
	sess := store.Get("0xAbC0000000000000000000000000000000000001")

	info := &models.AccountTravelInfo{Code: models.InviteCode{'a', 'b', 'c', 'd', 'e', 'f'}, Tickets: 1}
	sess.SetTravelInfo(info)
	info.Tickets = 99

	snap := sess.Snapshot()
	require.NotNil(t, snap.TravelInfo)
	assert.Equal(t, 1, snap.TravelInfo.Tickets)
}

func TestStoreKeysAreCaseInsensitive(t *testing.T) {
	store := NewStore()
	a := store.Get("0xAbC0000000000000000000000000000000000001")
	b := store.Get("0xabc0000000000000000000000000000000000001")
	assert.Same(t, a, b)
}

func TestResetOnLogout(t *testing.T) {
	store := NewStore()
	account := "0xabc0000000000000000000000000000000000001"
	sess := store.Get(account)
	sess.Connect(wallet.ConnectorMetaMask)
	sess.SetTravelInfo(&models.AccountTravelInfo{Tickets: 2})
	sess.SetOnboardingStep(3)
	sess.MarkWelcomeViewed()

	st := sess.Reset()
	assert.Nil(t, st.TravelInfo)
	assert.False(t, st.IsWelcomeViewed)
	assert.False(t, st.Connected)
	assert.Equal(t, 1, st.OnboardingStep)
	assert.Equal(t, account, st.Account)

	store.Remove(account)
	_, ok := store.Lookup(account)
	assert.False(t, ok)
}
