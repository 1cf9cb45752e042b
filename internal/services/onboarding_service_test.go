package services

import (
	"context"
	"fmt"
	"testing"

	"boundless-travel/internal/clients"
	"boundless-travel/internal/models"
	"boundless-travel/internal/state"
	"boundless-travel/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectedSession(t *testing.T, info *models.AccountTravelInfo) *state.Session {
	t.Helper()
	sess := state.NewStore().Get(testAccount)
	sess.Connect(wallet.ConnectorMetaMask)
	if info != nil {
		sess.SetTravelInfo(info)
	}
	return sess
}

func TestNextRequiresConnectedWallet(t *testing.T) {
	svc := NewOnboardingService(&fakeBackend{})
	sess := state.NewStore().Get(testAccount)

	view, err := svc.Next(sess)
	assert.ErrorIs(t, err, ErrWalletNotConnected)
	assert.Equal(t, StepConnectWallet, view.CurrentStep)
}

func TestNextSkipsWizardForInvitedAccount(t *testing.T) {
	code, err := models.ParseInviteCode("qwerty")
	require.NoError(t, err)
	svc := NewOnboardingService(&fakeBackend{})
	sess := connectedSession(t, &models.AccountTravelInfo{Account: testAccount, InvitedCode: code})

	view, err := svc.Next(sess)
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.True(t, sess.Snapshot().IsWelcomeViewed)
}

func TestWizardWalksSteps(t *testing.T) {
	svc := NewOnboardingService(&fakeBackend{})
	sess := connectedSession(t, &models.AccountTravelInfo{Account: testAccount})

	view, err := svc.Next(sess)
	require.NoError(t, err)
	assert.Equal(t, StepConnectSocials, view.CurrentStep)

	view, err = svc.Previous(sess)
	require.NoError(t, err)
	assert.Equal(t, StepConnectWallet, view.CurrentStep)

	_, err = svc.Previous(sess)
	assert.Error(t, err)

	_, err = svc.Next(sess)
	require.NoError(t, err)
	view, err = svc.Next(sess)
	require.NoError(t, err)
	assert.Equal(t, StepInviteCode, view.CurrentStep)
	assert.False(t, view.Completed)

	_, err = svc.Next(sess)
	assert.Error(t, err)
	_, err = svc.Previous(sess)
	assert.Error(t, err)
}

func TestSubmitInvalidInviteCode(t *testing.T) {
	backend := &fakeBackend{checkErr: fmt.Errorf("%w: qwerty", clients.ErrInvalidInviteCode)}
	svc := NewOnboardingService(backend)
	sess := connectedSession(t, nil)
	sess.SetOnboardingStep(StepInviteCode)

	view, err := svc.SubmitInviteCode(context.Background(), sess, "qwerty")
	assert.ErrorIs(t, err, clients.ErrInvalidInviteCode)
	assert.Equal(t, InvalidInviteCodeMessage, view.Message)
	assert.False(t, view.Completed)
	assert.Equal(t, StepInviteCode, view.CurrentStep)
	assert.Zero(t, backend.loginCalls)
}

func TestSubmitEmptyInviteCodeCompletes(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewOnboardingService(backend)
	sess := connectedSession(t, nil)
	sess.SetOnboardingStep(StepInviteCode)

	view, err := svc.SubmitInviteCode(context.Background(), sess, "  ")
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Empty(t, backend.checked)
}

func TestSubmitValidInviteCodeRefreshesTravelInfo(t *testing.T) {
	code, err := models.ParseInviteCode("qwerty")
	require.NoError(t, err)
	backend := &fakeBackend{info: &models.AccountTravelInfo{Account: testAccount, InvitedCode: code}}
	svc := NewOnboardingService(backend)
	sess := connectedSession(t, nil)

	view, err := svc.SubmitInviteCode(context.Background(), sess, "qwerty")
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, []string{"qwerty"}, backend.checked)
	assert.True(t, sess.Snapshot().TravelInfo.IsInvited())
}

func TestEnsureTravelInfoToleratesSettingsFailure(t *testing.T) {
	backend := &fakeBackend{settingsErr: fmt.Errorf("boom")}
	svc := NewOnboardingService(backend)
	sess := connectedSession(t, nil)

	st, err := svc.EnsureTravelInfo(context.Background(), sess)
	require.NoError(t, err)
	require.NotNil(t, st.TravelInfo)
	assert.Nil(t, st.Settings)

	_, err = svc.EnsureTravelInfo(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.loginCalls)
}
