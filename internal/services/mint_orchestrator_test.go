package services

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"boundless-travel/internal/config"
	"boundless-travel/internal/contracts"
	"boundless-travel/internal/events"
	"boundless-travel/internal/models"
	"boundless-travel/internal/repository"
	"boundless-travel/internal/utils"
	"boundless-travel/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSBT       = "0x00000000000000000000000000000000000000a1"
	testLaunchPad = "0x00000000000000000000000000000000000000b2"
	testAccount   = "0x1234567890AbcdEF1234567890aBcdef12345678"
	testInviter   = "0x00000000000000000000000000000000000000c3"
)

var fixtureNow = time.Unix(1_700_000_000, 0)

type orchestratorFixture struct {
	chains    *utils.ChainRegistry
	home      *fakeChain
	source    *fakeChain
	backend   *fakeBackend
	repo      repository.MintAttemptRepository
	publisher *recordingPublisher
	notifier  *recordingNotifier
	orch      *MintOrchestrator
}

func newOrchestratorFixture(t *testing.T, pollTimeout time.Duration, withConfirmer bool) *orchestratorFixture {
	t.Helper()
	chains := utils.NewChainRegistry(config.EnvTest, nil)
	arbitrum, ok := chains.ByName("Arbitrum")
	require.True(t, ok)

	f := &orchestratorFixture{
		chains: chains,
		home:   &fakeChain{encodeData: []byte{0xca, 0xfe}},
		source: &fakeChain{fee: big.NewInt(3e13)},
		backend: &fakeBackend{
			preMint: &models.PreMintInfo{
				Account:     testAccount,
				MetadataURI: "ipfs://vpass",
				SignHash:    "0xsignhash",
			},
			signature: "0x" + common.Bytes2Hex(make([]byte, 65)),
		},
		repo:      repository.NewMemoryMintAttemptRepository(),
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
	}
	dialer := &fakeDialer{
		byURL: map[string]*fakeChain{chains.Home().RPCURL: f.home, arbitrum.RPCURL: f.source},
		def:   f.home,
	}

	var confirmer *ConfirmationService
	if withConfirmer {
		confirmer = NewConfirmationService(dialer.Dial, time.Second, 5*time.Millisecond)
	}

	f.orch = NewMintOrchestrator(MintOrchestratorDeps{
		Chains:    chains,
		Backend:   f.backend,
		Poller:    NewSignaturePoller(f.backend, 5*time.Millisecond, pollTimeout),
		Dial:      dialer.Dial,
		Confirmer: confirmer,
		Repo:      f.repo,
		Publisher: f.publisher,
		Notifier:  f.notifier,
		Contracts: config.ContractSet{SBT: testSBT, LaunchPad: testLaunchPad},
		Mint: config.MintConfig{
			CrossChainGasLimit:      300000,
			CrossChainGasPrice:      1500000000,
			LaunchStartOffsetSec:    200,
			LaunchDeadlineOffsetSec: 60000,
		},
		Now: func() time.Time { return fixtureNow },
	})
	return f
}

func newFakeWallet(chainID int64) *fakeWallet {
	return &fakeWallet{addr: common.HexToAddress(testAccount), chainID: chainID}
}

func TestMintWithoutWalletIsNoop(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)

	attempt, err := f.orch.Mint(context.Background(), nil, "Vizing")
	assert.NoError(t, err)
	assert.Nil(t, attempt)

	attempt, err = f.orch.Mint(context.Background(), &fakeWallet{}, "Vizing")
	assert.NoError(t, err)
	assert.Nil(t, attempt)
	assert.Empty(t, f.home.Calls())
}

func TestMintUnknownChain(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)
	w := newFakeWallet(28516)

	_, err := f.orch.Mint(context.Background(), w, "")
	assert.ErrorIs(t, err, ErrChainNotSelected)

	_, err = f.orch.Mint(context.Background(), w, "Solana")
	assert.ErrorIs(t, err, ErrChainNotSelected)
	assert.Empty(t, w.Sent())
}

func TestMintSwitchRejected(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)
	w := newFakeWallet(28516)
	w.switchErr = wallet.ErrUserRejected

	attempt, err := f.orch.Mint(context.Background(), w, "Arbitrum")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainSwitchRejected)
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
	require.NotNil(t, attempt)
	assert.Equal(t, models.MintStateChainSelected, attempt.State)
	assert.Equal(t, []int64{421614}, w.switches)
	assert.Empty(t, w.Sent())
	assert.False(t, f.orch.InProgress(testAccount))
}

func TestMintAlreadyMinted(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)
	f.home.minted = true
	w := newFakeWallet(28516)

	_, err := f.orch.Mint(context.Background(), w, "Vizing")
	assert.ErrorIs(t, err, ErrAlreadyMinted)
	assert.Empty(t, w.Sent())
	assert.False(t, f.orch.InProgress(testAccount))
}

func TestDirectMint(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)
	w := newFakeWallet(28516)

	attempt, err := f.orch.Mint(context.Background(), w, "Vizing")
	require.NoError(t, err)
	require.NotNil(t, attempt)

	assert.Equal(t, models.MintPathDirect, attempt.Path)
	assert.Equal(t, models.MintOutcomeSubmitted, attempt.Outcome)
	assert.Equal(t, models.MintStateSettled, attempt.State)
	assert.Contains(t, []string(attempt.StateTrail), string(models.MintStateDirectMintSubmitted))
	assert.NotContains(t, []string(attempt.StateTrail), string(models.MintStateRelaySignatureAwaited))
	assert.NotEmpty(t, attempt.TxHash)
	assert.NotNil(t, attempt.SubmittedAt)
	assert.Nil(t, attempt.SettledAt)
	assert.Empty(t, w.switches)

	sent := w.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, common.HexToAddress(testSBT), sent[0].To)
	assert.Equal(t, HomeMintPrice(), sent[0].Value)
	assert.Equal(t, selPublicMint, sent[0].Data[:4])
	assert.Zero(t, f.backend.SignatureCalls())

	stored, err := f.repo.GetByID(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MintOutcomeSubmitted, stored.Outcome)
	assert.Equal(t, []events.MintEventType{events.MintEventStarted, events.MintEventSubmitted}, f.publisher.Types())
	assert.False(t, f.orch.InProgress(testAccount))
}

func TestMintLogsCarryCurrentState(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(func() { logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks)) })

	f := newOrchestratorFixture(t, time.Second, false)
	_, err := f.orch.Mint(context.Background(), newFakeWallet(28516), "Vizing")
	require.NoError(t, err)

	states := map[string]interface{}{}
	for _, entry := range hook.AllEntries() {
		states[entry.Message] = entry.Data["state"]
	}
	assert.Equal(t, models.MintStateChainVerified, states["mint attempt started"])
	assert.Equal(t, models.MintStatePreMintFetched, states["pre-mint info fetched"])
	assert.Equal(t, models.MintStateSettled, states["mint transaction submitted"])
}

func TestDirectMintSwitchesToHome(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)
	w := newFakeWallet(421614)

	_, err := f.orch.Mint(context.Background(), w, "Vizing")
	require.NoError(t, err)
	assert.Equal(t, []int64{28516}, w.switches)
	assert.Len(t, w.Sent(), 1)
}

func TestCrossChainMintSendsAfterSignature(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)
	invited, err := models.ParseInviteCode("qwerty")
	require.NoError(t, err)
	f.backend.preMint.InvitedCode = invited
	f.backend.preMint.InvitedAccount = testInviter
	f.backend.signatureAfter = 2

	w := newFakeWallet(421614)
	lookupsAtSend := -1
	w.onSend = func() { lookupsAtSend = f.backend.SignatureCalls() }

	attempt, err := f.orch.Mint(context.Background(), w, "Arbitrum")
	require.NoError(t, err)

	assert.Equal(t, models.MintPathCrossChain, attempt.Path)
	assert.Equal(t, models.MintOutcomeSubmitted, attempt.Outcome)
	assert.Equal(t, invited.Hex(), attempt.InviteCode)
	assert.Equal(t, InvitedMintPrice().String(), attempt.Price)
	assert.Equal(t, "30000000000000", attempt.RelayFee)
	assert.Equal(t, []string{
		string(models.MintStateIdle),
		string(models.MintStateChainSelected),
		string(models.MintStateChainVerified),
		string(models.MintStatePreMintFetched),
		string(models.MintStateRelaySignatureAwaited),
		string(models.MintStateRelaySignatureReceived),
		string(models.MintStateCrossChainMintSubmitted),
		string(models.MintStateSettled),
	}, []string(attempt.StateTrail))

	assert.Equal(t, 3, lookupsAtSend)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 3, f.backend.SignatureCalls())

	sent := w.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, common.HexToAddress(testLaunchPad), sent[0].To)
	want := new(big.Int).Add(InvitedMintPrice(), big.NewInt(3e13))
	assert.Equal(t, want, sent[0].Value)
	assert.Equal(t, selLaunch, sent[0].Data[:4])

	assert.Contains(t, f.home.Calls(), "getEncodeData")
	assert.Contains(t, f.source.Calls(), "estimateGas")

	// the message handed to getEncodeData carries the hash of the signed payload
	encodeArgs, err := unpackCall("getEncodeData", f.home.EncodeCall())
	require.NoError(t, err)
	require.Len(t, encodeArgs, 4)
	message, ok := abi.ConvertType(encodeArgs[0], new(contracts.CrossMessage)).(*contracts.CrossMessage)
	require.True(t, ok)
	wantHash, err := contracts.SignDataHash(contracts.SignData{
		SBT:            common.HexToAddress(testSBT),
		HomeChainID:    big.NewInt(28516),
		Account:        common.HexToAddress(testAccount),
		InvitedAccount: common.HexToAddress(testInviter),
		InvitedCode:    invited,
		Code:           models.EmptyInviteCode,
		MintPrice:      InvitedMintPrice(),
		MetadataURI:    "ipfs://vpass",
	})
	require.NoError(t, err)
	assert.Equal(t, [32]byte(wantHash), message.EncodeSignMessage)
	assert.Equal(t, common.HexToAddress(testAccount), message.Receiver)
	assert.Equal(t, common.HexToAddress(testInviter), message.Inviter)
	assert.Equal(t, [6]byte(invited), message.InviteCode)
	assert.Equal(t, make([]byte, 65), message.Signature)
	assert.Equal(t, InvitedMintPrice(), message.MintPrice)
	assert.Equal(t, "ipfs://vpass", message.TokenMetadataUri)
	assert.Equal(t, common.HexToAddress(testSBT), encodeArgs[1])
	assert.Equal(t, big.NewInt(300000), encodeArgs[2])
	assert.Equal(t, uint64(1500000000), encodeArgs[3])

	launchArgs, err := unpackCall("Launch", sent[0].Data)
	require.NoError(t, err)
	require.Len(t, launchArgs, 8)
	now := uint64(fixtureNow.Unix())
	assert.Equal(t, now+200, launchArgs[0], "earliest arrival")
	assert.Equal(t, now+60000, launchArgs[1], "latest arrival")
	assert.Equal(t, common.Address{}, launchArgs[2], "relayer")
	assert.Equal(t, common.HexToAddress(testAccount), launchArgs[3], "sender")
	assert.Equal(t, InvitedMintPrice(), launchArgs[4], "value")
	assert.Equal(t, uint64(28516), launchArgs[5], "destination chain")
	assert.Empty(t, launchArgs[6], "addition params")
	assert.Equal(t, []byte{0xca, 0xfe}, launchArgs[7], "message")
}

func TestCrossChainMintSignatureTimeout(t *testing.T) {
	f := newOrchestratorFixture(t, 30*time.Millisecond, false)
	f.backend.signatureAfter = -1
	w := newFakeWallet(421614)

	attempt, err := f.orch.Mint(context.Background(), w, "Arbitrum")
	assert.ErrorIs(t, err, ErrSignatureTimeout)
	require.NotNil(t, attempt)
	assert.Equal(t, models.MintOutcomeTimedOut, attempt.Outcome)
	assert.NotNil(t, attempt.SettledAt)
	assert.Empty(t, w.Sent())

	stored, err := f.repo.GetByID(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MintOutcomeTimedOut, stored.Outcome)
	assert.Equal(t, []models.MintOutcome{models.MintOutcomeTimedOut}, f.notifier.Outcomes())
}

func TestStartAndCancel(t *testing.T) {
	f := newOrchestratorFixture(t, 0, false)
	f.backend.signatureAfter = -1
	w := newFakeWallet(421614)

	snapshot, err := f.orch.Start(context.Background(), w, "Arbitrum")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.True(t, f.orch.InProgress(testAccount))

	_, err = f.orch.Start(context.Background(), w, "Arbitrum")
	assert.ErrorIs(t, err, ErrMintInProgress)

	require.NoError(t, f.orch.Cancel(context.Background(), snapshot.ID))
	f.orch.Wait()

	stored, err := f.orch.Get(context.Background(), snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MintOutcomeCancelled, stored.Outcome)
	assert.False(t, f.orch.InProgress(testAccount))
	assert.Empty(t, w.Sent())

	assert.ErrorIs(t, f.orch.Cancel(context.Background(), snapshot.ID), ErrAttemptNotActive)
	assert.ErrorIs(t, f.orch.Cancel(context.Background(), "missing"), repository.ErrNotFound)
}

func TestCancelAllSettlesPendingAttempts(t *testing.T) {
	f := newOrchestratorFixture(t, 0, false)
	f.backend.signatureAfter = -1

	first, err := f.orch.Start(context.Background(), newFakeWallet(421614), "Arbitrum")
	require.NoError(t, err)
	other := &fakeWallet{addr: common.HexToAddress(testInviter), chainID: 421614}
	second, err := f.orch.Start(context.Background(), other, "Arbitrum")
	require.NoError(t, err)

	assert.Equal(t, 2, f.orch.CancelAll())
	f.orch.Wait()

	for _, id := range []string{first.ID, second.ID} {
		stored, err := f.orch.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.MintOutcomeCancelled, stored.Outcome)
		assert.Equal(t, models.MintStateSettled, stored.State)
		assert.NotNil(t, stored.SettledAt)
	}
	assert.False(t, f.orch.InProgress(testAccount))
	assert.False(t, f.orch.InProgress(testInviter))
	assert.Zero(t, f.orch.CancelAll())
}

func TestMintConfirmationRecorded(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, true)
	f.home.receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(7)}
	w := newFakeWallet(28516)

	attempt, err := f.orch.Mint(context.Background(), w, "Vizing")
	require.NoError(t, err)
	f.orch.Wait()

	stored, err := f.repo.GetByID(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MintOutcomeConfirmed, stored.Outcome)
	assert.NotNil(t, stored.SettledAt)
	assert.Equal(t, []models.MintOutcome{models.MintOutcomeSubmitted, models.MintOutcomeConfirmed}, f.notifier.Outcomes())

	for _, account := range []string{attempt.Account, strings.ToLower(attempt.Account), "0x" + strings.ToUpper(attempt.Account[2:])} {
		history, err := f.orch.History(context.Background(), account, 10)
		require.NoError(t, err, account)
		require.Len(t, history, 1, account)
		assert.Equal(t, attempt.ID, history[0].ID)
	}
	_, err = f.orch.History(context.Background(), "not-an-address", 10)
	assert.Error(t, err)
}

func TestMintSendFailure(t *testing.T) {
	f := newOrchestratorFixture(t, time.Second, false)
	w := newFakeWallet(28516)
	w.sendErr = errors.New("insufficient funds")

	attempt, err := f.orch.Mint(context.Background(), w, "Vizing")
	require.Error(t, err)
	assert.Equal(t, models.MintOutcomeFailed, attempt.Outcome)
	assert.Contains(t, attempt.LastError, "insufficient funds")
}
