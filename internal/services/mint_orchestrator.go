package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"boundless-travel/internal/config"
	"boundless-travel/internal/contracts"
	"boundless-travel/internal/events"
	"boundless-travel/internal/interfaces"
	"boundless-travel/internal/metrics"
	"boundless-travel/internal/models"
	"boundless-travel/internal/repository"
	"boundless-travel/internal/utils"
	"boundless-travel/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	// ErrChainNotSelected no chain, or a chain missing from the registry, was chosen
	ErrChainNotSelected = errors.New("please select chain")
	// ErrChainSwitchRejected the wallet refused or failed to switch to the selected chain
	ErrChainSwitchRejected = errors.New("chain switch rejected")
	// ErrAlreadyMinted the account already holds a pass
	ErrAlreadyMinted = errors.New("account already minted a VPass")
	// ErrMintInProgress the account has an unsettled attempt
	ErrMintInProgress = errors.New("mint already in progress for this account")
	// ErrAttemptNotActive the attempt exists but can no longer be cancelled
	ErrAttemptNotActive = errors.New("mint attempt is not in progress")
)

// MintNotifier receives every persisted attempt change
type MintNotifier interface {
	NotifyMintAttempt(attempt *models.MintAttempt)
}

// MintOrchestratorDeps collaborators of the orchestrator
type MintOrchestratorDeps struct {
	Chains    *utils.ChainRegistry
	Backend   interfaces.TravelBackend
	Poller    *SignaturePoller
	Dial      ChainDialer
	Confirmer *ConfirmationService // nil disables receipt watching
	Repo      repository.MintAttemptRepository
	Publisher events.Publisher
	Notifier  MintNotifier
	Contracts config.ContractSet
	Mint      config.MintConfig
	Now       func() time.Time
}

type activeAttempt struct {
	id      string
	account string
	cancel  context.CancelFunc
}

// MintOrchestrator drives a VPass mint from chain selection to submission
type MintOrchestrator struct {
	chains    *utils.ChainRegistry
	backend   interfaces.TravelBackend
	poller    *SignaturePoller
	dial      ChainDialer
	confirmer *ConfirmationService
	repo      repository.MintAttemptRepository
	publisher events.Publisher
	notifier  MintNotifier
	contracts config.ContractSet
	mintCfg   config.MintConfig
	now       func() time.Time

	mu        sync.Mutex
	byAccount map[string]*activeAttempt
	byID      map[string]*activeAttempt
	wg        sync.WaitGroup
}

// NewMintOrchestrator creates an orchestrator
func NewMintOrchestrator(deps MintOrchestratorDeps) *MintOrchestrator {
	o := &MintOrchestrator{
		chains:    deps.Chains,
		backend:   deps.Backend,
		poller:    deps.Poller,
		dial:      deps.Dial,
		confirmer: deps.Confirmer,
		repo:      deps.Repo,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		contracts: deps.Contracts,
		mintCfg:   deps.Mint,
		now:       deps.Now,
		byAccount: make(map[string]*activeAttempt),
		byID:      make(map[string]*activeAttempt),
	}
	if o.dial == nil {
		o.dial = DialChainClient
	}
	if o.repo == nil {
		o.repo = repository.NewMemoryMintAttemptRepository()
	}
	if o.publisher == nil {
		o.publisher = events.NopPublisher{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.poller == nil {
		o.poller = NewSignaturePoller(o.backend, o.mintCfg.SignaturePollInterval(), o.mintCfg.SignaturePollTimeout())
	}
	return o
}

// Mint runs an attempt up to submission on the calling goroutine.
// A nil wallet or a wallet without an address is a no-op: nil attempt, nil error.
func (o *MintOrchestrator) Mint(ctx context.Context, w wallet.Wallet, chainName string) (*models.MintAttempt, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	attempt, chain, err := o.prepare(ctx, w, chainName, cancel)
	if attempt == nil || err != nil {
		return attempt, err
	}
	defer o.release(attempt)

	err = o.run(ctx, w, chain, attempt)
	return attempt.Clone(), err
}

// Start verifies the chain synchronously and continues the attempt in the background
func (o *MintOrchestrator) Start(ctx context.Context, w wallet.Wallet, chainName string) (*models.MintAttempt, error) {
	runCtx, cancel := context.WithCancel(context.Background())

	attempt, chain, err := o.prepare(ctx, w, chainName, cancel)
	if attempt == nil || err != nil {
		cancel()
		return attempt, err
	}

	snapshot := attempt.Clone()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()
		defer o.release(attempt)
		_ = o.run(runCtx, w, chain, attempt)
	}()
	return snapshot, nil
}

// Cancel stops an in-flight attempt; a pending signature wait returns immediately
func (o *MintOrchestrator) Cancel(ctx context.Context, id string) error {
	o.mu.Lock()
	active, ok := o.byID[id]
	o.mu.Unlock()
	if ok {
		active.cancel()
		logrus.WithField("attemptId", id).Info("mint attempt cancelled")
		return nil
	}
	if _, err := o.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrAttemptNotActive
}

// CancelAll cancels every in-flight attempt and returns how many were running.
// Cancelled attempts settle as cancelled on their own goroutines; Wait blocks until they have.
func (o *MintOrchestrator) CancelAll() int {
	o.mu.Lock()
	active := make([]*activeAttempt, 0, len(o.byID))
	for _, a := range o.byID {
		active = append(active, a)
	}
	o.mu.Unlock()

	for _, a := range active {
		a.cancel()
	}
	if len(active) > 0 {
		logrus.WithField("count", len(active)).Info("in-flight mint attempts cancelled")
	}
	return len(active)
}

// Get persisted attempt by id
func (o *MintOrchestrator) Get(ctx context.Context, id string) (*models.MintAttempt, error) {
	return o.repo.GetByID(ctx, id)
}

// History attempts of account, newest first. Attempts are stored under the checksummed address.
func (o *MintOrchestrator) History(ctx context.Context, account string, limit int) ([]*models.MintAttempt, error) {
	addr, err := utils.NormalizeAddress(account)
	if err != nil {
		return nil, err
	}
	return o.repo.FindByAccount(ctx, addr.Hex(), limit)
}

// InProgress reports whether account has an unsettled attempt
func (o *MintOrchestrator) InProgress(account string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.byAccount[strings.ToLower(account)]
	return ok
}

// Wait blocks until background attempts and receipt watchers finish
func (o *MintOrchestrator) Wait() {
	o.wg.Wait()
}

func (o *MintOrchestrator) reserve(id, account string, cancel context.CancelFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := strings.ToLower(account)
	if _, busy := o.byAccount[key]; busy {
		return ErrMintInProgress
	}
	a := &activeAttempt{id: id, account: key, cancel: cancel}
	o.byAccount[key] = a
	o.byID[id] = a
	metrics.MintAttemptsInFlight.Inc()
	return nil
}

func (o *MintOrchestrator) release(attempt *models.MintAttempt) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.byID[attempt.ID]
	if !ok {
		return
	}
	delete(o.byID, a.id)
	delete(o.byAccount, a.account)
	metrics.MintAttemptsInFlight.Dec()
}

// prepare covers Idle -> ChainSelected -> ChainVerified plus the pre-flight guards
func (o *MintOrchestrator) prepare(ctx context.Context, w wallet.Wallet, chainName string, cancel context.CancelFunc) (*models.MintAttempt, utils.ChainConfig, error) {
	if w == nil || w.Address() == (common.Address{}) {
		return nil, utils.ChainConfig{}, nil
	}
	chain, ok := o.chains.ByName(chainName)
	if !ok {
		return nil, utils.ChainConfig{}, ErrChainNotSelected
	}

	path := models.MintPathCrossChain
	if o.chains.IsHome(chain.ID) {
		path = models.MintPathDirect
	}
	attempt := &models.MintAttempt{
		ID:         uuid.NewString(),
		Account:    w.Address().Hex(),
		ChainID:    chain.ID,
		ChainName:  chain.Name,
		Path:       path,
		State:      models.MintStateIdle,
		StateTrail: pq.StringArray{string(models.MintStateIdle)},
		Outcome:    models.MintOutcomePending,
		CreatedAt:  o.now(),
	}
	attempt.Transition(models.MintStateChainSelected)

	if err := o.reserve(attempt.ID, attempt.Account, cancel); err != nil {
		return nil, chain, err
	}
	if err := o.ensureChain(ctx, w, chain); err != nil {
		o.release(attempt)
		o.logger(attempt).WithError(err).Warn("chain verification failed")
		return attempt, chain, err
	}
	attempt.Transition(models.MintStateChainVerified)

	minted, err := o.alreadyMinted(ctx, w.Address())
	if err != nil {
		o.logger(attempt).WithError(err).Warn("could not read mint status, continuing")
	}
	if minted {
		o.release(attempt)
		return attempt, chain, ErrAlreadyMinted
	}

	if err := o.repo.Create(ctx, attempt); err != nil {
		o.release(attempt)
		return attempt, chain, fmt.Errorf("persist mint attempt: %w", err)
	}
	o.publish(ctx, events.MintEventStarted, attempt)
	o.logger(attempt).Info("mint attempt started")
	return attempt, chain, nil
}

func (o *MintOrchestrator) ensureChain(ctx context.Context, w wallet.Wallet, chain utils.ChainConfig) error {
	current, err := w.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("query wallet chain: %w", err)
	}
	if current == chain.ID {
		return nil
	}
	if err := w.SwitchChain(ctx, chain); err != nil {
		return fmt.Errorf("%w: %w", ErrChainSwitchRejected, err)
	}
	return nil
}

func (o *MintOrchestrator) alreadyMinted(ctx context.Context, account common.Address) (bool, error) {
	sbtAddr, err := o.sbtAddress()
	if err != nil {
		return false, err
	}
	client, err := o.dial(ctx, o.chains.Home().RPCURL)
	if err != nil {
		return false, fmt.Errorf("dial home chain: %w", err)
	}
	defer client.Close()
	return contracts.NewPassSBT(sbtAddr, client).IsAlreadyMinted(ctx, account)
}

// run covers PreMintFetched through Settled
func (o *MintOrchestrator) run(ctx context.Context, w wallet.Wallet, chain utils.ChainConfig, attempt *models.MintAttempt) error {
	preMint, err := o.backend.GetPreMintInfo(ctx, attempt.Account)
	if err != nil {
		return o.fail(attempt, fmt.Errorf("fetch pre-mint info: %w", err))
	}
	price := MintPrice(preMint.InvitedCode)
	attempt.InviteCode = preMint.InvitedCode.Hex()
	attempt.Price = price.String()
	attempt.SignHash = preMint.SignHash
	attempt.Transition(models.MintStatePreMintFetched)
	o.save(attempt)
	o.logger(attempt).WithFields(logrus.Fields{
		"price":      utils.FormatEther(price),
		"inviteCode": attempt.InviteCode,
	}).Info("pre-mint info fetched")

	var txHash common.Hash
	if attempt.Path == models.MintPathDirect {
		txHash, err = o.directMint(ctx, w, preMint, price)
		if err != nil {
			return o.fail(attempt, err)
		}
		attempt.Transition(models.MintStateDirectMintSubmitted)
	} else {
		txHash, err = o.crossChainMint(ctx, w, chain, attempt, preMint, price)
		if err != nil {
			return o.fail(attempt, err)
		}
		attempt.Transition(models.MintStateCrossChainMintSubmitted)
	}

	submittedAt := o.now()
	attempt.TxHash = txHash.Hex()
	attempt.SubmittedAt = &submittedAt
	attempt.Outcome = models.MintOutcomeSubmitted
	attempt.Transition(models.MintStateSettled)
	o.report(attempt)
	o.logger(attempt).WithField("txHash", attempt.TxHash).Info("mint transaction submitted")

	o.watch(attempt.Clone(), chain)
	return nil
}

func (o *MintOrchestrator) directMint(ctx context.Context, w wallet.Wallet, preMint *models.PreMintInfo, price *big.Int) (common.Hash, error) {
	sbtAddr, err := o.sbtAddress()
	if err != nil {
		return common.Hash{}, err
	}
	sbt := contracts.NewPassSBT(sbtAddr, nil)
	data, err := sbt.PackPublicMint(preMint.InvitedCode, preMint.Code, inviterAddress(preMint), preMint.MetadataURI)
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := w.SendTransaction(ctx, wallet.TxRequest{To: sbt.Address(), Value: price, Data: data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("send publicMint: %w", err)
	}
	return hash, nil
}

func (o *MintOrchestrator) crossChainMint(ctx context.Context, w wallet.Wallet, chain utils.ChainConfig, attempt *models.MintAttempt, preMint *models.PreMintInfo, price *big.Int) (common.Hash, error) {
	sbtAddr, err := o.sbtAddress()
	if err != nil {
		return common.Hash{}, err
	}
	launchPadAddr, err := o.launchPadAddress(chain.ID)
	if err != nil {
		return common.Hash{}, err
	}

	attempt.Transition(models.MintStateRelaySignatureAwaited)
	o.save(attempt)

	signature, err := o.poller.Wait(ctx, preMint.SignHash)
	if err != nil {
		return common.Hash{}, err
	}
	attempt.Transition(models.MintStateRelaySignatureReceived)
	o.save(attempt)

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid relay signature: %w", err)
	}

	home := o.chains.Home()
	inviter := inviterAddress(preMint)
	signHash, err := contracts.SignDataHash(contracts.SignData{
		SBT:            sbtAddr,
		HomeChainID:    big.NewInt(home.ID),
		Account:        w.Address(),
		InvitedAccount: inviter,
		InvitedCode:    preMint.InvitedCode,
		Code:           preMint.Code,
		MintPrice:      price,
		MetadataURI:    preMint.MetadataURI,
	})
	if err != nil {
		return common.Hash{}, err
	}

	homeClient, err := o.dial(ctx, home.RPCURL)
	if err != nil {
		return common.Hash{}, fmt.Errorf("dial home chain: %w", err)
	}
	defer homeClient.Close()

	message, err := contracts.NewPassSBT(sbtAddr, homeClient).GetEncodeData(ctx, contracts.CrossMessage{
		Receiver:          common.HexToAddress(preMint.Account),
		Inviter:           inviter,
		InviteCode:        [6]byte(preMint.InvitedCode),
		PersonlInviteCode: [6]byte(preMint.Code),
		EncodeSignMessage: [32]byte(signHash),
		Signature:         sig,
		MintPrice:         price,
		TokenMetadataUri:  preMint.MetadataURI,
	}, sbtAddr, o.mintCfg.CrossChainGasLimit, o.mintCfg.CrossChainGasPrice)
	if err != nil {
		return common.Hash{}, err
	}

	sourceClient, err := o.dial(ctx, chain.RPCURL)
	if err != nil {
		return common.Hash{}, fmt.Errorf("dial %s: %w", chain.Name, err)
	}
	defer sourceClient.Close()

	launchPad := contracts.NewLaunchPad(launchPadAddr, sourceClient)
	fee, err := launchPad.EstimateGas(ctx, price, uint64(home.ID), nil, message)
	if err != nil {
		return common.Hash{}, err
	}
	attempt.RelayFee = fee.String()

	now := o.now().Unix()
	data, err := launchPad.PackLaunch(contracts.LaunchParams{
		EarliestArrival: uint64(now + o.mintCfg.LaunchStartOffsetSec),
		LatestArrival:   uint64(now + o.mintCfg.LaunchDeadlineOffsetSec),
		Sender:          w.Address(),
		Value:           price,
		DestChainID:     uint64(home.ID),
		Message:         message,
	})
	if err != nil {
		return common.Hash{}, err
	}

	// the wallet may have moved while the signature was pending
	if err := o.ensureChain(ctx, w, chain); err != nil {
		return common.Hash{}, err
	}

	total := new(big.Int).Add(fee, price)
	hash, err := w.SendTransaction(ctx, wallet.TxRequest{To: launchPad.Address(), Value: total, Data: data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("send Launch: %w", err)
	}
	return hash, nil
}

// watch waits for the receipt of a submitted attempt and records the final outcome
func (o *MintOrchestrator) watch(attempt *models.MintAttempt, chain utils.ChainConfig) {
	if o.confirmer == nil || attempt.TxHash == "" {
		return
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		receipt, err := o.confirmer.WaitForReceipt(context.Background(), chain.RPCURL, common.HexToHash(attempt.TxHash))
		if err != nil {
			o.logger(attempt).WithError(err).Warn("mint receipt not confirmed")
			return
		}

		attempt.Outcome = models.MintOutcomeConfirmed
		if receipt.Status != types.ReceiptStatusSuccessful {
			attempt.Outcome = models.MintOutcomeReverted
			attempt.LastError = "transaction reverted"
		}
		settledAt := o.now()
		attempt.SettledAt = &settledAt
		if attempt.SubmittedAt != nil {
			metrics.MintConfirmationDuration.Observe(settledAt.Sub(*attempt.SubmittedAt).Seconds())
		}
		o.report(attempt)
		o.logger(attempt).WithField("outcome", attempt.Outcome).Info("mint receipt received")
	}()
}

// fail settles attempt with the outcome matching err and returns err
func (o *MintOrchestrator) fail(attempt *models.MintAttempt, err error) error {
	switch {
	case errors.Is(err, ErrSignatureTimeout):
		attempt.Outcome = models.MintOutcomeTimedOut
	case errors.Is(err, context.Canceled):
		attempt.Outcome = models.MintOutcomeCancelled
	default:
		attempt.Outcome = models.MintOutcomeFailed
	}
	attempt.LastError = err.Error()
	settledAt := o.now()
	attempt.SettledAt = &settledAt
	attempt.Transition(models.MintStateSettled)
	o.report(attempt)
	o.logger(attempt).WithError(err).Error("mint attempt failed")
	return err
}

// save persists intermediate progress
func (o *MintOrchestrator) save(attempt *models.MintAttempt) {
	attempt.UpdatedAt = o.now()
	if err := o.repo.Update(context.Background(), attempt); err != nil {
		o.logger(attempt).WithError(err).Warn("failed to persist mint attempt")
	}
}

// report persists attempt, publishes its event and notifies its account
func (o *MintOrchestrator) report(attempt *models.MintAttempt) {
	o.save(attempt)
	metrics.MintAttemptsTotal.WithLabelValues(string(attempt.Path), string(attempt.Outcome)).Inc()
	o.publish(context.Background(), events.EventTypeForOutcome(attempt.Outcome), attempt)
	if o.notifier != nil {
		o.notifier.NotifyMintAttempt(attempt.Clone())
	}
}

func (o *MintOrchestrator) publish(ctx context.Context, eventType events.MintEventType, attempt *models.MintAttempt) {
	if err := o.publisher.PublishMintEvent(ctx, events.NewMintEvent(eventType, attempt)); err != nil {
		o.logger(attempt).WithError(err).Warn("failed to publish mint event")
	}
}

func (o *MintOrchestrator) sbtAddress() (common.Address, error) {
	if !utils.IsEvmAddress(o.contracts.SBT) {
		return common.Address{}, fmt.Errorf("pass SBT contract address not configured")
	}
	return common.HexToAddress(o.contracts.SBT), nil
}

func (o *MintOrchestrator) launchPadAddress(chainID int64) (common.Address, error) {
	addr := o.contracts.LaunchPadFor(chainID)
	if !utils.IsEvmAddress(addr) {
		return common.Address{}, fmt.Errorf("launch pad address not configured for chain %d", chainID)
	}
	return common.HexToAddress(addr), nil
}

func (o *MintOrchestrator) logger(attempt *models.MintAttempt) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"attemptId": attempt.ID,
		"account":   attempt.Account,
		"chain":     attempt.ChainName,
		"path":      attempt.Path,
		"state":     attempt.State,
	})
}

// inviterAddress inviter of the attempt, zero when not invited
func inviterAddress(preMint *models.PreMintInfo) common.Address {
	if !utils.IsEvmAddress(preMint.InvitedAccount) {
		return common.Address{}
	}
	return common.HexToAddress(preMint.InvitedAccount)
}
