package services

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"

	"boundless-travel/internal/events"
	"boundless-travel/internal/models"
	"boundless-travel/internal/utils"
	"boundless-travel/internal/wallet"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

func selector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

var (
	selAlreadyMint = selector("getIfAlreadyMint(address)")
	selUserInfo    = selector("getUserInfo(address)")
	selEncodeData  = selector("getEncodeData((address,address,bytes6,bytes6,bytes32,bytes,uint256,string),address,uint24,uint64)")
	selEstimateGas = selector("estimateGas(uint256,uint64,bytes,bytes)")
	selPublicMint  = selector("publicMint(bytes6,bytes6,address,string)")
	selLaunch      = selector("Launch(uint64,uint64,address,address,uint256,uint64,bytes,bytes)")
)

// call layouts as the contracts declare them, for decoding what the orchestrator sent
const callLayoutsABI = `[
	{"type": "function", "name": "getEncodeData", "stateMutability": "view",
	 "inputs": [
		{"name": "message", "type": "tuple", "components": [
			{"name": "receiver", "type": "address"},
			{"name": "inviter", "type": "address"},
			{"name": "inviteCode", "type": "bytes6"},
			{"name": "personlInviteCode", "type": "bytes6"},
			{"name": "encodeSignMessage", "type": "bytes32"},
			{"name": "signature", "type": "bytes"},
			{"name": "mintPrice", "type": "uint256"},
			{"name": "tokenMetadataUri", "type": "string"}
		]},
		{"name": "targetContract", "type": "address"},
		{"name": "gasLimit", "type": "uint24"},
		{"name": "gasPrice", "type": "uint64"}
	 ], "outputs": [{"name": "", "type": "bytes"}]},
	{"type": "function", "name": "Launch", "stateMutability": "payable",
	 "inputs": [
		{"name": "earliestArrivalTimestamp", "type": "uint64"},
		{"name": "latestArrivalTimestamp", "type": "uint64"},
		{"name": "relayer", "type": "address"},
		{"name": "sender", "type": "address"},
		{"name": "value", "type": "uint256"},
		{"name": "destChainid", "type": "uint64"},
		{"name": "additionParams", "type": "bytes"},
		{"name": "message", "type": "bytes"}
	 ], "outputs": []}
]`

var callLayouts = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(callLayoutsABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// unpackCall decodes the arguments of calldata sent to method
func unpackCall(method string, calldata []byte) ([]interface{}, error) {
	m, ok := callLayouts.Methods[method]
	if !ok {
		return nil, errors.New("unknown method " + method)
	}
	if len(calldata) < 4 || !bytes.Equal(calldata[:4], m.ID) {
		return nil, errors.New("calldata is not a " + method + " call")
	}
	return m.Inputs.UnpackValues(calldata[4:])
}

func packOutputs(kinds []string, values ...interface{}) []byte {
	args := make(abi.Arguments, len(kinds))
	for i, t := range kinds {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			panic(err)
		}
		args[i] = abi.Argument{Type: typ}
	}
	out, err := args.Pack(values...)
	if err != nil {
		panic(err)
	}
	return out
}

// fakeChain answers the contract reads of the mint flow
type fakeChain struct {
	mu         sync.Mutex
	minted     bool
	encodeData []byte
	fee        *big.Int
	balance    *big.Int
	balanceErr error
	receipt    *types.Receipt
	calls      []string
	encodeCall []byte // calldata of the last getEncodeData
	closed     int
}

func (c *fakeChain) record(name string) {
	c.mu.Lock()
	c.calls = append(c.calls, name)
	c.mu.Unlock()
}

func (c *fakeChain) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeChain) EncodeCall() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encodeCall
}

func (c *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	sel := msg.Data[:4]
	switch {
	case bytes.Equal(sel, selAlreadyMint):
		c.record("getIfAlreadyMint")
		return packOutputs([]string{"bool"}, c.minted), nil
	case bytes.Equal(sel, selUserInfo):
		c.record("getUserInfo")
		return packOutputs([]string{"uint256", "uint256"}, big.NewInt(5e14), big.NewInt(1)), nil
	case bytes.Equal(sel, selEncodeData):
		c.record("getEncodeData")
		c.mu.Lock()
		c.encodeCall = append([]byte(nil), msg.Data...)
		c.mu.Unlock()
		return packOutputs([]string{"bytes"}, c.encodeData), nil
	case bytes.Equal(sel, selEstimateGas):
		c.record("estimateGas")
		return packOutputs([]string{"uint256"}, c.fee), nil
	}
	return nil, errors.New("unexpected call")
}

func (c *fakeChain) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	c.record("balance")
	if c.balanceErr != nil {
		return nil, c.balanceErr
	}
	return c.balance, nil
}

func (c *fakeChain) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	c.record("receipt")
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.receipt == nil {
		return nil, ethereum.NotFound
	}
	return c.receipt, nil
}

func (c *fakeChain) Close() {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}

// fakeDialer routes RPC URLs to fake chains; unknown URLs get def
type fakeDialer struct {
	byURL map[string]*fakeChain
	fail  map[string]error
	def   *fakeChain
}

func (d *fakeDialer) Dial(_ context.Context, rawurl string) (ChainClient, error) {
	if err, ok := d.fail[rawurl]; ok {
		return nil, err
	}
	if c, ok := d.byURL[rawurl]; ok {
		return c, nil
	}
	return d.def, nil
}

// fakeWallet records chain switches and sent transactions
type fakeWallet struct {
	mu        sync.Mutex
	addr      common.Address
	chainID   int64
	switchErr error
	sendErr   error
	switches  []int64
	sent      []wallet.TxRequest
	onSend    func()
}

func (w *fakeWallet) Kind() wallet.ConnectorKind { return wallet.ConnectorLocalKey }

func (w *fakeWallet) Address() common.Address { return w.addr }

func (w *fakeWallet) ChainID(context.Context) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID, nil
}

func (w *fakeWallet) SwitchChain(_ context.Context, chain utils.ChainConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.switches = append(w.switches, chain.ID)
	if w.switchErr != nil {
		return w.switchErr
	}
	w.chainID = chain.ID
	return nil
}

func (w *fakeWallet) SendTransaction(_ context.Context, req wallet.TxRequest) (common.Hash, error) {
	if w.onSend != nil {
		w.onSend()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sendErr != nil {
		return common.Hash{}, w.sendErr
	}
	w.sent = append(w.sent, req)
	return common.BytesToHash([]byte{0xde, 0xad, byte(len(w.sent))}), nil
}

func (w *fakeWallet) Sent() []wallet.TxRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]wallet.TxRequest(nil), w.sent...)
}

// fakeBackend in-memory bookkeeping backend
type fakeBackend struct {
	mu sync.Mutex

	info        *models.AccountTravelInfo
	loginErr    error
	loginCalls  int
	preMint     *models.PreMintInfo
	preMintErr  error
	settings    *models.TravelSettings
	settingsErr error
	checkErr    error
	checked     []string

	signature      string
	signatureAfter int // lookups returning not-ready before the signature appears; <0 never
	signatureErrs  int // leading lookups that fail
	sigCalls       int
}

func (b *fakeBackend) LoginOrCreate(_ context.Context, account string) (*models.AccountTravelInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginCalls++
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	if b.info == nil {
		return &models.AccountTravelInfo{Account: account}, nil
	}
	info := *b.info
	return &info, nil
}

func (b *fakeBackend) GetPreMintInfo(context.Context, string) (*models.PreMintInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.preMintErr != nil {
		return nil, b.preMintErr
	}
	p := *b.preMint
	return &p, nil
}

func (b *fakeBackend) GetMintSignature(context.Context, string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sigCalls++
	if b.sigCalls <= b.signatureErrs {
		return "", false, errors.New("backend unavailable")
	}
	if b.signatureAfter < 0 || b.sigCalls <= b.signatureAfter {
		return "", false, nil
	}
	return b.signature, true, nil
}

func (b *fakeBackend) SignatureCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sigCalls
}

func (b *fakeBackend) CheckInviteCode(_ context.Context, _ string, code string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checked = append(b.checked, code)
	return b.checkErr
}

func (b *fakeBackend) GetTravelSettings(context.Context) (*models.TravelSettings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settingsErr != nil {
		return nil, b.settingsErr
	}
	return b.settings, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.MintEvent
}

func (p *recordingPublisher) PublishMintEvent(_ context.Context, e events.MintEvent) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) Types() []events.MintEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.MintEventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingNotifier struct {
	mu       sync.Mutex
	outcomes []models.MintOutcome
}

func (n *recordingNotifier) NotifyMintAttempt(a *models.MintAttempt) {
	n.mu.Lock()
	n.outcomes = append(n.outcomes, a.Outcome)
	n.mu.Unlock()
}

func (n *recordingNotifier) Outcomes() []models.MintOutcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.MintOutcome(nil), n.outcomes...)
}
