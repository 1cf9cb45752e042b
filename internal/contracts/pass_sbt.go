package contracts

import (
	"context"
	"fmt"
	"math/big"

	"boundless-travel/internal/models"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CrossMessage mint message relayed to the pass contract on the home chain
type CrossMessage struct {
	Receiver          common.Address `abi:"receiver"`
	Inviter           common.Address `abi:"inviter"`
	InviteCode        [6]byte        `abi:"inviteCode"`
	PersonlInviteCode [6]byte        `abi:"personlInviteCode"`
	EncodeSignMessage [32]byte       `abi:"encodeSignMessage"`
	Signature         []byte         `abi:"signature"`
	MintPrice         *big.Int       `abi:"mintPrice"`
	TokenMetadataUri  string         `abi:"tokenMetadataUri"`
}

// SignData fields covered by the relay signature
type SignData struct {
	SBT            common.Address
	HomeChainID    *big.Int
	Account        common.Address
	InvitedAccount common.Address
	InvitedCode    models.InviteCode
	Code           models.InviteCode
	MintPrice      *big.Int
	MetadataURI    string
}

// EncodeSignData canonical ABI encoding of d
func EncodeSignData(d SignData) ([]byte, error) {
	encoded, err := signDataArguments.Pack(
		d.SBT,
		d.HomeChainID,
		d.Account,
		d.InvitedAccount,
		[6]byte(d.InvitedCode),
		[6]byte(d.Code),
		d.MintPrice,
		d.MetadataURI,
	)
	if err != nil {
		return nil, fmt.Errorf("encode sign data: %w", err)
	}
	return encoded, nil
}

// SignDataHash keccak256 of the encoded sign data
func SignDataHash(d SignData) (common.Hash, error) {
	encoded, err := EncodeSignData(d)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

// PassSBT Vizing pass SBT contract
type PassSBT struct {
	address common.Address
	caller  ethereum.ContractCaller
}

// NewPassSBT binds the pass contract at address; caller may be nil when only packing calldata
func NewPassSBT(address common.Address, caller ethereum.ContractCaller) *PassSBT {
	return &PassSBT{address: address, caller: caller}
}

// Address contract address
func (s *PassSBT) Address() common.Address {
	return s.address
}

// PackPublicMint calldata of a direct mint on the home chain
func (s *PassSBT) PackPublicMint(invitedCode, code models.InviteCode, inviter common.Address, metadataURI string) ([]byte, error) {
	data, err := passSBTParsed.Pack("publicMint", [6]byte(invitedCode), [6]byte(code), inviter, metadataURI)
	if err != nil {
		return nil, fmt.Errorf("pack publicMint: %w", err)
	}
	return data, nil
}

// IsAlreadyMinted reports whether account already holds a pass
func (s *PassSBT) IsAlreadyMinted(ctx context.Context, account common.Address) (bool, error) {
	out, err := s.call(ctx, "getIfAlreadyMint", account)
	if err != nil {
		return false, err
	}
	minted, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("getIfAlreadyMint: unexpected result type %T", out[0])
	}
	return minted, nil
}

// GetUserInfo referral counters of account
func (s *PassSBT) GetUserInfo(ctx context.Context, account common.Address) (*models.ReferralInfo, error) {
	out, err := s.call(ctx, "getUserInfo", account)
	if err != nil {
		return nil, err
	}
	if len(out) != 2 {
		return nil, fmt.Errorf("getUserInfo: expected 2 results, got %d", len(out))
	}
	claim, ok1 := out[0].(*big.Int)
	referral, ok2 := out[1].(*big.Int)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("getUserInfo: unexpected result types %T, %T", out[0], out[1])
	}
	return &models.ReferralInfo{TotalClaim: claim, TotalReferral: referral}, nil
}

// GetEncodeData asks the pass contract to wrap msg into a launch pad message
func (s *PassSBT) GetEncodeData(ctx context.Context, msg CrossMessage, target common.Address, gasLimit, gasPrice uint64) ([]byte, error) {
	out, err := s.call(ctx, "getEncodeData", msg, target, new(big.Int).SetUint64(gasLimit), gasPrice)
	if err != nil {
		return nil, err
	}
	data, ok := out[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("getEncodeData: unexpected result type %T", out[0])
	}
	return data, nil
}

func (s *PassSBT) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	return callContract(ctx, s.caller, s.address, passSBTParsed, method, args...)
}
