package contracts

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// LaunchParams arguments of LaunchPad.Launch
type LaunchParams struct {
	EarliestArrival uint64
	LatestArrival   uint64
	Relayer         common.Address // zero lets any relayer deliver
	Sender          common.Address
	Value           *big.Int // value forwarded to the destination
	DestChainID     uint64
	AdditionParams  []byte
	Message         []byte
}

// LaunchPad Vizing launch pad on a source chain
type LaunchPad struct {
	address common.Address
	caller  ethereum.ContractCaller
}

// NewLaunchPad binds the launch pad at address
func NewLaunchPad(address common.Address, caller ethereum.ContractCaller) *LaunchPad {
	return &LaunchPad{address: address, caller: caller}
}

// Address contract address
func (l *LaunchPad) Address() common.Address {
	return l.address
}

// EstimateGas relay fee for delivering message with amount to destChainID
func (l *LaunchPad) EstimateGas(ctx context.Context, amount *big.Int, destChainID uint64, additionParams, message []byte) (*big.Int, error) {
	if additionParams == nil {
		additionParams = []byte{}
	}
	out, err := callContract(ctx, l.caller, l.address, launchPadParsed, "estimateGas", amount, destChainID, additionParams, message)
	if err != nil {
		return nil, err
	}
	fee, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("estimateGas: unexpected result type %T", out[0])
	}
	return fee, nil
}

// PackLaunch calldata of a Launch call
func (l *LaunchPad) PackLaunch(p LaunchParams) ([]byte, error) {
	additionParams := p.AdditionParams
	if additionParams == nil {
		additionParams = []byte{}
	}
	data, err := launchPadParsed.Pack("Launch",
		p.EarliestArrival,
		p.LatestArrival,
		p.Relayer,
		p.Sender,
		p.Value,
		p.DestChainID,
		additionParams,
		p.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("pack Launch: %w", err)
	}
	return data, nil
}

func callContract(ctx context.Context, caller ethereum.ContractCaller, address common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if caller == nil {
		return nil, errors.New("contract caller not configured")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &address,
		Data: data,
	}
	result, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := parsed.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return out, nil
}
