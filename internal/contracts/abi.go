package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// passSBTABI subset of the Vizing pass SBT contract used by the mint flow
const passSBTABI = `[
	{
		"type": "function",
		"name": "publicMint",
		"stateMutability": "payable",
		"inputs": [
			{"name": "invitedCode", "type": "bytes6"},
			{"name": "code", "type": "bytes6"},
			{"name": "inviter", "type": "address"},
			{"name": "metadataUri", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "getIfAlreadyMint",
		"stateMutability": "view",
		"inputs": [{"name": "user", "type": "address"}],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "getUserInfo",
		"stateMutability": "view",
		"inputs": [{"name": "user", "type": "address"}],
		"outputs": [
			{"name": "totalClaim", "type": "uint256"},
			{"name": "totalReferral", "type": "uint256"}
		]
	},
	{
		"type": "function",
		"name": "getEncodeData",
		"stateMutability": "view",
		"inputs": [
			{
				"name": "message",
				"type": "tuple",
				"components": [
					{"name": "receiver", "type": "address"},
					{"name": "inviter", "type": "address"},
					{"name": "inviteCode", "type": "bytes6"},
					{"name": "personlInviteCode", "type": "bytes6"},
					{"name": "encodeSignMessage", "type": "bytes32"},
					{"name": "signature", "type": "bytes"},
					{"name": "mintPrice", "type": "uint256"},
					{"name": "tokenMetadataUri", "type": "string"}
				]
			},
			{"name": "targetContract", "type": "address"},
			{"name": "gasLimit", "type": "uint24"},
			{"name": "gasPrice", "type": "uint64"}
		],
		"outputs": [{"name": "", "type": "bytes"}]
	}
]`

// launchPadABI subset of the Vizing launch pad (omni-message entry point)
const launchPadABI = `[
	{
		"type": "function",
		"name": "estimateGas",
		"stateMutability": "view",
		"inputs": [
			{"name": "amount", "type": "uint256"},
			{"name": "destChainid", "type": "uint64"},
			{"name": "additionParams", "type": "bytes"},
			{"name": "message", "type": "bytes"}
		],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "Launch",
		"stateMutability": "payable",
		"inputs": [
			{"name": "earliestArrivalTimestamp", "type": "uint64"},
			{"name": "latestArrivalTimestamp", "type": "uint64"},
			{"name": "relayer", "type": "address"},
			{"name": "sender", "type": "address"},
			{"name": "value", "type": "uint256"},
			{"name": "destChainid", "type": "uint64"},
			{"name": "additionParams", "type": "bytes"},
			{"name": "message", "type": "bytes"}
		],
		"outputs": []
	}
]`

var (
	passSBTParsed   = mustParseABI(passSBTABI)
	launchPadParsed = mustParseABI(launchPadABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("invalid contract ABI: " + err.Error())
	}
	return parsed
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic("invalid ABI type " + t + ": " + err.Error())
	}
	return typ
}

// signDataArguments layout of the relay-signed mint payload
var signDataArguments = abi.Arguments{
	{Name: "sbt", Type: mustType("address")},
	{Name: "vizingChainId", Type: mustType("uint256")},
	{Name: "account", Type: mustType("address")},
	{Name: "invitedAccount", Type: mustType("address")},
	{Name: "invitedCode", Type: mustType("bytes6")},
	{Name: "code", Type: mustType("bytes6")},
	{Name: "mintPrice", Type: mustType("uint256")},
	{Name: "metadataUri", Type: mustType("string")},
}
