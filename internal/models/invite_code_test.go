package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInviteCode(t *testing.T) {
	code, err := ParseInviteCode("qwerty")
	require.NoError(t, err)
	assert.Equal(t, "0x717765727479", code.Hex())
	assert.Equal(t, "qwerty", code.String())

	fromHex, err := ParseInviteCode("0x717765727479")
	require.NoError(t, err)
	assert.Equal(t, code, fromHex)

	for _, raw := range []string{"", "0x", "000000", "0x000000000000"} {
		c, err := ParseInviteCode(raw)
		require.NoError(t, err, raw)
		assert.True(t, c.IsEmpty(), raw)
		assert.Equal(t, "", c.String())
	}

	for _, raw := range []string{"short", "toolongcode", "0x1234", "0xzzzzzzzzzzzz"} {
		_, err := ParseInviteCode(raw)
		assert.Error(t, err, raw)
	}
}

func TestInviteCodeNonPrintableRendersHex(t *testing.T) {
	code, err := ParseInviteCode("0x0102030405ff")
	require.NoError(t, err)
	assert.Equal(t, "0x0102030405ff", code.String())
}

func TestInviteCodeJSON(t *testing.T) {
	code, _ := ParseInviteCode("abcdef")
	info := AccountTravelInfo{Account: "0x01", Code: code}

	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"code":"0x616263646566"`)
	assert.Contains(t, string(data), `"invitedCode":"0x000000000000"`)

	var decoded AccountTravelInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, code, decoded.Code)
	assert.False(t, decoded.IsInvited())

	var nilInfo *AccountTravelInfo
	assert.False(t, nilInfo.IsInvited())
}

func TestMintAttemptTransitionAndClone(t *testing.T) {
	a := &MintAttempt{State: MintStateIdle, StateTrail: []string{string(MintStateIdle)}}
	a.Transition(MintStateChainSelected)
	assert.Equal(t, MintStateChainSelected, a.State)
	assert.Equal(t, []string{"idle", "chain_selected"}, []string(a.StateTrail))

	cp := a.Clone()
	cp.Transition(MintStateChainVerified)
	assert.Len(t, a.StateTrail, 2)
	assert.Len(t, cp.StateTrail, 3)

	assert.True(t, MintOutcomeCancelled.IsFinal())
	assert.False(t, MintOutcomeSubmitted.IsFinal())
}
