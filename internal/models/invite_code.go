package models

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// InviteCodeLength invite codes are bytes6 on chain
const InviteCodeLength = 6

// InviteCode referral code in its on-chain bytes6 form
type InviteCode [InviteCodeLength]byte

// EmptyInviteCode the single "no referrer" sentinel, shared by default state and on-chain encoding
var EmptyInviteCode = InviteCode{}

// legacy textual spellings of the empty code that the backend may return
var emptyInviteCodeAliases = map[string]bool{
	"":               true,
	"0x":             true,
	"000000":         true,
	"0x000000000000": true,
}

// ParseInviteCode accepts a 0x-prefixed 12 hex digit code or a 6 character plain code
func ParseInviteCode(raw string) (InviteCode, error) {
	raw = strings.TrimSpace(raw)
	if emptyInviteCodeAliases[strings.ToLower(raw)] {
		return EmptyInviteCode, nil
	}

	var code InviteCode
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		b, err := hex.DecodeString(raw[2:])
		if err != nil {
			return EmptyInviteCode, fmt.Errorf("invalid invite code %q: %w", raw, err)
		}
		if len(b) != InviteCodeLength {
			return EmptyInviteCode, fmt.Errorf("invalid invite code %q: want %d bytes, got %d", raw, InviteCodeLength, len(b))
		}
		copy(code[:], b)
		return code, nil
	}

	if len(raw) != InviteCodeLength {
		return EmptyInviteCode, fmt.Errorf("invalid invite code %q: want %d characters", raw, InviteCodeLength)
	}
	copy(code[:], raw)
	return code, nil
}

// IsEmpty reports whether c is the empty sentinel
func (c InviteCode) IsEmpty() bool {
	return c == EmptyInviteCode
}

// Hex on-chain representation, 0x + 12 hex digits
func (c InviteCode) Hex() string {
	return "0x" + hex.EncodeToString(c[:])
}

// String human readable form: plain text for printable codes, hex otherwise
func (c InviteCode) String() string {
	if c.IsEmpty() {
		return ""
	}
	if bytes.IndexFunc(c[:], func(r rune) bool { return r < 0x21 || r > 0x7e }) >= 0 {
		return c.Hex()
	}
	return string(c[:])
}

// MarshalText encodes as hex so that the value survives a round trip unchanged
func (c InviteCode) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts any form ParseInviteCode does
func (c *InviteCode) UnmarshalText(text []byte) error {
	code, err := ParseInviteCode(string(text))
	if err != nil {
		return err
	}
	*c = code
	return nil
}
