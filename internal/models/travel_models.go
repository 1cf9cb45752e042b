package models

import (
	"math/big"
	"time"
)

// AccountTravelInfo bookkeeping record of a wallet, created by the backend on first login
type AccountTravelInfo struct {
	Account       string     `json:"account"`
	Code          InviteCode `json:"code"`        // personal invite code
	InvitedCode   InviteCode `json:"invitedCode"` // inviter's code, EmptyInviteCode when not invited
	Tickets       int        `json:"tickets"`
	MintCount     int        `json:"mintCount"`
	ReferralCount int        `json:"referralCount"`
}

// IsInvited reports whether the account has an established invite relationship
func (a *AccountTravelInfo) IsInvited() bool {
	return a != nil && !a.InvitedCode.IsEmpty()
}

// PreMintInfo server computed parameters of one mint attempt
type PreMintInfo struct {
	Account        string     `json:"account"`
	InvitedAccount string     `json:"invitedAccount"` // empty when not invited
	InvitedCode    InviteCode `json:"invitedCode"`
	Code           InviteCode `json:"code"`
	MetadataURI    string     `json:"metadataUri"`
	SignHash       string     `json:"signHash"` // relay signature lookup key
}

// TravelActivity a single protocol activity of the campaign
type TravelActivity struct {
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
	URL     string `json:"url"`
}

// ProtocolActivity activities grouped by protocol
type ProtocolActivity struct {
	ProtocolName string           `json:"protocolName"`
	Activities   []TravelActivity `json:"activityList"`
}

// TravelSettings campaign settings
type TravelSettings struct {
	StartTime    time.Time          `json:"startTime"`
	EndTime      time.Time          `json:"endTime"`
	TicketsTotal int                `json:"ticketsTotal"`
	ActivityList []ProtocolActivity `json:"activityList"`
}

// ReferralInfo referral counters read from the pass contract
type ReferralInfo struct {
	TotalClaim    *big.Int `json:"totalClaim"`
	TotalReferral *big.Int `json:"totalReferral"`
}
