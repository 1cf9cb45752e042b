package services

import (
	"math/big"

	"boundless-travel/internal/models"
	"boundless-travel/internal/utils"
)

const (
	// InvitedDiscountPercent discount shown next to the invited price
	InvitedDiscountPercent = 20
)

var (
	homeMintPrice     = utils.MustParseEther("0.001")
	invitedMintPrice  = utils.MustParseEther("0.0008")
	shareToEarnRebate = utils.MustParseEther("0.0005")
)

// HomeMintPrice price without a referrer, in wei
func HomeMintPrice() *big.Int { return new(big.Int).Set(homeMintPrice) }

// InvitedMintPrice discounted price, in wei
func InvitedMintPrice() *big.Int { return new(big.Int).Set(invitedMintPrice) }

// ShareToEarnRebate rebate paid to the inviter per referred mint, in wei
func ShareToEarnRebate() *big.Int { return new(big.Int).Set(shareToEarnRebate) }

// MintPrice price for the effective invite code of an attempt
func MintPrice(code models.InviteCode) *big.Int {
	if code == models.EmptyInviteCode {
		return HomeMintPrice()
	}
	return InvitedMintPrice()
}
