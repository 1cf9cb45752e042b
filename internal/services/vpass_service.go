package services

import (
	"context"
	"fmt"
	"net/url"

	"boundless-travel/internal/config"
	"boundless-travel/internal/contracts"
	"boundless-travel/internal/models"
	"boundless-travel/internal/state"
	"boundless-travel/internal/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ReferralView referral counters with display values
type ReferralView struct {
	TotalClaim      string `json:"totalClaim"`      // wei
	TotalClaimEther string `json:"totalClaimEther"` // ETH
	TotalReferral   string `json:"totalReferral"`
}

// VPassView VPass page model
type VPassView struct {
	Account             string                 `json:"account"`
	AccountShortcut     string                 `json:"accountShortcut"`
	Minted              bool                   `json:"minted"`
	Invited             bool                   `json:"invited"`
	Price               string                 `json:"price"` // ETH
	PriceWei            string                 `json:"priceWei"`
	HomePrice           string                 `json:"homePrice"`
	Discount            string                 `json:"discount,omitempty"`
	InviteCode          string                 `json:"inviteCode"`
	InviteLink          string                 `json:"inviteLink"`
	ShareToEarnRebate   string                 `json:"shareToEarnRebate"`
	Referral            *ReferralView          `json:"referral,omitempty"`
	Tickets             int                    `json:"tickets"`
	SBTContract         string                 `json:"sbtContract"`
	SBTContractShortcut string                 `json:"sbtContractShortcut"`
	SBTExplorerURL      string                 `json:"sbtExplorerUrl"`
	Settings            *models.TravelSettings `json:"settings,omitempty"`
}

// ChainBalanceView one row of the chain picker
type ChainBalanceView struct {
	Name       string `json:"name"`
	ID         int64  `json:"id"`
	Symbol     string `json:"symbol"`
	Balance    string `json:"balance,omitempty"` // empty when the lookup failed
	BalanceWei string `json:"balanceWei,omitempty"`
	Funded     bool   `json:"funded"`
	IsHome     bool   `json:"isHome"`
}

// VPassService builds the VPass page
type VPassService struct {
	chains    *utils.ChainRegistry
	balances  *BalanceService
	dial      ChainDialer
	contracts config.ContractSet
	urls      config.ExternalURLs
}

// NewVPassService creates the page service
func NewVPassService(chains *utils.ChainRegistry, balances *BalanceService, dial ChainDialer, contracts config.ContractSet, urls config.ExternalURLs) *VPassService {
	if dial == nil {
		dial = DialChainClient
	}
	return &VPassService{chains: chains, balances: balances, dial: dial, contracts: contracts, urls: urls}
}

// InviteLink shareable campaign link carrying code
func InviteLink(homepage string, code models.InviteCode) string {
	return fmt.Sprintf("%s/boundless-travel?inviteCode=%s", homepage, url.QueryEscape(code.String()))
}

// Page assembles the VPass view of a session. On-chain reads that fail leave their fields empty.
func (s *VPassService) Page(ctx context.Context, st state.AppState) (*VPassView, error) {
	if st.Account == "" {
		return nil, ErrWalletNotConnected
	}

	view := &VPassView{
		Account:           st.Account,
		AccountShortcut:   utils.AddressShortcut(st.Account),
		HomePrice:         utils.FormatEther(HomeMintPrice()),
		ShareToEarnRebate: utils.FormatEther(ShareToEarnRebate()),
		Settings:          st.Settings,
	}

	code := models.EmptyInviteCode
	if st.TravelInfo != nil {
		code = st.TravelInfo.InvitedCode
		view.Tickets = st.TravelInfo.Tickets
		view.InviteCode = st.TravelInfo.Code.String()
		if !st.TravelInfo.Code.IsEmpty() {
			view.InviteLink = InviteLink(s.urls.Homepage, st.TravelInfo.Code)
		}
	}
	price := MintPrice(code)
	view.Invited = !code.IsEmpty()
	view.Price = utils.FormatEther(price)
	view.PriceWei = price.String()
	if view.Invited {
		view.Discount = fmt.Sprintf("%d%% OFF", InvitedDiscountPercent)
	}

	if !utils.IsEvmAddress(s.contracts.SBT) {
		return view, nil
	}
	home := s.chains.Home()
	view.SBTContract = s.contracts.SBT
	view.SBTContractShortcut = utils.ContractAddressShortcut(s.contracts.SBT)
	view.SBTExplorerURL = home.ExplorerAddressURL(s.contracts.SBT)

	logger := logrus.WithField("account", st.Account)
	client, err := s.dial(ctx, home.RPCURL)
	if err != nil {
		logger.WithError(err).Warn("home chain unavailable, VPass status unknown")
		return view, nil
	}
	defer client.Close()

	sbt := contracts.NewPassSBT(common.HexToAddress(s.contracts.SBT), client)
	account := common.HexToAddress(st.Account)
	if minted, err := sbt.IsAlreadyMinted(ctx, account); err == nil {
		view.Minted = minted
	} else {
		logger.WithError(err).Warn("getIfAlreadyMint failed")
	}
	if info, err := sbt.GetUserInfo(ctx, account); err == nil {
		view.Referral = &ReferralView{
			TotalClaim:      info.TotalClaim.String(),
			TotalClaimEther: utils.FormatEther(info.TotalClaim),
			TotalReferral:   info.TotalReferral.String(),
		}
	} else {
		logger.WithError(err).Warn("getUserInfo failed")
	}
	return view, nil
}

// Balances native balance of account on every chain of the environment
func (s *VPassService) Balances(ctx context.Context, account string) ([]ChainBalanceView, error) {
	addr, err := utils.NormalizeAddress(account)
	if err != nil {
		return nil, err
	}
	results := s.balances.FetchBalances(ctx, s.chains.Chains(), addr)
	out := make([]ChainBalanceView, len(results))
	for i, c := range results {
		out[i] = ChainBalanceView{
			Name:   c.Name,
			ID:     c.ID,
			Symbol: c.NativeCurrency.Symbol,
			IsHome: s.chains.IsHome(c.ID),
		}
		if c.Balance != nil {
			out[i].Balance = utils.FormatUnits(c.Balance, c.NativeCurrency.Decimals)
			out[i].BalanceWei = c.Balance.String()
			out[i].Funded = c.Balance.Sign() > 0
		}
	}
	return out, nil
}
