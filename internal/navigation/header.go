// Package navigation builds the site header: menu items, the wallet button and
// the campaign ticket progress.
package navigation

import (
	"fmt"
	"strconv"

	"boundless-travel/internal/config"
	"boundless-travel/internal/state"
	"boundless-travel/internal/utils"
)

// ItemType how a header item behaves when clicked
type ItemType string

const (
	ItemInternalLink ItemType = "internalLink"
	ItemExternalLink ItemType = "externalLink"
	ItemCategory     ItemType = "category"
)

// ItemKey identity of a top-level header item
type ItemKey string

const (
	KeyBoundlessTravel ItemKey = "boundlessTravel"
	KeyBridge          ItemKey = "bridge"
	KeyDeveloper       ItemKey = "developer"
	KeyEcosystem       ItemKey = "ecosystem"
	KeyCommunity       ItemKey = "community"
)

// Item a header entry; categories carry children instead of a link
type Item struct {
	ID            ItemKey  `json:"id,omitempty"`
	Type          ItemType `json:"type"`
	Text          string   `json:"text"`
	JumpLink      string   `json:"jumpLink"`
	IsCurrentSite bool     `json:"isCurrentSite"`
	HideOnMobile  bool     `json:"hideOnMobile,omitempty"`
	Children      []Item   `json:"children,omitempty"`
}

// WalletButton state of the connect / account button
type WalletButton struct {
	Connected bool   `json:"connected"`
	Label     string `json:"label"`
	Account   string `json:"account,omitempty"`
	ScanURL   string `json:"scanUrl,omitempty"`
}

// Header full header model
type Header struct {
	Items           []Item       `json:"items"`
	Wallet          WalletButton `json:"wallet"`
	TicketsProgress string       `json:"ticketsProgress"`
}

func external(text, link string) Item {
	return Item{Type: ItemExternalLink, Text: text, JumpLink: link}
}

// Items header menu for the given links
func Items(urls config.ExternalURLs) []Item {
	return []Item{
		{ID: KeyBoundlessTravel, Type: ItemInternalLink, Text: "Boundless Travel", JumpLink: "/boundless-travel", IsCurrentSite: true, HideOnMobile: true},
		{ID: KeyBridge, Type: ItemExternalLink, Text: "Bridge", JumpLink: urls.Bridge},
		{ID: KeyDeveloper, Type: ItemCategory, Text: "Developer", Children: []Item{
			external("Developer Docs", urls.Docs),
			external("Explorer", urls.Explorer),
			external("VizingScan", urls.VizingScan),
			external("Github", urls.Github),
		}},
		{ID: KeyEcosystem, Type: ItemInternalLink, Text: "Ecosystem", JumpLink: "/ecosystem", IsCurrentSite: true},
		{ID: KeyCommunity, Type: ItemCategory, Text: "Community", Children: []Item{
			external("Blog", urls.Blog),
			external("Brand Kit", urls.BrandKit),
			external("Twitter", urls.Twitter),
		}},
	}
}

// TicketsProgress share of campaign tickets held, as a CSS percentage; "0" when unknown
func TicketsProgress(tickets, total int) string {
	if tickets <= 0 || total <= 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(tickets)/float64(total)*100, 'f', -1, 64) + "%"
}

// Build header of a session; st may be the zero state of an anonymous visitor
func Build(urls config.ExternalURLs, st state.AppState) Header {
	h := Header{Items: Items(urls), TicketsProgress: "0"}
	if !st.Connected || st.Account == "" {
		h.Wallet = WalletButton{Label: "Connect Wallet"}
		return h
	}

	h.Wallet = WalletButton{
		Connected: true,
		Label:     utils.AddressShortcut(st.Account),
		Account:   st.Account,
		ScanURL:   fmt.Sprintf("%s/address/%s", urls.VizingScan, st.Account),
	}
	if st.TravelInfo != nil && st.Settings != nil {
		h.TicketsProgress = TicketsProgress(st.TravelInfo.Tickets, st.Settings.TicketsTotal)
	}
	return h
}
