package scraper

import (
	"context"

	"github.com/shopspring/decimal"

	"remitwatch/internal/browser"
)

// Corridor identifies what is being priced: a destination country and a
// fixed receive amount in the destination currency.
type Corridor struct {
	Country       string
	Currency      string
	ReceiveAmount decimal.Decimal
}

// Quote is one operator's normalized answer for one corridor: how many KRW
// must be sent, all-in, to deliver the corridor's receive amount.
//
// TotalSendingAmount = SendAmountKRW + ServiceFee always holds. Operators
// that bundle the fee into their headline figure back-derive SendAmountKRW
// instead; each adapter picks one derivation direction and sticks to it.
type Quote struct {
	Operator           string
	Country            string
	ReceiveAmount      decimal.Decimal
	SendAmountKRW      decimal.Decimal
	ServiceFee         decimal.Decimal
	TotalSendingAmount decimal.Decimal
}

// Scraper is the contract every pricing source satisfies. Implementations
// must not retry internally; retrying belongs to WithRetry so the contract
// stays stateless and swappable. A failed extraction (missing value, site
// default instead of a computed one) is an error, never a zero Quote.
type Scraper interface {
	Name() string

	// NeedsBrowser reports whether Scrape requires a page on the shared
	// automation resource. The collector passes page == nil otherwise.
	NeedsBrowser() bool

	Scrape(ctx context.Context, page browser.Page, corridor Corridor) (Quote, error)
}
