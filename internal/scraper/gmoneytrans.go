package scraper

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"remitwatch/internal/browser"
)

const gmoneytransName = "GMoneyTrans"

// defaultGmtServiceCharge applies when the rate endpoint omits the charge
// field; the operator's flat fee has been 3,000 KRW for years.
var defaultGmtServiceCharge = decimal.NewFromInt(3000)

// GMoneyTransOptions parameterise the GMoneyTrans rate endpoint client.
type GMoneyTransOptions struct {
	BaseURL string
	Timeout time.Duration
	// FloorKRW rejects totals below this as extraction defects.
	FloorKRW decimal.Decimal
}

// GMoneyTrans prices a corridor through the operator's public rate
// calculation endpoint. The endpoint answers with positional text tokens
// (field--td_clm--value--td_end--), not JSON.
type GMoneyTrans struct {
	opts   GMoneyTransOptions
	client *resty.Client
	logger zerolog.Logger
}

// NewGMoneyTrans constructs the adapter.
func NewGMoneyTrans(opts GMoneyTransOptions, logger zerolog.Logger) *GMoneyTrans {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://mapi.gmoneytrans.net/exratenew1"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout)

	return &GMoneyTrans{
		opts:   opts,
		client: client,
		logger: logger.With().Str("component", "scraper_gmoneytrans").Logger(),
	}
}

func (g *GMoneyTrans) Name() string { return gmoneytransName }

func (g *GMoneyTrans) NeedsBrowser() bool { return false }

// Scrape asks for the send amount that delivers corridor.ReceiveAmount.
// The fee is explicit here, so the total is derived forward:
// total = sendAmount + serviceCharge.
func (g *GMoneyTrans) Scrape(ctx context.Context, _ browser.Page, corridor Corridor) (Quote, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"receive_amount":  corridor.ReceiveAmount.StringFixed(0),
			"payout_country":  corridor.Country,
			"total_collected": "0",
			"payment_type":    "Bank Account",
			"currencyType":    corridor.Currency,
		}).
		Get("/ajx_calcRate.asp")
	if err != nil {
		return Quote{}, ClassifyNetwork(gmoneytransName, err)
	}
	if resp.StatusCode() != 200 {
		return Quote{}, Transient(gmoneytransName, fmt.Errorf("HTTP %d", resp.StatusCode()))
	}

	body := resp.String()
	sendAmount, ok := gmtField(body, "sendAmount")
	if !ok {
		return Quote{}, Extractionf(gmoneytransName, "sendAmount missing in response %q", truncate(body, 200))
	}

	fee, ok := gmtField(body, "serviceCharge")
	if !ok {
		fee = defaultGmtServiceCharge
	}

	total := sendAmount.Add(fee)
	if err := CheckFloor(gmoneytransName, total, g.opts.FloorKRW); err != nil {
		return Quote{}, err
	}

	return Quote{
		Operator:           gmoneytransName,
		Country:            corridor.Country,
		ReceiveAmount:      corridor.ReceiveAmount,
		SendAmountKRW:      sendAmount,
		ServiceFee:         fee,
		TotalSendingAmount: total,
	}, nil
}

var gmtFieldRe = regexp.MustCompile(`(\w+)--td_clm--([\d.]+)--td_end--`)

func gmtField(body, field string) (decimal.Decimal, bool) {
	for _, m := range gmtFieldRe.FindAllStringSubmatch(body, -1) {
		if m[1] != field {
			continue
		}
		d, err := decimal.NewFromString(m[2])
		if err != nil || d.IsZero() {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Scraper = (*GMoneyTrans)(nil)
