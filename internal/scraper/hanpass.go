package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"remitwatch/internal/browser"
)

const hanpassName = "Hanpass"

// hanpassCountryCodes maps destination country names onto the ISO codes the
// get-cost endpoint expects.
var hanpassCountryCodes = map[string]string{
	"Philippines": "PH",
	"Indonesia":   "ID",
	"Thailand":    "TH",
	"Vietnam":     "VN",
	"Mongolia":    "MN",
	"Cambodia":    "KH",
	"Myanmar":     "MM",
	"China":       "CN",
	"Cameroon":    "CM",
}

// HanpassOptions parameterise the Hanpass cost endpoint client.
type HanpassOptions struct {
	BaseURL  string
	Timeout  time.Duration
	FloorKRW decimal.Decimal
}

// Hanpass prices a corridor through the operator's app cost endpoint.
type Hanpass struct {
	opts   HanpassOptions
	client *resty.Client
	logger zerolog.Logger
}

// NewHanpass constructs the adapter.
func NewHanpass(opts HanpassOptions, logger zerolog.Logger) *Hanpass {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://app.hanpass.com/app/v1"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Hanpass{
		opts:   opts,
		client: client,
		logger: logger.With().Str("component", "scraper_hanpass").Logger(),
	}
}

func (h *Hanpass) Name() string { return hanpassName }

func (h *Hanpass) NeedsBrowser() bool { return false }

type hanpassCostRequest struct {
	InputAmount       string `json:"inputAmount"`
	InputCurrencyCode string `json:"inputCurrencyCode"`
	FromCurrencyCode  string `json:"fromCurrencyCode"`
	ToCurrencyCode    string `json:"toCurrencyCode"`
	ToCountryCode     string `json:"toCountryCode"`
	MemberSeq         string `json:"memberSeq"`
	Lang              string `json:"lang"`
}

type hanpassCostResponse struct {
	ResultCode                 string          `json:"resultCode"`
	ResultMessage              string          `json:"resultMessage"`
	DepositAmountIncludingFee  decimal.Decimal `json:"depositAmountIncludingFee"`
	TransferFee                decimal.Decimal `json:"transferFee"`
}

// Scrape asks for the all-in deposit that delivers corridor.ReceiveAmount.
// The headline figure bundles the fee, so the principal is back-derived:
// sendAmountKRW = depositAmountIncludingFee - transferFee.
func (h *Hanpass) Scrape(ctx context.Context, _ browser.Page, corridor Corridor) (Quote, error) {
	countryCode, ok := hanpassCountryCodes[corridor.Country]
	if !ok {
		return Quote{}, Extractionf(hanpassName, "no country code mapping for %q", corridor.Country)
	}

	var result hanpassCostResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(hanpassCostRequest{
			InputAmount:       corridor.ReceiveAmount.StringFixed(0),
			InputCurrencyCode: corridor.Currency,
			FromCurrencyCode:  "KRW",
			ToCurrencyCode:    corridor.Currency,
			ToCountryCode:     countryCode,
			MemberSeq:         "1",
			Lang:              "en",
		}).
		SetResult(&result).
		Post("/remittance/get-cost")
	if err != nil {
		return Quote{}, ClassifyNetwork(hanpassName, err)
	}
	if resp.StatusCode() != 200 {
		return Quote{}, Transient(hanpassName, fmt.Errorf("HTTP %d", resp.StatusCode()))
	}

	if result.ResultCode != "0" {
		return Quote{}, Extractionf(hanpassName, "api result %s: %s", result.ResultCode, result.ResultMessage)
	}

	total := result.DepositAmountIncludingFee
	if total.IsZero() {
		return Quote{}, Extractionf(hanpassName, "deposit amount missing in response")
	}
	if err := CheckFloor(hanpassName, total, h.opts.FloorKRW); err != nil {
		return Quote{}, err
	}

	fee := result.TransferFee

	return Quote{
		Operator:           hanpassName,
		Country:            corridor.Country,
		ReceiveAmount:      corridor.ReceiveAmount,
		SendAmountKRW:      total.Sub(fee),
		ServiceFee:         fee,
		TotalSendingAmount: total,
	}, nil
}

var _ Scraper = (*Hanpass)(nil)
