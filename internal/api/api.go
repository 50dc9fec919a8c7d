// Package api serves the read side: classified rate history per country,
// re-derived from storage at request time.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"remitwatch/internal/classify"
	"remitwatch/internal/storage"
	"remitwatch/internal/timebucket"
)

// Options parameterise the read API.
type Options struct {
	// ReferenceOperator is the baseline operator for re-derivation.
	ReferenceOperator string
	// WindowDays bounds the trailing history window.
	WindowDays int
}

// RateRecordJSON is the wire shape of one classified observation.
type RateRecordJSON struct {
	Timestamp             time.Time        `json:"timestamp"`
	RunHour               string           `json:"runHour"`
	Operator              string           `json:"operator"`
	ReceivingCountry      string           `json:"receivingCountry"`
	ReceiveAmount         decimal.Decimal  `json:"receiveAmount"`
	SendAmountKRW         decimal.Decimal  `json:"sendAmountKRW"`
	ReceiveMultiplier     decimal.Decimal  `json:"receiveMultiplier"`
	AdjustedSendingAmount decimal.Decimal  `json:"adjustedSendingAmount"`
	ServiceFee            decimal.Decimal  `json:"serviceFee"`
	TotalSendingAmount    decimal.Decimal  `json:"totalSendingAmount"`
	GmeBaseline           *decimal.Decimal `json:"gmeBaseline"`
	PriceGap              *decimal.Decimal `json:"priceGap"`
	Status                *string          `json:"status"`
}

// Handler answers rate history queries.
type Handler struct {
	store    storage.RateRecordStore
	bucketer *timebucket.Bucketer
	opts     Options
	logger   zerolog.Logger

	now func() time.Time
}

// NewHandler constructs the read handler.
func NewHandler(store storage.RateRecordStore, bucketer *timebucket.Bucketer, opts Options, logger zerolog.Logger) *Handler {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 30
	}
	return &Handler{
		store:    store,
		bucketer: bucketer,
		opts:     opts,
		logger:   logger.With().Str("component", "api").Logger(),
		now:      time.Now,
	}
}

// NewRouter wires the handler into a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/rates", h.GetRates)
	return r
}

// GetRates returns the trailing window of classified records for one
// country, newest run hour first. Baseline, gap, and status are recomputed
// from the stored totals; the persisted classification fields may predate
// a late-arriving reference row and are not trusted.
func (h *Handler) GetRates(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country parameter required"})
		return
	}

	windowStart := h.now().AddDate(0, 0, -h.opts.WindowDays)
	// A date prefix compares correctly against full run hour strings.
	fromRunHour := h.bucketer.BucketStart(windowStart).Format("2006-01-02")

	records, err := h.store.ListByCountrySince(c.Request.Context(), country, fromRunHour)
	if err != nil {
		h.logger.Error().Err(err).Str("country", country).Msg("store query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	derived := classify.Rebaseline(h.opts.ReferenceOperator, records)

	out := make([]RateRecordJSON, len(derived))
	for i, r := range derived {
		out[i] = RateRecordJSON{
			Timestamp:             r.ScrapedAt,
			RunHour:               r.RunHour,
			Operator:              r.Operator,
			ReceivingCountry:      r.Country,
			ReceiveAmount:         r.ReceiveAmount,
			SendAmountKRW:         r.SendAmountKRW,
			ReceiveMultiplier:     r.ReceiveMultiplier,
			AdjustedSendingAmount: r.AdjustedSendingAmount,
			ServiceFee:            r.ServiceFee,
			TotalSendingAmount:    r.TotalSendingAmount,
			GmeBaseline:           r.Baseline,
			PriceGap:              r.PriceGap,
			Status:                r.Status,
		}
	}

	c.JSON(http.StatusOK, out)
}
