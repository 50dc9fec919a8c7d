package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"remitwatch/internal/classify"
	"remitwatch/internal/collector"
	"remitwatch/internal/scraper"
	"remitwatch/internal/storage"
	"remitwatch/internal/timebucket"
)

// QuoteCollector is the fan-out the service drives; satisfied by
// collector.Collector.
type QuoteCollector interface {
	Collect(ctx context.Context, corridor scraper.Corridor) (collector.Outcome, error)
}

// RunReport summarises one collection run for operator-facing output.
type RunReport struct {
	RunHour   string
	Country   string
	Persisted int
	Quotes    []classify.Classified
	Failures  []collector.Failure
	Warnings  []string
}

// Service executes a full collection run: fan out, classify against the
// reference operator, persist idempotently.
type Service struct {
	collector QuoteCollector
	store     storage.RateRecordStore
	bucketer  *timebucket.Bucketer
	reference string
	logger    zerolog.Logger

	now func() time.Time
}

// New constructs the collection service.
func New(coll QuoteCollector, store storage.RateRecordStore, bucketer *timebucket.Bucketer, referenceOperator string, logger zerolog.Logger) *Service {
	return &Service{
		collector: coll,
		store:     store,
		bucketer:  bucketer,
		reference: referenceOperator,
		logger:    logger.With().Str("component", "service").Logger(),
		now:       time.Now,
	}
}

// CollectAndStore runs one corridor's collection for the current bucket.
//
// A failing source never blocks the rest; zero successful quotes fails the
// run outright. A missing reference quote degrades to null gaps with a
// warning. Persistence failure is fatal: the batch would otherwise be lost
// silently.
func (s *Service) CollectAndStore(ctx context.Context, corridor scraper.Corridor) (RunReport, error) {
	runHour := s.bucketer.RunHour(s.now())
	report := RunReport{RunHour: runHour, Country: corridor.Country}

	s.logger.Info().
		Str("run_hour", runHour).
		Str("country", corridor.Country).
		Str("receive_amount", corridor.ReceiveAmount.String()).
		Msg("collection run starting")

	outcome, err := s.collector.Collect(ctx, corridor)
	report.Failures = outcome.Failures
	if err != nil {
		return report, fmt.Errorf("collect %s: %w", corridor.Country, err)
	}

	result := classify.Classify(s.reference, outcome.Quotes)
	report.Quotes = result.Records
	report.Warnings = result.Warnings
	for _, w := range result.Warnings {
		s.logger.Warn().Str("run_hour", runHour).Str("country", corridor.Country).Msg(w)
	}

	records := make([]storage.RateRecord, len(result.Records))
	scrapedAt := s.now().UTC()
	for i, c := range result.Records {
		records[i] = toRateRecord(runHour, scrapedAt, c)
	}

	if err := s.store.UpsertRateRecords(ctx, records); err != nil {
		return report, fmt.Errorf("persist %d records for %s %s: %w", len(records), corridor.Country, runHour, err)
	}
	report.Persisted = len(records)

	s.logger.Info().
		Str("run_hour", runHour).
		Str("country", corridor.Country).
		Int("persisted", report.Persisted).
		Int("failed_sources", len(report.Failures)).
		Msg("collection run complete")

	return report, nil
}

func toRateRecord(runHour string, scrapedAt time.Time, c classify.Classified) storage.RateRecord {
	q := c.Quote
	return storage.RateRecord{
		RunHour:               runHour,
		Operator:              q.Operator,
		Country:               q.Country,
		ReceiveAmount:         q.ReceiveAmount,
		SendAmountKRW:         q.SendAmountKRW,
		ReceiveMultiplier:     decimal.NewFromInt(1),
		AdjustedSendingAmount: q.SendAmountKRW,
		ServiceFee:            q.ServiceFee,
		TotalSendingAmount:    q.TotalSendingAmount,
		Baseline:              c.Baseline,
		PriceGap:              c.PriceGap,
		Status:                c.Status,
		ScrapedAt:             scrapedAt,
	}
}
