package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"remitwatch/internal/classify"
	"remitwatch/internal/collector"
	"remitwatch/internal/scraper"
	"remitwatch/internal/storage"
	"remitwatch/internal/timebucket"
)

type stubCollector struct {
	outcome collector.Outcome
	err     error
}

func (s *stubCollector) Collect(ctx context.Context, corridor scraper.Corridor) (collector.Outcome, error) {
	return s.outcome, s.err
}

type recordingStore struct {
	batches [][]storage.RateRecord
	err     error
}

func (r *recordingStore) UpsertRateRecords(ctx context.Context, records []storage.RateRecord) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, records)
	return nil
}

func (r *recordingStore) ListByCountrySince(ctx context.Context, country, fromRunHour string) ([]storage.RateRecord, error) {
	return nil, nil
}

func (r *recordingStore) ListKeysSince(ctx context.Context, fromRunHour string) ([]storage.RecordKey, error) {
	return nil, nil
}

func (r *recordingStore) CountRecords(ctx context.Context) (int64, error) { return 0, nil }

func quote(operator string, total int64) scraper.Quote {
	return scraper.Quote{
		Operator:           operator,
		Country:            "Philippines",
		ReceiveAmount:      decimal.NewFromInt(40_000),
		SendAmountKRW:      decimal.NewFromInt(total),
		TotalSendingAmount: decimal.NewFromInt(total),
	}
}

func newTestService(coll QuoteCollector, store storage.RateRecordStore) *Service {
	svc := New(coll, store, timebucket.New(30*time.Minute, 9), "GME", zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, 2, 18, 14, 37, 0, 0, time.FixedZone("KST", 9*3600))
	}
	return svc
}

func testCorridor() scraper.Corridor {
	return scraper.Corridor{Country: "Philippines", Currency: "PHP", ReceiveAmount: decimal.NewFromInt(40_000)}
}

func TestCollectAndStorePersistsClassifiedBatch(t *testing.T) {
	coll := &stubCollector{outcome: collector.Outcome{
		Quotes: []scraper.Quote{
			quote("GME", 1_100_000),
			quote("Hanpass", 1_050_000),
		},
		Failures: []collector.Failure{{Operator: "SBI", Message: "timeout"}},
	}}
	store := &recordingStore{}

	report, err := newTestService(coll, store).CollectAndStore(context.Background(), testCorridor())
	require.NoError(t, err)
	require.Equal(t, "2026-02-18 14:30", report.RunHour)
	require.Equal(t, 2, report.Persisted)
	require.Len(t, report.Failures, 1)
	require.Empty(t, report.Warnings)

	require.Len(t, store.batches, 1)
	batch := store.batches[0]
	require.Len(t, batch, 2)

	ref := batch[0]
	require.Equal(t, "GME", ref.Operator)
	require.Equal(t, "2026-02-18 14:30", ref.RunHour)
	require.Equal(t, classify.StatusReference, *ref.Status)
	require.Nil(t, ref.PriceGap)

	competitor := batch[1]
	require.Equal(t, "-50000", competitor.PriceGap.String())
	require.Equal(t, classify.StatusCheaper, *competitor.Status)
	require.Equal(t, "1100000", competitor.Baseline.String())
}

func TestCollectAndStoreWithoutReferenceStillPersists(t *testing.T) {
	coll := &stubCollector{outcome: collector.Outcome{
		Quotes: []scraper.Quote{quote("Hanpass", 1_050_000)},
	}}
	store := &recordingStore{}

	report, err := newTestService(coll, store).CollectAndStore(context.Background(), testCorridor())
	require.NoError(t, err)
	require.Equal(t, 1, report.Persisted)
	require.Len(t, report.Warnings, 1)

	rec := store.batches[0][0]
	require.Nil(t, rec.Baseline)
	require.Nil(t, rec.PriceGap)
	require.Nil(t, rec.Status)
}

func TestCollectAndStoreHardFailure(t *testing.T) {
	coll := &stubCollector{
		outcome: collector.Outcome{Failures: []collector.Failure{{Operator: "GME", Message: "down"}}},
		err:     collector.ErrNoQuotes,
	}
	store := &recordingStore{}

	_, err := newTestService(coll, store).CollectAndStore(context.Background(), testCorridor())
	require.ErrorIs(t, err, collector.ErrNoQuotes)
	require.Empty(t, store.batches, "nothing may be persisted on a hard failure")
}

func TestCollectAndStorePersistenceFailureIsFatal(t *testing.T) {
	coll := &stubCollector{outcome: collector.Outcome{
		Quotes: []scraper.Quote{quote("GME", 1_100_000)},
	}}
	storeErr := errors.New("connection refused")
	store := &recordingStore{err: storeErr}

	_, err := newTestService(coll, store).CollectAndStore(context.Background(), testCorridor())
	require.ErrorIs(t, err, storeErr)
}
