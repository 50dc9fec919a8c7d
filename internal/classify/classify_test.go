package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"remitwatch/internal/scraper"
	"remitwatch/internal/storage"
)

func quote(operator string, total int64) scraper.Quote {
	return scraper.Quote{
		Operator:           operator,
		Country:            "Philippines",
		ReceiveAmount:      decimal.NewFromInt(40_000),
		TotalSendingAmount: decimal.NewFromInt(total),
	}
}

func TestClassifyAgainstReference(t *testing.T) {
	result := Classify("GME", []scraper.Quote{
		quote("GME", 1_100_000),
		quote("Hanpass", 1_050_000),
		quote("SBI", 1_150_000),
		quote("Coinshot", 1_100_000),
	})
	require.Empty(t, result.Warnings)
	require.Len(t, result.Records, 4)

	ref := result.Records[0]
	require.Equal(t, StatusReference, *ref.Status)
	require.Nil(t, ref.PriceGap)
	require.Equal(t, "1100000", ref.Baseline.String())

	cheaper := result.Records[1]
	require.Equal(t, "-50000", cheaper.PriceGap.String())
	require.Equal(t, StatusCheaper, *cheaper.Status)

	expensive := result.Records[2]
	require.Equal(t, "50000", expensive.PriceGap.String())
	require.Equal(t, StatusExpensive, *expensive.Status)

	// Price parity is "not strictly cheaper": ties classify as Expensive.
	tied := result.Records[3]
	require.True(t, tied.PriceGap.IsZero())
	require.Equal(t, StatusExpensive, *tied.Status)
}

func TestClassifyWithoutReferencePropagatesNulls(t *testing.T) {
	result := Classify("GME", []scraper.Quote{
		quote("Hanpass", 1_050_000),
		quote("SBI", 1_150_000),
	})
	require.Len(t, result.Warnings, 1)
	for _, rec := range result.Records {
		require.Nil(t, rec.Baseline)
		require.Nil(t, rec.PriceGap)
		require.Nil(t, rec.Status)
	}
}

func TestClassifyDuplicateReferenceTakesFirst(t *testing.T) {
	result := Classify("GME", []scraper.Quote{
		quote("GME", 1_100_000),
		quote("GME", 1_200_000),
		quote("Hanpass", 1_050_000),
	})
	require.Len(t, result.Warnings, 1)

	require.Equal(t, StatusReference, *result.Records[0].Status)
	// The duplicate is measured against the first, not treated as reference.
	second := result.Records[1]
	require.Equal(t, StatusExpensive, *second.Status)
	require.Equal(t, "100000", second.PriceGap.String())

	require.Equal(t, "1100000", result.Records[2].Baseline.String())
}

func TestClassifyEmptyGroup(t *testing.T) {
	result := Classify("GME", nil)
	require.Empty(t, result.Records)
	require.Empty(t, result.Warnings)
}

func stored(runHour, operator, country string, total int64) storage.RateRecord {
	return storage.RateRecord{
		RunHour:            runHour,
		Operator:           operator,
		Country:            country,
		TotalSendingAmount: decimal.NewFromInt(total),
	}
}

func TestRebaselineRecomputesPerGroup(t *testing.T) {
	stale := decimal.NewFromInt(999)
	records := []storage.RateRecord{
		// Older bucket persisted without a reference row at write time;
		// the GME row arrived in a later partial re-run.
		stored("2026-02-18 14:00", "Hanpass", "Philippines", 1_050_000),
		stored("2026-02-18 14:00", "GME", "Philippines", 1_100_000),
		// Newer bucket, complete, but with a stale persisted gap.
		func() storage.RateRecord {
			r := stored("2026-02-18 14:30", "SBI", "Philippines", 1_150_000)
			r.PriceGap = &stale
			return r
		}(),
		stored("2026-02-18 14:30", "GME", "Philippines", 1_100_000),
		// Same run hour, different country: its own group.
		stored("2026-02-18 14:30", "Hanpass", "Indonesia", 980_000),
	}

	out := Rebaseline("GME", records)
	require.Len(t, out, 5)

	// Run hours descending.
	require.Equal(t, "2026-02-18 14:30", out[0].RunHour)
	require.Equal(t, "2026-02-18 14:00", out[3].RunHour)

	byKey := make(map[string]storage.RateRecord)
	for _, r := range out {
		byKey[r.RunHour+"/"+r.Operator+"/"+r.Country] = r
	}

	// Stale stored gap replaced with the recomputed value.
	sbi := byKey["2026-02-18 14:30/SBI/Philippines"]
	require.Equal(t, "50000", sbi.PriceGap.String())
	require.Equal(t, StatusExpensive, *sbi.Status)

	// The late-arriving reference row now yields a gap for the older bucket.
	hanpass := byKey["2026-02-18 14:00/Hanpass/Philippines"]
	require.Equal(t, "-50000", hanpass.PriceGap.String())
	require.Equal(t, StatusCheaper, *hanpass.Status)

	// No reference in the Indonesia group: nulls, not defaults.
	idr := byKey["2026-02-18 14:30/Hanpass/Indonesia"]
	require.Nil(t, idr.Baseline)
	require.Nil(t, idr.PriceGap)
	require.Nil(t, idr.Status)
}
