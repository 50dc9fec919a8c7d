// Package classify derives the reference baseline, per-operator price gap,
// and qualitative status for a group of same-bucket quotes. The algorithm
// is pure so it runs identically over a live collection batch and over
// stored history read back later.
package classify

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"remitwatch/internal/scraper"
	"remitwatch/internal/storage"
)

// Status values for a classified record.
const (
	StatusReference = "Reference"
	StatusCheaper   = "Cheaper"
	StatusExpensive = "Expensive"
)

// Classified is one quote with its derived comparison fields. Baseline,
// PriceGap, and Status are nil when the group has no reference quote;
// nulls propagate rather than guessed values.
type Classified struct {
	Quote    scraper.Quote
	Baseline *decimal.Decimal
	PriceGap *decimal.Decimal
	Status   *string
}

// Result carries the classified batch plus any integrity warnings found
// while deriving it. Warnings never abort a run.
type Result struct {
	Records  []Classified
	Warnings []string
}

// Classify derives baseline/gap/status for one (runHour, country) group of
// quotes. Input order is preserved and meaningful: when the reference
// operator appears more than once (a data-integrity defect), the first
// occurrence wins deterministically.
//
// Policy: a price gap of exactly zero classifies as Expensive. Matching the
// reference price is "not strictly cheaper", and the comparison exists to
// find operators that beat the reference.
func Classify(referenceOperator string, quotes []scraper.Quote) Result {
	var result Result

	var baseline *decimal.Decimal
	seen := 0
	for _, q := range quotes {
		if q.Operator != referenceOperator {
			continue
		}
		seen++
		if baseline == nil {
			total := q.TotalSendingAmount
			baseline = &total
		}
	}
	switch {
	case seen == 0 && len(quotes) > 0:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no %s quote in group; price gaps undetermined", referenceOperator))
	case seen > 1:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d %s quotes in group; using the first", seen, referenceOperator))
	}

	usedReference := false
	result.Records = make([]Classified, 0, len(quotes))
	for _, q := range quotes {
		c := Classified{Quote: q, Baseline: copyDecimal(baseline)}

		if q.Operator == referenceOperator && !usedReference {
			usedReference = true
			c.Status = strPtr(StatusReference)
			result.Records = append(result.Records, c)
			continue
		}

		if baseline != nil {
			gap := q.TotalSendingAmount.Sub(*baseline)
			c.PriceGap = &gap
			if gap.IsNegative() {
				c.Status = strPtr(StatusCheaper)
			} else {
				c.Status = strPtr(StatusExpensive)
			}
		}
		result.Records = append(result.Records, c)
	}

	return result
}

// Rebaseline recomputes baseline/gap/status across stored records, grouped
// by (run_hour, receiving_country), ignoring whatever classification was
// persisted. The reference row for a bucket may have arrived after the
// competitors were written, or the grouping scope may have changed since;
// stored fields are treated as stale hints, never as truth.
//
// The output is sorted by run hour descending, operators in their original
// relative order within a group. Stored data is not mutated.
func Rebaseline(referenceOperator string, records []storage.RateRecord) []storage.RateRecord {
	type groupKey struct {
		runHour string
		country string
	}

	groups := make(map[groupKey][]storage.RateRecord)
	order := make([]groupKey, 0)
	for _, r := range records {
		key := groupKey{r.RunHour, r.Country}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].runHour != order[j].runHour {
			// Canonical run hours sort lexicographically in time order.
			return order[i].runHour > order[j].runHour
		}
		return order[i].country < order[j].country
	})

	out := make([]storage.RateRecord, 0, len(records))
	for _, key := range order {
		group := groups[key]

		quotes := make([]scraper.Quote, len(group))
		for i, r := range group {
			quotes[i] = scraper.Quote{
				Operator:           r.Operator,
				Country:            r.Country,
				ReceiveAmount:      r.ReceiveAmount,
				SendAmountKRW:      r.SendAmountKRW,
				ServiceFee:         r.ServiceFee,
				TotalSendingAmount: r.TotalSendingAmount,
			}
		}

		derived := Classify(referenceOperator, quotes)
		for i, c := range derived.Records {
			rec := group[i]
			rec.Baseline = c.Baseline
			rec.PriceGap = c.PriceGap
			rec.Status = c.Status
			out = append(out, rec)
		}
	}
	return out
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func strPtr(s string) *string {
	return &s
}
