package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"remitwatch/internal/classify"
)

// Show prints recent rate records for one receiving country, newest first.
// Derived columns are recomputed against the currently configured reference
// operator so old rows reflect today's baseline rules.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.Country == "" {
		return fmt.Errorf("country is required")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	from := windowStartDate(time.Now(), a.Config.Server.WindowDays)
	records, err := store.ListByCountrySince(ctx, opts.Country, from)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no records found")
		return nil
	}

	records = classify.Rebaseline(a.Config.Reference.Operator, records)
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Run Hour\tOperator\tSend (KRW)\tFee\tTotal\tBaseline\tGap\tStatus")

	for _, record := range records {
		baseline := ""
		if record.Baseline != nil {
			baseline = record.Baseline.StringFixed(0)
		}
		gap := ""
		if record.PriceGap != nil {
			gap = record.PriceGap.StringFixed(0)
			if record.PriceGap.IsPositive() {
				gap = "+" + gap
			}
		}
		status := ""
		if record.Status != nil {
			status = *record.Status
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			record.RunHour,
			record.Operator,
			record.SendAmountKRW.StringFixed(0),
			record.ServiceFee.StringFixed(0),
			record.TotalSendingAmount.StringFixed(0),
			baseline,
			gap,
			status,
		)
	}

	writer.Flush()
	return nil
}
