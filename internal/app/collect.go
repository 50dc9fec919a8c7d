package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"remitwatch/internal/service"
)

// Collect runs one corridor's collection for the current time bucket and
// prints a per-operator summary. Partial source failures are reported but
// do not fail the run; zero quotes or a persistence failure do.
func (a *App) Collect(ctx context.Context, corridorName string) error {
	corridorCfg, err := a.Config.Corridor(corridorName)
	if err != nil {
		return err
	}

	scrapers, err := a.buildScrapers(corridorCfg.Scrapers)
	if err != nil {
		return fmt.Errorf("corridor %q: %w", corridorName, err)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.New(a.newCollector(scrapers), store, a.newBucketer(), a.Config.Reference.Operator, a.Logger)

	report, err := svc.CollectAndStore(ctx, a.corridorOf(corridorCfg))
	printRunReport(report)
	if err != nil {
		return err
	}
	return nil
}

func printRunReport(report service.RunReport) {
	fmt.Fprintf(os.Stdout, "\n%s %s: %d persisted, %d sources failed\n\n",
		report.Country, report.RunHour, report.Persisted, len(report.Failures))

	if len(report.Quotes) > 0 {
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "Operator\tSend (KRW)\tFee\tTotal\tGap\tStatus")

		sorted := report.Quotes
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Quote.TotalSendingAmount.LessThan(sorted[j].Quote.TotalSendingAmount)
		})
		for _, c := range sorted {
			gap := ""
			if c.PriceGap != nil {
				gap = c.PriceGap.StringFixed(0)
				if c.PriceGap.IsPositive() {
					gap = "+" + gap
				}
			}
			status := ""
			if c.Status != nil {
				status = *c.Status
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
				c.Quote.Operator,
				c.Quote.SendAmountKRW.StringFixed(0),
				c.Quote.ServiceFee.StringFixed(0),
				c.Quote.TotalSendingAmount.StringFixed(0),
				gap,
				status,
			)
		}
		writer.Flush()
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stdout, "  failed: %s: %s\n", f.Operator, f.Message)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stdout, "  warning: %s\n", w)
	}
}
