package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"remitwatch/internal/classify"
	"remitwatch/internal/ratesfile"
	"remitwatch/internal/storage"
	"remitwatch/internal/timebucket"
)

// Export writes historical records for one country as CSV and/or a PNG
// chart of per-operator total sending amounts.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.Country == "" {
		return errors.New("country is required")
	}
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	days := opts.Days
	if days <= 0 {
		days = a.Config.Server.WindowDays
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.ListByCountrySince(ctx, opts.Country, windowStartDate(time.Now(), days))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Str("country", opts.Country).Msg("no records found for export window")
		return nil
	}

	records = classify.Rebaseline(a.Config.Reference.Operator, records)

	// Listing order is newest first; exports read better oldest first.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].RunHour != records[j].RunHour {
			return records[i].RunHour < records[j].RunHour
		}
		return records[i].Operator < records[j].Operator
	})

	a.Logger.Info().Int("records", len(records)).Str("country", opts.Country).Msg("exporting records")

	if opts.CSVPath != "" {
		if err := writeRecordsCSV(opts.CSVPath, records); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writeRecordsPNG(opts.PNGPath, a.newBucketer(), records); err != nil {
			return err
		}
	}
	return nil
}

func writeRecordsCSV(path string, records []storage.RateRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ratesfile.Write(file, records)
}

func writeRecordsPNG(path string, bucketer *timebucket.Bucketer, records []storage.RateRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	type point struct {
		ts    time.Time
		total float64
	}
	byOperator := make(map[string][]point)
	for _, record := range records {
		ts, err := bucketer.Parse(record.RunHour)
		if err != nil {
			continue
		}
		byOperator[record.Operator] = append(byOperator[record.Operator], point{
			ts:    ts,
			total: record.TotalSendingAmount.InexactFloat64(),
		})
	}
	if len(byOperator) == 0 {
		return errors.New("no plottable records")
	}

	operators := make([]string, 0, len(byOperator))
	for operator := range byOperator {
		operators = append(operators, operator)
	}
	sort.Strings(operators)

	krwFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Total sending amount (KRW)",
			ValueFormatter: krwFormatter,
		},
	}
	for _, operator := range operators {
		points := byOperator[operator]
		x := make([]time.Time, len(points))
		y := make([]float64, len(points))
		for i, p := range points {
			x[i] = p.ts
			y[i] = p.total
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    operator,
			XValues: x,
			YValues: y,
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
