// Package ratesfile reads the historical flat-file export format: one row
// per (run_hour, operator, country) observation, comma-delimited, with
// quoted fields and locale-formatted numbers.
package ratesfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"remitwatch/internal/storage"
)

// Column layout of one row.
const (
	colTimestamp = iota
	colRunHour
	colOperator
	colCountry
	colReceiveAmount
	colSendAmountKRW
	colReceiveMultiplier
	colAdjustedSendingAmount
	colServiceFee
	colTotalSendingAmount
	colBaseline
	colPriceGap
	colStatus
	columnCount
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Parse reads all records from r. A header row is detected and skipped.
// Rows with too few columns are skipped; a malformed numeric field in a
// data row is an error, not a silent zero.
func Parse(r io.Reader) ([]storage.RateRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records := make([]storage.RateRecord, 0)
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		if len(row) < columnCount {
			continue
		}
		if line == 1 && looksLikeHeader(row) {
			continue
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func looksLikeHeader(row []string) bool {
	_, err := cleanDecimal(row[colReceiveAmount])
	return err != nil
}

func parseRow(row []string) (storage.RateRecord, error) {
	record := storage.RateRecord{
		RunHour:  strings.TrimSpace(row[colRunHour]),
		Operator: strings.TrimSpace(row[colOperator]),
		Country:  strings.TrimSpace(row[colCountry]),
	}
	if record.RunHour == "" || record.Operator == "" || record.Country == "" {
		return storage.RateRecord{}, fmt.Errorf("run hour, operator, and country are required")
	}

	record.ScrapedAt = parseTimestamp(row[colTimestamp], record.RunHour)

	var err error
	required := []struct {
		name string
		dst  *decimal.Decimal
		col  int
	}{
		{"receive amount", &record.ReceiveAmount, colReceiveAmount},
		{"send amount", &record.SendAmountKRW, colSendAmountKRW},
		{"receive multiplier", &record.ReceiveMultiplier, colReceiveMultiplier},
		{"adjusted sending amount", &record.AdjustedSendingAmount, colAdjustedSendingAmount},
		{"service fee", &record.ServiceFee, colServiceFee},
		{"total sending amount", &record.TotalSendingAmount, colTotalSendingAmount},
	}
	for _, field := range required {
		if *field.dst, err = cleanDecimal(row[field.col]); err != nil {
			return storage.RateRecord{}, fmt.Errorf("parse %s %q: %w", field.name, row[field.col], err)
		}
	}

	if record.Baseline, err = cleanNullableDecimal(row[colBaseline]); err != nil {
		return storage.RateRecord{}, fmt.Errorf("parse baseline %q: %w", row[colBaseline], err)
	}
	if record.PriceGap, err = cleanNullableDecimal(row[colPriceGap]); err != nil {
		return storage.RateRecord{}, fmt.Errorf("parse price gap %q: %w", row[colPriceGap], err)
	}

	if status := strings.TrimSpace(row[colStatus]); status != "" {
		record.Status = &status
	}

	return record, nil
}

func parseTimestamp(raw, runHour string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	// Fall back to the run hour itself; better than a zero timestamp.
	if t, err := time.Parse("2006-01-02 15:04", runHour); err == nil {
		return t
	}
	return time.Time{}
}

// cleanDecimal strips thousands separators, currency symbols, and
// surrounding quotes before parsing: `"1,134,453원"` -> 1134453.
func cleanDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	for _, junk := range []string{",", "\"", "₩", "원", "KRW", " "} {
		cleaned = strings.ReplaceAll(cleaned, junk, "")
	}
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty numeric field")
	}
	return decimal.NewFromString(cleaned)
}

func cleanNullableDecimal(raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := cleanDecimal(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Header is the column order produced by Write and accepted by Parse.
var Header = []string{
	"scraped_at", "run_hour", "operator", "receiving_country",
	"receive_amount", "send_amount_krw", "receive_multiplier",
	"adjusted_sending_amount", "service_fee", "total_sending_amount",
	"gme_baseline", "price_gap", "status",
}

// Write emits records in the same 13-column layout Parse reads, header
// included. Nullable fields are written as empty strings.
func Write(w io.Writer, records []storage.RateRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, record := range records {
		row := make([]string, columnCount)
		if !record.ScrapedAt.IsZero() {
			row[colTimestamp] = record.ScrapedAt.UTC().Format(time.RFC3339)
		}
		row[colRunHour] = record.RunHour
		row[colOperator] = record.Operator
		row[colCountry] = record.Country
		row[colReceiveAmount] = record.ReceiveAmount.String()
		row[colSendAmountKRW] = record.SendAmountKRW.String()
		row[colReceiveMultiplier] = record.ReceiveMultiplier.String()
		row[colAdjustedSendingAmount] = record.AdjustedSendingAmount.String()
		row[colServiceFee] = record.ServiceFee.String()
		row[colTotalSendingAmount] = record.TotalSendingAmount.String()
		if record.Baseline != nil {
			row[colBaseline] = record.Baseline.String()
		}
		if record.PriceGap != nil {
			row[colPriceGap] = record.PriceGap.String()
		}
		if record.Status != nil {
			row[colStatus] = *record.Status
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}
