package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"remitwatch/internal/ratesfile"
)

const defaultImportBatchSize = 500

// Import loads a historical flat-file export into the store. Rows sharing
// a (run_hour, operator, country) key with an existing record replace it,
// so re-running an import is safe.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	if opts.Path == "" {
		return errors.New("file is required")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultImportBatchSize
	}

	file, err := os.Open(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	records, err := ratesfile.Parse(file)
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.Path, err)
	}
	if len(records) == 0 {
		a.Logger.Warn().Str("file", opts.Path).Msg("no importable rows found")
		return nil
	}

	if opts.DryRun {
		fmt.Fprintf(os.Stdout, "dry run: %d rows parsed from %s, nothing written\n", len(records), opts.Path)
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	imported := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := store.UpsertRateRecords(ctx, records[start:end]); err != nil {
			return fmt.Errorf("import batch starting at row %d: %w", start+1, err)
		}
		imported = end
		a.Logger.Debug().Int("imported", imported).Int("total", len(records)).Msg("import progress")
	}

	total, err := store.CountRecords(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "imported %d rows from %s (%d records in store)\n", imported, opts.Path, total)
	return nil
}
