package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertRateRecordSQL = `INSERT INTO rate_records (
        run_hour,
        operator,
        receiving_country,
        receive_amount,
        send_amount_krw,
        receive_multiplier,
        adjusted_sending_amount,
        service_fee,
        total_sending_amount,
        gme_baseline,
        price_gap,
        status,
        scraped_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
    )
    ON CONFLICT (run_hour, operator, receiving_country) DO UPDATE
    SET
        receive_amount          = EXCLUDED.receive_amount,
        send_amount_krw         = EXCLUDED.send_amount_krw,
        receive_multiplier      = EXCLUDED.receive_multiplier,
        adjusted_sending_amount = EXCLUDED.adjusted_sending_amount,
        service_fee             = EXCLUDED.service_fee,
        total_sending_amount    = EXCLUDED.total_sending_amount,
        gme_baseline            = EXCLUDED.gme_baseline,
        price_gap               = EXCLUDED.price_gap,
        status                  = EXCLUDED.status,
        scraped_at              = EXCLUDED.scraped_at;`

	selectRateRecordColumns = `SELECT
        run_hour,
        operator,
        receiving_country,
        receive_amount,
        send_amount_krw,
        receive_multiplier,
        adjusted_sending_amount,
        service_fee,
        total_sending_amount,
        gme_baseline,
        price_gap,
        status,
        scraped_at
    FROM rate_records`

	listByCountrySinceSQL = selectRateRecordColumns + `
    WHERE receiving_country = $1
      AND run_hour >= $2
    ORDER BY run_hour DESC, operator;`

	listKeysSinceSQL = `SELECT run_hour, operator, receiving_country
    FROM rate_records
    WHERE run_hour >= $1
    ORDER BY run_hour DESC;`

	countRecordsSQL = `SELECT COUNT(*) FROM rate_records;`
)

// RecordKey is the unique identity of one observation.
type RecordKey struct {
	RunHour  string
	Operator string
	Country  string
}

// RateRecordStore defines the persistence operations the engine needs.
type RateRecordStore interface {
	UpsertRateRecords(ctx context.Context, records []RateRecord) error
	ListByCountrySince(ctx context.Context, country, fromRunHour string) ([]RateRecord, error)
	ListKeysSince(ctx context.Context, fromRunHour string) ([]RecordKey, error)
	CountRecords(ctx context.Context) (int64, error)
}

// Store provides rate record persistence over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertRateRecords persists a batch, overwriting rows that share a
// (run_hour, operator, receiving_country) key. Re-running a bucket is safe:
// the latest values win and no duplicates accumulate. Any failure aborts
// the batch and propagates; a collected-but-unpersisted batch is data loss
// and must never be swallowed.
func (s *Store) UpsertRateRecords(ctx context.Context, records []RateRecord) error {
	if len(records) == 0 {
		return nil
	}
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		scrapedAt := r.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now().UTC()
		}
		batch.Queue(upsertRateRecordSQL,
			r.RunHour,
			r.Operator,
			r.Country,
			r.ReceiveAmount.String(),
			r.SendAmountKRW.String(),
			r.ReceiveMultiplier.String(),
			r.AdjustedSendingAmount.String(),
			r.ServiceFee.String(),
			r.TotalSendingAmount.String(),
			decimalOrNil(r.Baseline),
			decimalOrNil(r.PriceGap),
			stringOrNil(r.Status),
			scrapedAt,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range records {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert rate record %s/%s: %w", records[i].RunHour, records[i].Operator, execErr)
		}
	}
	return nil
}

// ListByCountrySince lists a country's records from fromRunHour onward,
// newest run hour first.
func (s *Store) ListByCountrySince(ctx context.Context, country, fromRunHour string) ([]RateRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listByCountrySinceSQL, country, fromRunHour)
	if queryErr != nil {
		return nil, fmt.Errorf("list records by country: %w", queryErr)
	}
	defer rows.Close()

	records := make([]RateRecord, 0)
	for rows.Next() {
		record, scanErr := scanRateRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// ListKeysSince lists observation keys from fromRunHour onward, newest
// first. Used by the schedule diagnostic to find missing buckets.
func (s *Store) ListKeysSince(ctx context.Context, fromRunHour string) ([]RecordKey, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listKeysSinceSQL, fromRunHour)
	if queryErr != nil {
		return nil, fmt.Errorf("list record keys: %w", queryErr)
	}
	defer rows.Close()

	keys := make([]RecordKey, 0)
	for rows.Next() {
		var key RecordKey
		if err := rows.Scan(&key.RunHour, &key.Operator, &key.Country); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return keys, nil
}

// CountRecords counts stored observations.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countRecordsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count records: %w", scanErr)
	}
	return count, nil
}

func scanRateRecord(rows pgx.Rows) (RateRecord, error) {
	var (
		record       RateRecord
		receiveStr   string
		sendStr      string
		multStr      string
		adjustedStr  string
		feeStr       string
		totalStr     string
		baselineStr  sql.NullString
		gapStr       sql.NullString
		statusStr    sql.NullString
	)

	if err := rows.Scan(
		&record.RunHour,
		&record.Operator,
		&record.Country,
		&receiveStr,
		&sendStr,
		&multStr,
		&adjustedStr,
		&feeStr,
		&totalStr,
		&baselineStr,
		&gapStr,
		&statusStr,
		&record.ScrapedAt,
	); err != nil {
		return RateRecord{}, err
	}

	var err error
	if record.ReceiveAmount, err = decimal.NewFromString(receiveStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse receive amount: %w", err)
	}
	if record.SendAmountKRW, err = decimal.NewFromString(sendStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse send amount: %w", err)
	}
	if record.ReceiveMultiplier, err = decimal.NewFromString(multStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse receive multiplier: %w", err)
	}
	if record.AdjustedSendingAmount, err = decimal.NewFromString(adjustedStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse adjusted sending amount: %w", err)
	}
	if record.ServiceFee, err = decimal.NewFromString(feeStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse service fee: %w", err)
	}
	if record.TotalSendingAmount, err = decimal.NewFromString(totalStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse total sending amount: %w", err)
	}

	if record.Baseline, err = nullableDecimal(baselineStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse baseline: %w", err)
	}
	if record.PriceGap, err = nullableDecimal(gapStr); err != nil {
		return RateRecord{}, fmt.Errorf("parse price gap: %w", err)
	}
	if statusStr.Valid {
		status := statusStr.String
		record.Status = &status
	}

	return record, nil
}

func nullableDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func stringOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
