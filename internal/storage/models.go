package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateRecord is one persisted observation: one operator's classified quote
// for one corridor in one run hour. (run_hour, operator, receiving_country)
// identifies exactly one logical row; re-collecting a bucket overwrites.
//
// Baseline, PriceGap, and Status are nil when the reference operator was
// absent from the (run_hour, country) group. Nulls are stored as-is; the
// read side re-derives them instead of trusting these fields.
type RateRecord struct {
	RunHour               string
	Operator              string
	Country               string
	ReceiveAmount         decimal.Decimal
	SendAmountKRW         decimal.Decimal
	ReceiveMultiplier     decimal.Decimal
	AdjustedSendingAmount decimal.Decimal
	ServiceFee            decimal.Decimal
	TotalSendingAmount    decimal.Decimal
	Baseline              *decimal.Decimal
	PriceGap              *decimal.Decimal
	Status                *string
	ScrapedAt             time.Time
}
