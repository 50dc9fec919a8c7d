package scraper

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// errNoAmount is returned when no usable number could be pulled from raw text.
var errNoAmount = errors.New("no amount in text")

// ExtractAmount pulls a positive number out of formatted site text:
// "1,134,453원" -> 1134453. Currency marks, thousands separators, and
// whitespace are stripped. Zero is rejected: sites pre-fill calculators
// with 0 and a zero here means the computed value never arrived.
func ExtractAmount(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Decimal{}, errNoAmount
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil || d.IsZero() {
		return decimal.Decimal{}, errNoAmount
	}
	return d, nil
}

// CheckFloor rejects an implausibly low quote as an extraction defect.
// A total below floor is a mis-located field or a site default, not a real
// price, and must never reach classification as a valid cheap quote.
func CheckFloor(operator string, total, floor decimal.Decimal) error {
	if floor.IsPositive() && total.LessThan(floor) {
		return Extractionf(operator, "total %s below sanity floor %s", total, floor)
	}
	return nil
}
