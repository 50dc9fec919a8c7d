package timebucket

import (
	"fmt"
	"time"
)

// Layout is the canonical textual form of a run hour. It sorts
// lexicographically in chronological order, which the storage layer
// relies on for range filters.
const Layout = "2006-01-02 15:04"

// DefaultWidth is the bucket width used when none is configured.
const DefaultWidth = 30 * time.Minute

// DefaultOffsetHours is the canonical zone offset (KST, UTC+9).
const DefaultOffsetHours = 9

// Bucketer quantizes instants into fixed-width run hours in a fixed
// offset zone, independent of the wall clock of the invoking process.
type Bucketer struct {
	width time.Duration
	loc   *time.Location
}

// New constructs a Bucketer. Non-positive width falls back to DefaultWidth.
func New(width time.Duration, offsetHours int) *Bucketer {
	if width <= 0 {
		width = DefaultWidth
	}
	name := fmt.Sprintf("UTC+%d", offsetHours)
	if offsetHours < 0 {
		name = fmt.Sprintf("UTC%d", offsetHours)
	}
	return &Bucketer{
		width: width,
		loc:   time.FixedZone(name, offsetHours*3600),
	}
}

// Width returns the configured bucket width.
func (b *Bucketer) Width() time.Duration {
	return b.width
}

// RunHour returns the canonical bucket string for t. Two instants inside
// the same window always map to the same value regardless of their zones.
func (b *Bucketer) RunHour(t time.Time) string {
	return b.BucketStart(t).Format(Layout)
}

// BucketStart returns the start instant of t's bucket in the canonical zone.
func (b *Bucketer) BucketStart(t time.Time) time.Time {
	local := t.In(b.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, b.loc)
	elapsed := local.Sub(midnight)
	return midnight.Add(elapsed.Truncate(b.width))
}

// Parse reads a canonical run hour back into its start instant.
func (b *Bucketer) Parse(runHour string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, runHour, b.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run hour %q: %w", runHour, err)
	}
	return t, nil
}

// Previous enumerates the n bucket strings strictly before t's bucket,
// most recent first. Used by the schedule diagnostic to find gaps.
func (b *Bucketer) Previous(t time.Time, n int) []string {
	start := b.BucketStart(t)
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, start.Add(-time.Duration(i)*b.width).Format(Layout))
	}
	return out
}
