package app

import (
	"context"
	"fmt"
	"os"
	"time"
)

const defaultScheduleWindowHours = 48

// Schedule reports which recent time buckets have no persisted records at
// all. The collector itself is triggered externally, so gaps here usually
// mean the periodic invoker skipped a run.
func (a *App) Schedule(ctx context.Context, opts ScheduleOptions) error {
	hours := opts.WindowHours
	if hours <= 0 {
		hours = defaultScheduleWindowHours
	}

	bucketer := a.newBucketer()
	now := time.Now()
	buckets := bucketer.Previous(now, int(time.Duration(hours)*time.Hour/bucketer.Width()))
	if len(buckets) == 0 {
		return fmt.Errorf("window of %dh covers no buckets", hours)
	}
	// Previous is most recent first; the oldest entry bounds the query.
	oldest := buckets[len(buckets)-1]

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	keys, err := store.ListKeysSince(ctx, oldest)
	if err != nil {
		return err
	}

	populated := make(map[string]int, len(keys))
	for _, key := range keys {
		populated[key.RunHour]++
	}

	missing := make([]string, 0)
	for _, bucket := range buckets {
		if populated[bucket] == 0 {
			missing = append(missing, bucket)
		}
	}

	fmt.Fprintf(os.Stdout, "last %dh: %d buckets expected, %d populated, %d missing\n",
		hours, len(buckets), len(buckets)-len(missing), len(missing))
	for _, bucket := range missing {
		fmt.Fprintf(os.Stdout, "  missing: %s\n", bucket)
	}
	if len(missing) == 0 {
		fmt.Fprintln(os.Stdout, "no gaps found")
	}
	return nil
}
