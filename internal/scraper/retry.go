package scraper

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetryOptions tune WithRetry.
type RetryOptions struct {
	// Retries is the number of re-attempts after the first try.
	Retries int
	// BaseDelay is multiplied by the attempt number (linear backoff).
	BaseDelay time.Duration
}

// DefaultRetryOptions mirrors the collection cadence the sources tolerate.
var DefaultRetryOptions = RetryOptions{Retries: 2, BaseDelay: 3 * time.Second}

// WithRetry runs fn up to opts.Retries+1 times, sleeping BaseDelay*attempt
// between failures. The last failure is returned unchanged: kind and message
// must survive to the per-operator failure report. A quote that parsed but
// looks implausible is the adapter's job to reject; nothing here inspects
// successful results.
func WithRetry(ctx context.Context, logger zerolog.Logger, opts RetryOptions, name string, fn func(ctx context.Context) (Quote, error)) (Quote, error) {
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Retries+1; attempt++ {
		quote, err := fn(ctx)
		if err == nil {
			return quote, nil
		}
		lastErr = err

		if attempt > opts.Retries {
			break
		}

		logger.Warn().
			Str("operator", name).
			Int("attempt", attempt).
			Int("retries", opts.Retries).
			Err(err).
			Msg("scrape attempt failed, retrying")

		delay := time.Duration(attempt) * opts.BaseDelay
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Quote{}, ctx.Err()
		case <-timer.C:
		}
	}
	return Quote{}, lastErr
}
