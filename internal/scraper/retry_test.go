package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestWithRetryAttemptCountAndLastError(t *testing.T) {
	attempts := 0
	finalErr := Transient("Op", errors.New("boom 3"))

	_, err := WithRetry(context.Background(), noopLogger(), RetryOptions{Retries: 2, BaseDelay: time.Millisecond}, "Op",
		func(ctx context.Context) (Quote, error) {
			attempts++
			if attempts < 3 {
				return Quote{}, Transient("Op", errors.New("boom"))
			}
			return Quote{}, finalErr
		})

	if attempts != 3 {
		t.Fatalf("retries=2 must mean 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, finalErr) {
		t.Fatalf("last error must propagate unchanged, got %v", err)
	}

	var scrapeErr *Error
	if !errors.As(err, &scrapeErr) || scrapeErr.Kind != KindTransient {
		t.Fatalf("error kind must survive retry exhaustion: %v", err)
	}
}

func TestWithRetrySuccessStopsRetrying(t *testing.T) {
	attempts := 0
	want := Quote{Operator: "Op", TotalSendingAmount: decimal.NewFromInt(1_100_000)}

	got, err := WithRetry(context.Background(), noopLogger(), DefaultRetryOptions, "Op",
		func(ctx context.Context) (Quote, error) {
			attempts++
			return want, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("success must not retry, got %d attempts", attempts)
	}
	if !got.TotalSendingAmount.Equal(want.TotalSendingAmount) {
		t.Fatalf("quote not passed through: %+v", got)
	}
}

func TestWithRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(ctx, noopLogger(), RetryOptions{Retries: 2, BaseDelay: time.Hour}, "Op",
		func(ctx context.Context) (Quote, error) {
			return Quote{}, errors.New("always fails")
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled context must end the backoff wait, got %v", err)
	}
}
