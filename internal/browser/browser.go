// Package browser defines the contract for the shared page-automation
// resource some pricing sources need. The engine never drives a page
// itself; concrete drivers live with the operator adapters that need them.
package browser

import (
	"context"
	"time"
)

// Launcher acquires the shared automation resource for the duration of one
// collection run. Launch is called at most once per run, and only when at
// least one configured adapter reports NeedsBrowser.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running automation instance. Each adapter gets its own
// isolated Page so one adapter's navigation state cannot leak into
// another's; pages from the same Browser share nothing but the process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close(ctx context.Context) error
}

// Page is an isolated browsing context handed to a single adapter.
// Implementations map these onto whatever automation driver backs them.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	// Dispatch fires a DOM event ("change", "blur", ...) on selector so
	// calculator widgets recompute after a programmatic Fill.
	Dispatch(ctx context.Context, selector, event string) error
	// Value reads an input's current value or an element's text.
	Value(ctx context.Context, selector string) (string, error)
	Close(ctx context.Context) error
}

// WithBrowser launches via l, runs fn, and closes the browser on every exit
// path. A close failure never masks fn's error.
func WithBrowser(ctx context.Context, l Launcher, fn func(ctx context.Context, b Browser) error) error {
	b, err := l.Launch(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = b.Close(closeCtx)
	}()
	return fn(ctx, b)
}
