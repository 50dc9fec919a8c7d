// Package collector fans one corridor's collection out over every
// configured pricing source concurrently and joins the settled outcomes.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"remitwatch/internal/browser"
	"remitwatch/internal/scraper"
)

// ErrNoQuotes marks a run where every source failed. There is nothing to
// persist, so the run itself is a failure.
var ErrNoQuotes = errors.New("all pricing sources failed")

// Failure is one source's terminal (post-retry) failure.
type Failure struct {
	Operator string
	Message  string
	Err      error
}

// Outcome is the settled result of one fan-out: the successful quotes in
// stable adapter order, plus one Failure per failed adapter.
type Outcome struct {
	Quotes   []scraper.Quote
	Failures []Failure
}

// Options tune a collection run.
type Options struct {
	Retry scraper.RetryOptions
	// Timeout bounds a single scrape attempt. A timed-out attempt is a
	// transient failure and feeds the retry wrapper like any other.
	Timeout time.Duration
}

// Collector runs a set of scrapers against corridors. The browser launcher
// may be nil when no configured scraper needs one.
type Collector struct {
	scrapers []scraper.Scraper
	launcher browser.Launcher
	opts     Options
	logger   zerolog.Logger
}

// New constructs a Collector. Scraper order is preserved through to the
// outcome; classification relies on it for deterministic tie handling.
func New(scrapers []scraper.Scraper, launcher browser.Launcher, opts Options, logger zerolog.Logger) *Collector {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	return &Collector{
		scrapers: scrapers,
		launcher: launcher,
		opts:     opts,
		logger:   logger.With().Str("component", "collector").Logger(),
	}
}

// Collect queries every scraper concurrently and waits for all of them to
// settle; one source failing never blocks or aborts the others. The shared
// browser is launched at most once and closed after every scraper has
// settled, on every exit path. Collect returns ErrNoQuotes when no source
// produced a quote.
func (c *Collector) Collect(ctx context.Context, corridor scraper.Corridor) (Outcome, error) {
	if len(c.scrapers) == 0 {
		return Outcome{}, fmt.Errorf("no scrapers configured for %s", corridor.Country)
	}

	needsBrowser := false
	for _, s := range c.scrapers {
		if s.NeedsBrowser() {
			needsBrowser = true
			break
		}
	}

	var outcome Outcome
	run := func(ctx context.Context, b browser.Browser) error {
		outcome = c.fanOut(ctx, b, corridor)
		return nil
	}

	if needsBrowser && c.launcher != nil {
		if err := browser.WithBrowser(ctx, c.launcher, run); err != nil {
			return Outcome{}, fmt.Errorf("launch shared browser: %w", err)
		}
	} else {
		_ = run(ctx, nil)
	}

	if len(outcome.Quotes) == 0 {
		return outcome, fmt.Errorf("%w: %d sources", ErrNoQuotes, len(outcome.Failures))
	}
	return outcome, nil
}

func (c *Collector) fanOut(ctx context.Context, b browser.Browser, corridor scraper.Corridor) Outcome {
	type slot struct {
		quote scraper.Quote
		err   error
	}
	slots := make([]slot, len(c.scrapers))

	// Every task records its own settled outcome and returns nil: the
	// group's Wait is a join, never a short circuit.
	var g errgroup.Group
	for i, s := range c.scrapers {
		g.Go(func() error {
			quote, err := c.scrapeOne(ctx, b, s, corridor)
			slots[i] = slot{quote: quote, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var outcome Outcome
	for i, s := range c.scrapers {
		if slots[i].err != nil {
			c.logger.Warn().
				Str("operator", s.Name()).
				Str("country", corridor.Country).
				Err(slots[i].err).
				Msg("source failed")
			outcome.Failures = append(outcome.Failures, Failure{
				Operator: s.Name(),
				Message:  slots[i].err.Error(),
				Err:      slots[i].err,
			})
			continue
		}
		outcome.Quotes = append(outcome.Quotes, slots[i].quote)
	}
	return outcome
}

func (c *Collector) scrapeOne(ctx context.Context, b browser.Browser, s scraper.Scraper, corridor scraper.Corridor) (scraper.Quote, error) {
	if s.NeedsBrowser() && b == nil {
		return scraper.Quote{}, fmt.Errorf("%s requires a browser but none is configured", s.Name())
	}

	return scraper.WithRetry(ctx, c.logger, c.opts.Retry, s.Name(), func(ctx context.Context) (scraper.Quote, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		var page browser.Page
		if s.NeedsBrowser() {
			// A fresh page per attempt: state from a failed attempt, or
			// from a sibling scraper, must never leak in.
			p, err := b.NewPage(attemptCtx)
			if err != nil {
				return scraper.Quote{}, scraper.Transient(s.Name(), err)
			}
			page = p
			defer func() {
				_ = p.Close(context.WithoutCancel(attemptCtx))
			}()
		}

		quote, err := s.Scrape(attemptCtx, page, corridor)
		if err != nil {
			return scraper.Quote{}, scraper.ClassifyNetwork(s.Name(), err)
		}
		return quote, nil
	})
}
