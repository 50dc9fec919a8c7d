package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"remitwatch/internal/browser"
	"remitwatch/internal/collector"
	"remitwatch/internal/config"
	"remitwatch/internal/scraper"
	"remitwatch/internal/storage"
	"remitwatch/internal/timebucket"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	// Launcher provides the shared browser resource for scrapers that
	// need one. Nil unless a driver binary is wired in at build time.
	Launcher browser.Launcher
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, fmt.Errorf("database.dsn not configured")
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newBucketer() *timebucket.Bucketer {
	return timebucket.New(a.Config.Bucket.Width, a.Config.Bucket.OffsetHours)
}

// buildScrapers resolves configured scraper names for a corridor. Operators
// priced through page automation live behind external adapters; only the
// API-backed ones are built in.
func (a *App) buildScrapers(names []string) ([]scraper.Scraper, error) {
	floor := decimal.NewFromFloat(a.Config.Scrape.FloorKRW)
	timeout := a.Config.Scrape.Timeout

	scrapers := make([]scraper.Scraper, 0, len(names))
	for _, name := range names {
		switch name {
		case "GMoneyTrans":
			scrapers = append(scrapers, scraper.NewGMoneyTrans(scraper.GMoneyTransOptions{
				Timeout:  timeout,
				FloorKRW: floor,
			}, a.Logger))
		case "Hanpass":
			scrapers = append(scrapers, scraper.NewHanpass(scraper.HanpassOptions{
				Timeout:  timeout,
				FloorKRW: floor,
			}, a.Logger))
		default:
			return nil, fmt.Errorf("unknown scraper %q", name)
		}
	}
	if len(scrapers) == 0 {
		return nil, fmt.Errorf("no scrapers configured")
	}
	return scrapers, nil
}

func (a *App) newCollector(scrapers []scraper.Scraper) *collector.Collector {
	return collector.New(scrapers, a.Launcher, collector.Options{
		Retry: scraper.RetryOptions{
			Retries:   a.Config.Scrape.Retries,
			BaseDelay: a.Config.Scrape.RetryDelay,
		},
		Timeout: a.Config.Scrape.Timeout,
	}, a.Logger)
}

func (a *App) corridorOf(cfg config.CorridorConfig) scraper.Corridor {
	return scraper.Corridor{
		Country:       cfg.Country,
		Currency:      cfg.Currency,
		ReceiveAmount: decimal.NewFromFloat(cfg.ReceiveAmount),
	}
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Country string
	Limit   int
}

// ExportOptions hold parameters for exporting historical records.
type ExportOptions struct {
	Country string
	Days    int
	CSVPath string
	PNGPath string
}

// ImportOptions configure the bulk import.
type ImportOptions struct {
	Path      string
	BatchSize int
	DryRun    bool
}

// ScheduleOptions configure the missing-bucket diagnostic.
type ScheduleOptions struct {
	WindowHours int
}

func windowStartDate(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, -days).Format("2006-01-02")
}
