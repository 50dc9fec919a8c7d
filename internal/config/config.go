package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"remitwatch/internal/logging"
	"remitwatch/internal/timebucket"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig                 `mapstructure:"app"`
	Logging   logging.Config            `mapstructure:"logging"`
	Database  DatabaseConfig            `mapstructure:"database"`
	Server    ServerConfig              `mapstructure:"server"`
	Bucket    BucketConfig              `mapstructure:"bucket"`
	Scrape    ScrapeConfig              `mapstructure:"scrape"`
	Reference ReferenceConfig           `mapstructure:"reference"`
	Corridors map[string]CorridorConfig `mapstructure:"corridors"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// ServerConfig governs the read API.
type ServerConfig struct {
	Addr       string `mapstructure:"addr"`
	WindowDays int    `mapstructure:"window_days"`
}

// BucketConfig fixes the time quantization every run shares.
type BucketConfig struct {
	Width       time.Duration `mapstructure:"width"`
	OffsetHours int           `mapstructure:"offset_hours"`
}

// ScrapeConfig tunes source calls.
type ScrapeConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	FloorKRW   float64       `mapstructure:"floor_krw"`
}

// ReferenceConfig names the operator whose cost is the comparison baseline.
type ReferenceConfig struct {
	Operator string `mapstructure:"operator"`
}

// CorridorConfig describes one destination being priced.
type CorridorConfig struct {
	Country       string   `mapstructure:"country"`
	Currency      string   `mapstructure:"currency"`
	ReceiveAmount float64  `mapstructure:"receive_amount"`
	Scrapers      []string `mapstructure:"scrapers"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REMITWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "remitwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.addr", ":8090")
	v.SetDefault("server.window_days", 30)

	v.SetDefault("bucket.width", timebucket.DefaultWidth.String())
	v.SetDefault("bucket.offset_hours", timebucket.DefaultOffsetHours)

	v.SetDefault("scrape.timeout", "45s")
	v.SetDefault("scrape.retries", 2)
	v.SetDefault("scrape.retry_delay", "3s")
	v.SetDefault("scrape.floor_krw", 100000.0)

	v.SetDefault("reference.operator", "GME")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Bucket.Width <= 0 {
		return fmt.Errorf("bucket.width must be greater than zero")
	}
	if c.Bucket.OffsetHours < -12 || c.Bucket.OffsetHours > 14 {
		return fmt.Errorf("bucket.offset_hours %d is not a valid zone offset", c.Bucket.OffsetHours)
	}
	if c.Scrape.Retries < 0 {
		return fmt.Errorf("scrape.retries cannot be negative")
	}
	if c.Reference.Operator == "" {
		return fmt.Errorf("reference.operator is required")
	}
	if c.Server.WindowDays <= 0 {
		return fmt.Errorf("server.window_days must be greater than zero")
	}
	for name, corridor := range c.Corridors {
		if corridor.Country == "" || corridor.Currency == "" {
			return fmt.Errorf("corridor %q: country and currency are required", name)
		}
		if corridor.ReceiveAmount <= 0 {
			return fmt.Errorf("corridor %q: receive_amount must be greater than zero", name)
		}
	}
	return nil
}

// Corridor resolves a named corridor.
func (c *Config) Corridor(name string) (CorridorConfig, error) {
	corridor, ok := c.Corridors[name]
	if !ok {
		names := make([]string, 0, len(c.Corridors))
		for n := range c.Corridors {
			names = append(names, n)
		}
		return CorridorConfig{}, fmt.Errorf("unknown corridor %q (configured: %s)", name, strings.Join(names, ", "))
	}
	return corridor, nil
}
