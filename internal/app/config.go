package app

import (
	"fmt"
	"path/filepath"
	"time"

	"lean-data/internal/interval"

	"github.com/kelseyhightower/envconfig"
)

// Config holds workspace configuration from environment variables.
type Config struct {
	Exchange    string   `envconfig:"LEAN_EXCHANGE" default:"binance"`
	Symbols     []string `envconfig:"LEAN_SYMBOLS" default:"BTCUSDT"`
	Intervals   []string `envconfig:"LEAN_INTERVALS" default:"1h,1d"`
	Start       string   `envconfig:"LEAN_START"` // YYYY-MM-DD, empty means now-Days
	End         string   `envconfig:"LEAN_END"`   // YYYY-MM-DD, empty means now
	Days        int      `envconfig:"LEAN_DAYS" default:"10"`
	AccountType string   `envconfig:"LEAN_ACCOUNT_TYPE" default:"spot"` // spot | usdt_future | coin_future
	UseArchive  bool     `envconfig:"LEAN_USE_ARCHIVE" default:"true"`

	DataDir   string `envconfig:"LEAN_DATA_DIR" default:"data"`
	RawFormat string `envconfig:"LEAN_RAW_FORMAT"` // csv | parquet | json; empty disables the raw dump
	RawDir    string `envconfig:"LEAN_RAW_DIR"`    // defaults to {DataDir}/raw

	LauncherDir string `envconfig:"LEAN_LAUNCHER_DIR" default:"/Lean/Launcher/bin/Debug"`
	ResultsDir  string `envconfig:"LEAN_RESULTS_DIR" default:"results"`

	LogLevel string `envconfig:"LEAN_LOG_LEVEL" default:"info"` // debug | info | warn | error
}

// LoadConfig reads config from the environment and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.RawDir == "" {
		cfg.RawDir = filepath.Join(cfg.DataDir, "raw")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on configuration errors.
func (c *Config) Validate() error {
	if c.Exchange != "binance" {
		return fmt.Errorf("only the binance exchange is currently supported, got: %s", c.Exchange)
	}
	switch c.AccountType {
	case "spot", "usdt_future", "coin_future":
	default:
		return fmt.Errorf("unsupported account type: %s (use: spot, usdt_future, coin_future)", c.AccountType)
	}
	if c.Days <= 0 {
		return fmt.Errorf("LEAN_DAYS must be positive, got %d", c.Days)
	}
	if c.RawFormat != "" && c.RawFormat != "csv" && c.RawFormat != "parquet" && c.RawFormat != "json" {
		return fmt.Errorf("unsupported LEAN_RAW_FORMAT %q (use: csv, parquet, json)", c.RawFormat)
	}
	if _, err := c.ParsedIntervals(); err != nil {
		return err
	}
	if _, _, err := c.DateRange(time.Now().UTC()); err != nil {
		return err
	}
	return nil
}

// UseFutures reports whether the account type selects futures endpoints.
func (c *Config) UseFutures() bool {
	return c.AccountType == "usdt_future" || c.AccountType == "coin_future"
}

// AssetClass returns the Lean output namespace for the account type.
func (c *Config) AssetClass() interval.AssetClass {
	if c.UseFutures() {
		return interval.CryptoFuture
	}
	return interval.Crypto
}

// ParsedIntervals validates and converts the configured interval strings.
func (c *Config) ParsedIntervals() ([]interval.Interval, error) {
	out := make([]interval.Interval, 0, len(c.Intervals))
	for _, s := range c.Intervals {
		iv, err := interval.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

// DateRange resolves the requested window: explicit dates when set,
// otherwise the last Days days up to now.
func (c *Config) DateRange(now time.Time) (time.Time, time.Time, error) {
	start := now.AddDate(0, 0, -c.Days)
	end := now
	var err error
	if c.Start != "" {
		start, err = time.ParseInLocation("2006-01-02", c.Start, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse LEAN_START: %w", err)
		}
	}
	if c.End != "" {
		end, err = time.ParseInLocation("2006-01-02", c.End, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse LEAN_END: %w", err)
		}
	}
	return start, end, nil
}

// LauncherDLL returns the path to the engine entry point.
func (c *Config) LauncherDLL() string {
	return filepath.Join(c.LauncherDir, "QuantConnect.Lean.Launcher.dll")
}
