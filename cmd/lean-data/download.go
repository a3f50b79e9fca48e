package main

import (
	"context"
	"flag"
	"log/slog"
	"strings"
	"time"

	"lean-data/internal/download"
	"lean-data/internal/slogx"

	"github.com/google/subcommands"
)

// downloadCmd downloads historical klines into the Lean data directory.
// Flags override the LEAN_* environment configuration.
type downloadCmd struct {
	symbols   string
	intervals string
	start     string
	end       string
	days      int
}

func (*downloadCmd) Name() string { return "download" }
func (*downloadCmd) Synopsis() string {
	return "download historical kline data into the Lean data directory"
}
func (*downloadCmd) Usage() string {
	return `download [-symbols BTCUSDT,ETHUSDT] [-intervals 1h,1d] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-days N]:
  Download OHLCV bars from the Binance archive/API and write them in Lean format.
`
}

func (c *downloadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbols (default from LEAN_SYMBOLS)")
	f.StringVar(&c.intervals, "intervals", "", "comma-separated intervals (default from LEAN_INTERVALS)")
	f.StringVar(&c.start, "start", "", "start date YYYY-MM-DD (default from LEAN_START or now-days)")
	f.StringVar(&c.end, "end", "", "end date YYYY-MM-DD (default from LEAN_END or now)")
	f.IntVar(&c.days, "days", 0, "days back when no start date is given (default from LEAN_DAYS)")
}

func (c *downloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.DP.Close()

	cfg := a.Config
	if c.symbols != "" {
		cfg.Symbols = splitList(c.symbols)
	}
	if c.intervals != "" {
		cfg.Intervals = splitList(c.intervals)
	}
	if c.start != "" {
		cfg.Start = c.start
	}
	if c.end != "" {
		cfg.End = c.end
	}
	if c.days > 0 {
		cfg.Days = c.days
	}

	slog.SetDefault(slogx.NewDefault(cfg.LogLevel))
	slog.Info("using data provider", "provider", a.DP.GetName())

	intervals, err := cfg.ParsedIntervals()
	if err != nil {
		slog.Error("invalid intervals", "error", err)
		return subcommands.ExitUsageError
	}
	start, end, err := cfg.DateRange(time.Now().UTC())
	if err != nil {
		slog.Error("invalid date range", "error", err)
		return subcommands.ExitUsageError
	}

	req := download.Request{
		Symbols:    cfg.Symbols,
		Intervals:  intervals,
		Start:      start,
		End:        end,
		Market:     cfg.Exchange,
		AssetClass: cfg.AssetClass(),
		UseArchive: cfg.UseArchive,
	}
	result, err := download.Run(ctx, a.DP, a.Writer, req)
	if err != nil {
		slog.Error("download failed", "error", err)
		return subcommands.ExitFailure
	}

	var files int
	for symbol, paths := range result {
		files += len(paths)
		slog.Info("symbol done", "symbol", symbol, "files", len(paths))
	}
	slog.Info("download complete", "symbols", len(result), "files", files)
	return subcommands.ExitSuccess
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
