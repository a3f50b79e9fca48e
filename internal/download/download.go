// Package download drives the symbol/interval download loop and the Lean
// writer. Pairs are processed sequentially to respect the remote rate limit
// and keep the per-reconciliation bookkeeping trivially single-threaded.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lean-data/internal/interval"
	"lean-data/internal/lean"
	"lean-data/internal/model"
)

// ErrInvalidRange reports a request whose start date is after its end date.
var ErrInvalidRange = errors.New("start date must be before or equal to end date")

// BarSource fetches historical bars for one symbol/interval window.
// *binance.Client satisfies it.
type BarSource interface {
	HistoricalKlines(ctx context.Context, symbol string, iv interval.Interval, start, end time.Time, useArchive bool) ([]model.Bar, error)
}

// Request describes one download invocation.
type Request struct {
	Symbols    []string
	Intervals  []interval.Interval
	Start      time.Time
	End        time.Time
	Market     string // output namespace, e.g. "binance"
	AssetClass interval.AssetClass
	UseArchive bool
}

// Validate fails fast on configuration errors, before any network activity.
func (r Request) Validate() error {
	if len(r.Symbols) == 0 {
		return fmt.Errorf("no symbols requested")
	}
	if len(r.Intervals) == 0 {
		return fmt.Errorf("no intervals requested")
	}
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	for _, iv := range r.Intervals {
		if _, err := interval.ResolutionOf(iv); err != nil {
			return err
		}
	}
	return nil
}

// Run downloads every symbol × interval pair and writes the results in Lean
// format. A pair that yields no bars is logged and skipped; a pair whose
// write fails is logged and does not abort the remaining pairs. The returned
// map holds the written file paths per symbol (possibly empty).
func Run(ctx context.Context, src BarSource, w *lean.Writer, req Request) (map[string][]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slog.Info("downloading data",
		"market", req.Market,
		"symbols", req.Symbols,
		"intervals", req.Intervals,
		"start", req.Start.Format("2006-01-02"),
		"end", req.End.Format("2006-01-02"),
		"use_archive", req.UseArchive,
		"output", w.DataDir())

	result := make(map[string][]string, len(req.Symbols))
	for _, s := range req.Symbols {
		result[s] = []string{}
	}

	var successPairs []string
	var failedPairs []failedEntry
	for _, symbol := range req.Symbols {
		for _, iv := range req.Intervals {
			pair := fmt.Sprintf("%s %s", symbol, iv)
			slog.Info("downloading pair", "symbol", symbol, "interval", iv)

			bars, err := src.HistoricalKlines(ctx, symbol, iv, req.Start, req.End, req.UseArchive)
			if err != nil {
				slog.Error("download failed", "symbol", symbol, "interval", iv, "error", err)
				failedPairs = append(failedPairs, failedEntry{Pair: pair, Reason: err.Error()})
				continue
			}
			if len(bars) == 0 {
				slog.Warn("no data downloaded", "symbol", symbol, "interval", iv)
				failedPairs = append(failedPairs, failedEntry{Pair: pair, Reason: "no data"})
				continue
			}
			slog.Info("downloaded bars", "symbol", symbol, "interval", iv, "bars", len(bars))

			res, err := interval.ResolutionOf(iv)
			if err != nil {
				// Validated up front; kept for safety.
				slog.Error("unsupported interval", "interval", iv, "error", err)
				failedPairs = append(failedPairs, failedEntry{Pair: pair, Reason: err.Error()})
				continue
			}
			paths, err := w.WriteBars(bars, symbol, req.Market, res, req.AssetClass)
			if err != nil {
				slog.Error("write failed", "symbol", symbol, "interval", iv, "error", err)
				failedPairs = append(failedPairs, failedEntry{Pair: pair, Reason: err.Error()})
				continue
			}
			result[symbol] = append(result[symbol], paths...)
			successPairs = appendUnique(successPairs, pair)
			slog.Info("wrote files", "symbol", symbol, "interval", iv, "files", len(paths))
		}
	}

	if len(successPairs) > 0 || len(failedPairs) > 0 {
		if err := writeRunReport(w.DataDir(), successPairs, failedPairs); err != nil {
			slog.Warn("could not write run report", "error", err)
		}
	}
	return result, nil
}
