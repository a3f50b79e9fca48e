// Package lean serializes bars into the QuantConnect Lean data layout.
//
// Minute/Second: {asset}/{market}/{resolution}/{symbol}/{YYYYMMDD}_trade.zip
// with rows milliseconds-since-midnight,open,high,low,close,volume.
// Hour/Daily: {asset}/{market}/{resolution}/{symbol}_trade.zip with rows
// "YYYYMMDD HH:MM",open,high,low,close,volume.
package lean

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"lean-data/internal/interval"
	"lean-data/internal/model"
)

// Writer writes market data under one Lean data directory. The directory
// must match the data-folder declared in the engine config.
type Writer struct {
	dataDir string
}

// NewWriter creates a Writer rooted at dataDir.
func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// DataDir returns the root data directory.
func (w *Writer) DataDir() string {
	return w.dataDir
}

// WriteBars writes bars in Lean format and returns the written zip paths.
// An empty input is a no-op: no files, empty result. Existing files at the
// same paths are overwritten in full, so repeated downloads are idempotent
// only when the full superset of bars for a date is supplied in one call.
func (w *Writer) WriteBars(bars []model.Bar, symbol, market string, res interval.Resolution, asset interval.AssetClass) ([]string, error) {
	if len(bars) == 0 {
		return nil, nil
	}
	symbol = strings.ToLower(symbol)
	market = strings.ToLower(market)

	sorted := make([]model.Bar, len(bars))
	copy(sorted, bars)
	model.SortBars(sorted)

	if res == interval.Minute || res == interval.Second {
		return w.writeIntraday(sorted, symbol, market, res, asset)
	}
	return w.writeAggregated(sorted, symbol, market, res, asset)
}

// writeIntraday writes minute/second data as one zip per UTC calendar date.
func (w *Writer) writeIntraday(bars []model.Bar, symbol, market string, res interval.Resolution, asset interval.AssetClass) ([]string, error) {
	byDate := make(map[string][]model.Bar)
	for _, b := range bars {
		date := b.Time().Format("20060102")
		byDate[date] = append(byDate[date], b)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	outputDir := filepath.Join(w.dataDir, string(asset), market, string(res), symbol)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, date := range dates {
		zipPath := filepath.Join(outputDir, date+"_trade.zip")
		csvName := fmt.Sprintf("%s_%s_%s_trade.csv", date, symbol, res)
		content, err := formatIntradayCSV(byDate[date])
		if err != nil {
			return written, err
		}
		if err := writeZip(zipPath, csvName, content); err != nil {
			return written, err
		}
		written = append(written, zipPath)
	}
	return written, nil
}

// writeAggregated writes hour/daily data as a single zip per symbol.
func (w *Writer) writeAggregated(bars []model.Bar, symbol, market string, res interval.Resolution, asset interval.AssetClass) ([]string, error) {
	outputDir := filepath.Join(w.dataDir, string(asset), market, string(res))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	zipPath := filepath.Join(outputDir, symbol+"_trade.zip")
	content, err := formatAggregatedCSV(bars)
	if err != nil {
		return nil, err
	}
	if err := writeZip(zipPath, symbol+".csv", content); err != nil {
		return nil, err
	}
	return []string{zipPath}, nil
}

// formatIntradayCSV renders rows keyed by milliseconds since UTC midnight.
func formatIntradayCSV(bars []model.Bar) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, b := range bars {
		t := b.Time()
		midnight := t.Truncate(24 * time.Hour)
		millis := t.Sub(midnight).Milliseconds()
		if err := cw.Write(barRow(strconv.FormatInt(millis, 10), b)); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

// formatAggregatedCSV renders rows keyed by "YYYYMMDD HH:MM".
func formatAggregatedCSV(bars []model.Bar) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, b := range bars {
		if err := cw.Write(barRow(b.Time().Format("20060102 15:04"), b)); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func barRow(timeField string, b model.Bar) []string {
	return []string{
		timeField,
		b.Open.String(),
		b.High.String(),
		b.Low.String(),
		b.Close.String(),
		b.Volume.String(),
	}
}

// writeZip writes one csv entry into a zip file, replacing any existing file.
func writeZip(zipPath, csvName string, content []byte) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", zipPath, err)
	}
	zw := zip.NewWriter(f)
	entry, err := zw.Create(csvName)
	if err == nil {
		_, err = entry.Write(content)
	}
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", zipPath, err)
	}
	return nil
}
