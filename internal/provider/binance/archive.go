package binance

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"lean-data/internal/interval"
	"lean-data/internal/model"

	"github.com/shopspring/decimal"
)

// Archive timestamps outside 2017..2030 are garbage rows (some files carry
// trailing checksum or truncated lines).
const (
	minSaneMillis = 1483228800000 // 2017-01-01T00:00:00Z
	maxSaneMillis = 1893456000000 // 2030-01-01T00:00:00Z
)

// archiveURL builds the bulk file URL. day == 0 selects the monthly file.
func (c *Client) archiveURL(symbol string, iv interval.Interval, year, month, day int) string {
	granularity := "monthly"
	if day > 0 {
		granularity = "daily"
	}
	var basePath string
	if c.futures {
		basePath = "/data/futures/um/" + granularity + "/klines"
	} else {
		basePath = "/data/spot/" + granularity + "/klines"
	}
	sym := strings.ToUpper(symbol)
	var filename string
	if day > 0 {
		filename = fmt.Sprintf("%s-%s-%d-%02d-%02d.zip", sym, iv, year, month, day)
	} else {
		filename = fmt.Sprintf("%s-%s-%d-%02d.zip", sym, iv, year, month)
	}
	return fmt.Sprintf("%s%s/%s/%s/%s", c.ArchiveBase, basePath, sym, iv, filename)
}

// ArchiveKlines downloads one bulk archive file from the Binance data
// archive. The archive provides historical data without API rate limits.
//
// A missing file (404), an unexpected status, a body that is not a valid zip
// or a csv that cannot be parsed all mean "no data for this period": the
// result is empty with a nil error. Only transport-level failures return a
// non-nil error, so the reconciler can tell a dead network from a gap.
func (c *Client) ArchiveKlines(ctx context.Context, symbol string, iv interval.Interval, year, month, day int) ([]model.Bar, error) {
	url := c.archiveURL(symbol, iv, year, month, day)
	slog.Debug("downloading archive", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("archive not found", "url", url)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		slog.Debug("archive download failed", "url", url, "status", resp.StatusCode)
		return nil, nil
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive body: %w", err)
	}
	if !bytes.HasPrefix(content, []byte("PK")) {
		slog.Debug("archive content is not a zip file", "url", url)
		return nil, nil
	}

	bars, err := parseArchiveZip(content)
	if err != nil {
		slog.Debug("archive parse failed", "url", url, "error", err)
		return nil, nil
	}
	return bars, nil
}

// parseArchiveZip extracts the single csv entry and parses its rows.
func parseArchiveZip(content []byte) ([]model.Bar, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("zip has no entries")
	}
	f, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry: %w", err)
	}
	defer f.Close()
	return parseArchiveCSV(f)
}

// parseArchiveCSV parses kline rows. The first row may be a header
// (open_time,open,high,low,close,volume,...); rows that fail numeric
// coercion or fall outside the sane timestamp window are skipped
// individually instead of aborting the file.
func parseArchiveCSV(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var bars []model.Bar
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if isHeaderRow(record) {
				continue
			}
		}
		if b, ok := parseArchiveRow(record); ok {
			bars = append(bars, b)
		}
	}
	return bars, nil
}

// isHeaderRow reports whether the row is a header: first field is literally
// open_time or does not start with a digit.
func isHeaderRow(record []string) bool {
	if len(record) == 0 || record[0] == "" {
		return true
	}
	if strings.HasPrefix(record[0], "open_time") {
		return true
	}
	c := record[0][0]
	return c < '0' || c > '9'
}

// parseArchiveRow coerces the six leading fields of a kline row.
func parseArchiveRow(record []string) (model.Bar, bool) {
	if len(record) < 6 {
		return model.Bar{}, false
	}
	ts, err := decimal.NewFromString(record[0])
	if err != nil {
		return model.Bar{}, false
	}
	millis := ts.IntPart()
	if millis < minSaneMillis || millis >= maxSaneMillis {
		return model.Bar{}, false
	}
	values := make([]decimal.Decimal, 5)
	for i := 0; i < 5; i++ {
		v, err := decimal.NewFromString(record[i+1])
		if err != nil {
			return model.Bar{}, false
		}
		values[i] = v
	}
	return model.Bar{
		Timestamp: millis,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, true
}
