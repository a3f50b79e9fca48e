// Package binance downloads historical kline data from the Binance public
// data archive and REST API. No API key is required for historical data.
package binance

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lean-data/internal/interval"
	"lean-data/internal/model"
	"lean-data/internal/saver"

	goBinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	defaultArchiveBase = "https://data.binance.vision"

	// Default page size for the kline endpoint (spot and futures both
	// accept up to 1000 here without weight penalties).
	defaultPageLimit = 1000

	// Courtesy delay between kline pages. The REST API is only used to
	// patch archive gaps, so a fixed delay beats adaptive backoff.
	defaultPageDelay = 100 * time.Millisecond
)

// Client fetches kline bars for one account type (spot or USDT futures).
// A Client owns one HTTP session for archive downloads plus one go-binance
// client for REST paging; both live for the duration of a multi-symbol run.
type Client struct {
	ArchiveBase string        // archive endpoint, override in tests
	PageLimit   int           // bars per kline page
	PageDelay   time.Duration // sleep between kline pages

	SavePacketDir string            // when set with PacketSaver, raw merged bars are dumped here
	PacketSaver   saver.PacketSaver // raw packet persistence, injected by the app layer

	futures    bool
	httpClient *http.Client
	spot       *goBinance.Client
	fut        *futures.Client
}

// NewClient creates a Client for the given account type.
func NewClient(useFutures bool) *Client {
	c := &Client{
		ArchiveBase: defaultArchiveBase,
		PageLimit:   defaultPageLimit,
		PageDelay:   defaultPageDelay,
		futures:     useFutures,
		httpClient:  newHTTPClient(),
	}
	if useFutures {
		c.fut = futures.NewClient("", "")
	} else {
		c.spot = goBinance.NewClient("", "")
	}
	return c
}

// SetAPIBase overrides the kline REST endpoint (tests, mirrors).
func (c *Client) SetAPIBase(base string) {
	if c.futures {
		c.fut.BaseURL = base
	} else {
		c.spot.BaseURL = base
	}
}

// Close releases the underlying HTTP session.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// HistoricalKlines returns bars covering [start, end] for one symbol and
// interval: from the archive with API gap patching when useArchive is set,
// otherwise from the REST API alone. The raw merged result is dumped through
// the packet saver when one is configured.
func (c *Client) HistoricalKlines(ctx context.Context, symbol string, iv interval.Interval, start, end time.Time, useArchive bool) ([]model.Bar, error) {
	var bars []model.Bar
	var err error
	if useArchive {
		bars, err = c.RangeKlines(ctx, symbol, iv, start, end, true)
	} else {
		bars, err = c.Klines(ctx, symbol, iv, start, end)
	}
	if err != nil {
		return nil, err
	}
	c.saveRawPacket(symbol, iv, start, end, bars)
	return bars, nil
}

// saveRawPacket writes bars to SavePacketDir using PacketSaver if configured.
func (c *Client) saveRawPacket(symbol string, iv interval.Interval, from, to time.Time, bars []model.Bar) {
	if c.SavePacketDir == "" || c.PacketSaver == nil || len(bars) == 0 {
		return
	}
	symbolDir := filepath.Join(c.SavePacketDir, strings.ToUpper(symbol))
	if err := os.MkdirAll(symbolDir, 0755); err != nil {
		slog.Warn("raw packet: cannot create folder", "symbol", symbol, "dir", symbolDir, "error", err)
		return
	}
	name := fmt.Sprintf("%s_%s_%s_to_%s.%s",
		strings.ToLower(symbol), iv,
		from.Format("2006-01-02"), to.Format("2006-01-02"),
		c.PacketSaver.Extension())
	path := filepath.Join(symbolDir, name)
	if err := c.PacketSaver.Save(bars, path); err != nil {
		slog.Warn("raw packet: save failed", "symbol", symbol, "path", path, "error", err)
		return
	}
	slog.Info("raw packet saved", "symbol", symbol, "path", path, "bars", len(bars))
}
