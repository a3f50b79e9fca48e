package binance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lean-data/internal/interval"
	"lean-data/internal/model"

	goBinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

// Klines pages through the kline REST endpoint covering [start, end).
//
// Each page advances startTime to one millisecond past the last returned
// bar. The fetch stops on an empty page, on an API or transport error, or
// when the cursor fails to advance (malformed response guard). Errors are
// not surfaced: whatever was accumulated so far is returned, so a flaky
// endpoint still yields the pages that did arrive.
func (c *Client) Klines(ctx context.Context, symbol string, iv interval.Interval, start, end time.Time) ([]model.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol must not be empty")
	}

	cursor := start.UnixMilli()
	endMillis := end.UnixMilli()
	var all []model.Bar

	for cursor < endMillis {
		slog.Debug("fetching klines page", "symbol", symbol, "interval", iv, "start", time.UnixMilli(cursor).UTC())

		page, err := c.klinesPage(ctx, symbol, iv, cursor, endMillis)
		if err != nil {
			slog.Warn("kline page failed, returning partial data", "symbol", symbol, "interval", iv, "error", err)
			break
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		last := page[len(page)-1].Timestamp
		if last < cursor {
			// Endpoint did not move us forward; bail instead of looping.
			break
		}
		cursor = last + 1

		if cursor < endMillis {
			time.Sleep(c.PageDelay)
		}
	}
	return all, nil
}

// klinesPage fetches a single page from the spot or futures kline endpoint.
func (c *Client) klinesPage(ctx context.Context, symbol string, iv interval.Interval, startMillis, endMillis int64) ([]model.Bar, error) {
	sym := strings.ToUpper(symbol)
	if c.futures {
		rows, err := c.fut.NewKlinesService().
			Symbol(sym).
			Interval(string(iv)).
			StartTime(startMillis).
			EndTime(endMillis).
			Limit(c.PageLimit).
			Do(ctx)
		if err != nil {
			return nil, err
		}
		return futuresKlinesToBars(rows), nil
	}
	rows, err := c.spot.NewKlinesService().
		Symbol(sym).
		Interval(string(iv)).
		StartTime(startMillis).
		EndTime(endMillis).
		Limit(c.PageLimit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return spotKlinesToBars(rows), nil
}

func spotKlinesToBars(rows []*goBinance.Kline) []model.Bar {
	bars := make([]model.Bar, 0, len(rows))
	for _, k := range rows {
		if b, ok := klineToBar(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume); ok {
			bars = append(bars, b)
		}
	}
	return bars
}

func futuresKlinesToBars(rows []*futures.Kline) []model.Bar {
	bars := make([]model.Bar, 0, len(rows))
	for _, k := range rows {
		if b, ok := klineToBar(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume); ok {
			bars = append(bars, b)
		}
	}
	return bars
}

func klineToBar(openTime int64, open, high, low, closePrice, volume string) (model.Bar, bool) {
	o, err1 := decimal.NewFromString(open)
	h, err2 := decimal.NewFromString(high)
	l, err3 := decimal.NewFromString(low)
	cl, err4 := decimal.NewFromString(closePrice)
	v, err5 := decimal.NewFromString(volume)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return model.Bar{}, false
	}
	return model.Bar{Timestamp: openTime, Open: o, High: h, Low: l, Close: cl, Volume: v}, true
}
