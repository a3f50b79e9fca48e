package binance

import (
	"context"
	"log/slog"
	"time"

	"lean-data/internal/interval"
	"lean-data/internal/model"
)

// monthKey identifies one calendar month in the archive.
type monthKey struct {
	Year  int
	Month time.Month
}

// reconcileState is the bookkeeping for a single RangeKlines call. Never
// shared across calls.
type reconcileState struct {
	monthCache  map[monthKey][]model.Bar // monthly archive results, including empty ones
	missingDays []time.Time              // days with no archive coverage, ascending
}

// RangeKlines covers [start, end] for one symbol and interval from the
// archive, patching gaps through the REST API when apiFallback is set.
//
// Daily-resolution intervals (1d, 3d, 1w, 1M) fetch monthly files only:
// their daily files would hold a single bar each, costing 365 requests per
// year for nothing. Sub-daily intervals walk day by day, trying the daily
// file first and falling back to that day's monthly file, which is fetched
// at most once per month.
//
// All missing days collapse into one API call over [min, max+1d) even when
// they are not contiguous; the range filter discards the over-fetch. A
// sub-range for which every source came up empty is simply absent from the
// result.
func (c *Client) RangeKlines(ctx context.Context, symbol string, iv interval.Interval, start, end time.Time, apiFallback bool) ([]model.Bar, error) {
	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()
	firstDay := dateOf(start)
	lastDay := dateOf(end)

	st := &reconcileState{monthCache: make(map[monthKey][]model.Bar)}
	all := make([]model.Bar, 0, estimatedBars(iv, start, end))

	if iv.DailyResolution() {
		all = c.reconcileByMonth(ctx, st, all, symbol, iv, firstDay, lastDay, startMillis, endMillis)
	} else {
		all = c.reconcileByDay(ctx, st, all, symbol, iv, firstDay, lastDay, startMillis, endMillis)
	}

	if len(st.missingDays) > 0 && apiFallback {
		slog.Warn("archive data unavailable, falling back to API",
			"symbol", symbol, "interval", iv, "missing_days", len(st.missingDays))
		apiStart := st.missingDays[0]
		apiEnd := st.missingDays[len(st.missingDays)-1].AddDate(0, 0, 1)
		apiBars, err := c.Klines(ctx, symbol, iv, apiStart, apiEnd)
		if err != nil {
			slog.Warn("API fallback failed", "symbol", symbol, "interval", iv, "error", err)
		} else if len(apiBars) > 0 {
			all = append(all, model.FilterRange(apiBars, startMillis, endMillis)...)
			slog.Info("API fallback filled gaps", "symbol", symbol, "interval", iv, "bars", len(apiBars))
		}
	}

	model.SortBars(all)
	return model.Dedup(all), nil
}

// reconcileByMonth iterates calendar months, one monthly archive request per
// month. A month with no archive data marks each of its in-range days missing.
func (c *Client) reconcileByMonth(ctx context.Context, st *reconcileState, all []model.Bar, symbol string, iv interval.Interval, firstDay, lastDay time.Time, startMillis, endMillis int64) []model.Bar {
	for cur := monthOf(firstDay); !cur.After(monthOf(lastDay)); cur = cur.AddDate(0, 1, 0) {
		bars := c.cachedMonth(ctx, st, symbol, iv, cur.Year(), cur.Month())
		if len(bars) > 0 {
			kept := model.FilterRange(bars, startMillis, endMillis)
			all = append(all, kept...)
			slog.Info("monthly archive downloaded", "symbol", symbol, "interval", iv,
				"month", cur.Format("2006-01"), "bars", len(kept))
			continue
		}
		nextMonth := cur.AddDate(0, 1, 0)
		for d := cur; d.Before(nextMonth) && !d.After(lastDay); d = d.AddDate(0, 0, 1) {
			if !d.Before(firstDay) {
				st.missingDays = append(st.missingDays, d)
			}
		}
	}
	return all
}

// reconcileByDay iterates days for sub-daily intervals: daily archive file
// first, then the day's slice of the cached monthly file, else missing.
func (c *Client) reconcileByDay(ctx context.Context, st *reconcileState, all []model.Bar, symbol string, iv interval.Interval, firstDay, lastDay time.Time, startMillis, endMillis int64) []model.Bar {
	for d := firstDay; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		bars, err := c.ArchiveKlines(ctx, symbol, iv, d.Year(), int(d.Month()), d.Day())
		if err != nil {
			slog.Warn("daily archive request failed", "symbol", symbol, "interval", iv,
				"date", d.Format("2006-01-02"), "error", err)
		}
		if len(bars) > 0 {
			kept := model.FilterRange(bars, startMillis, endMillis)
			all = append(all, kept...)
			slog.Info("daily archive downloaded", "symbol", symbol, "interval", iv,
				"date", d.Format("2006-01-02"), "bars", len(kept))
			continue
		}

		monthBars := c.cachedMonth(ctx, st, symbol, iv, d.Year(), d.Month())
		if len(monthBars) > 0 {
			dayStart := d.UnixMilli()
			dayEnd := d.AddDate(0, 0, 1).UnixMilli() - 1
			kept := model.FilterRange(monthBars, maxInt64(dayStart, startMillis), minInt64(dayEnd, endMillis))
			all = append(all, kept...)
			continue
		}

		st.missingDays = append(st.missingDays, d)
	}
	return all
}

// cachedMonth fetches the monthly archive file at most once per month key.
// Emptiness is cached too, so a month known to be absent is not re-requested
// for every one of its days.
func (c *Client) cachedMonth(ctx context.Context, st *reconcileState, symbol string, iv interval.Interval, year int, month time.Month) []model.Bar {
	key := monthKey{Year: year, Month: month}
	if bars, ok := st.monthCache[key]; ok {
		return bars
	}
	bars, err := c.ArchiveKlines(ctx, symbol, iv, year, int(month), 0)
	if err != nil {
		slog.Warn("monthly archive request failed", "symbol", symbol, "interval", iv,
			"year", year, "month", int(month), "error", err)
		bars = nil
	}
	st.monthCache[key] = bars
	return bars
}

// estimatedBars returns pre-alloc capacity for [from, to]: expected bar
// count plus 10%, capped. Same idea as sizing the accumulator once instead
// of growing it across a multi-month range.
func estimatedBars(iv interval.Interval, from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	step := iv.Step()
	if step <= 0 {
		return 0
	}
	n := int(to.Sub(from)/step) + 1
	n += n / 10
	if n > 2_000_000 {
		n = 2_000_000
	}
	return n
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
