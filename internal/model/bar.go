package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents one OHLCV bar at any interval.
// Shared by providers, the raw packet saver and the Lean writer.
type Bar struct {
	Timestamp int64 // Unix timestamp in milliseconds, UTC
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// Time returns the bar timestamp as UTC time.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Key identifies a bar across sources. Exact duplicate timestamps from the
// archive and the REST API carry identical prices, so (timestamp, open, close)
// is enough to collapse them. Prices are keyed as float64 so textual variants
// of the same value (1.50 vs 1.5) map to the same key.
type Key struct {
	Timestamp int64
	Open      float64
	Close     float64
}

// DedupKey returns the dedup key for the bar.
func (b Bar) DedupKey() Key {
	return Key{Timestamp: b.Timestamp, Open: b.Open.InexactFloat64(), Close: b.Close.InexactFloat64()}
}

// SortBars sorts bars ascending by timestamp, in place.
func SortBars(bars []Bar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
}

// Dedup removes duplicate bars keeping the first occurrence in slice order.
// Call after SortBars so first-seen means earliest within the sorted order.
func Dedup(bars []Bar) []Bar {
	seen := make(map[Key]struct{}, len(bars))
	out := bars[:0]
	for _, b := range bars {
		k := b.DedupKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, b)
	}
	return out
}

// FilterRange returns the bars with fromMillis <= Timestamp <= toMillis.
// Archive files routinely contain bars outside the exact requested window.
func FilterRange(bars []Bar, fromMillis, toMillis int64) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Timestamp >= fromMillis && b.Timestamp <= toMillis {
			out = append(out, b)
		}
	}
	return out
}
