// Package interval defines the closed set of supported kline intervals and
// their mapping onto Lean output resolutions.
package interval

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Resolution is the output granularity bucket. It selects the Lean file
// layout: minute/second data is bucketed per date, hour/daily data goes
// into one file per symbol.
type Resolution string

const (
	Second Resolution = "second"
	Minute Resolution = "minute"
	Hour   Resolution = "hour"
	Daily  Resolution = "daily"
)

// AssetClass selects the top-level Lean data namespace.
type AssetClass string

const (
	Crypto       AssetClass = "crypto"
	CryptoFuture AssetClass = "cryptofuture"
)

// Interval is a Binance kline interval. Only values from the supported set
// are valid; construct through Parse.
type Interval string

var resolutions = map[Interval]Resolution{
	"1s":  Second,
	"1m":  Minute,
	"3m":  Minute,
	"5m":  Minute,
	"15m": Minute,
	"30m": Minute,
	"1h":  Hour,
	"2h":  Hour,
	"4h":  Hour,
	"6h":  Hour,
	"8h":  Hour,
	"12h": Hour,
	"1d":  Daily,
	"3d":  Daily,
	"1w":  Daily,
	"1M":  Daily,
}

// ErrUnsupportedInterval reports an interval outside the supported set.
type ErrUnsupportedInterval struct {
	Input string
}

func (e ErrUnsupportedInterval) Error() string {
	return fmt.Sprintf("unsupported interval: %s (supported: %s)", e.Input, strings.Join(Supported(), ", "))
}

// Parse validates the input against the supported set. Case matters:
// Binance distinguishes 1m (minute) from 1M (month).
func Parse(input string) (Interval, error) {
	iv := Interval(strings.TrimSpace(input))
	if _, ok := resolutions[iv]; !ok {
		return "", ErrUnsupportedInterval{Input: input}
	}
	return iv, nil
}

// ResolutionOf maps the interval to its output resolution. Total over the
// supported set; anything else is ErrUnsupportedInterval.
func ResolutionOf(iv Interval) (Resolution, error) {
	r, ok := resolutions[iv]
	if !ok {
		return "", ErrUnsupportedInterval{Input: string(iv)}
	}
	return r, nil
}

// DailyResolution reports whether the interval collapses to the daily
// layout. These intervals carry one bar per day or less, so the archive
// pass fetches monthly files only.
func (iv Interval) DailyResolution() bool {
	return resolutions[iv] == Daily
}

var steps = map[Interval]time.Duration{
	"1s":  time.Second,
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"3d":  72 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1M":  30 * 24 * time.Hour, // nominal, used for capacity estimates only
}

// Step returns the nominal duration of one bar. Zero for unknown intervals.
func (iv Interval) Step() time.Duration {
	return steps[iv]
}

// Supported returns all supported interval strings, sorted.
func Supported() []string {
	keys := make([]string, 0, len(resolutions))
	for k := range resolutions {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}
