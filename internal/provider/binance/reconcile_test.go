package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lean-data/internal/interval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeArchive serves zip fixtures by URL path and records every request.
type fakeArchive struct {
	files map[string][]byte
	paths []string
}

func (f *fakeArchive) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.paths = append(f.paths, r.URL.Path)
		body, ok := f.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}
}

func (f *fakeArchive) count(substr string) int {
	n := 0
	for _, p := range f.paths {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

// dayOfHourlyBars builds 24 hourly rows for the given UTC day.
func dayOfHourlyBars(t *testing.T, day time.Time) []byte {
	rows := make([][]string, 0, 24)
	for h := 0; h < 24; h++ {
		rows = append(rows, klineRow(day.Add(time.Duration(h)*time.Hour).UnixMilli(), "100", "101", "99", "100.5", "1"))
	}
	return makeKlineZip(t, rows)
}

func TestRangeKlinesDailyUsesMonthlyFilesOnly(t *testing.T) {
	arch := &fakeArchive{files: map[string][]byte{}}
	for _, m := range []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	} {
		rows := make([][]string, 0, 31)
		for d := m; d.Month() == m.Month(); d = d.AddDate(0, 0, 1) {
			rows = append(rows, klineRow(d.UnixMilli(), "100", "101", "99", "100.5", "1"))
		}
		path := "/data/spot/monthly/klines/BTCUSDT/1d/BTCUSDT-1d-" + m.Format("2006-01") + ".zip"
		arch.files[path] = makeKlineZip(t, rows)
	}
	srv := httptest.NewServer(arch.handler())
	defer srv.Close()

	var apiCalls int
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		http.Error(w, `{"code":-1000,"msg":"unexpected"}`, http.StatusInternalServerError)
	}))
	defer api.Close()

	c := newArchiveTestClient(srv.URL)
	c.SetAPIBase(api.URL)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	bars, err := c.RangeKlines(context.Background(), "BTCUSDT", interval.Interval("1d"), start, end, true)
	require.NoError(t, err)

	// 17 days of January, all 29 of February, 10 of March.
	assert.Len(t, bars, 56)
	assert.Equal(t, start.UnixMilli(), bars[0].Timestamp)
	assert.Equal(t, end.UnixMilli(), bars[len(bars)-1].Timestamp)

	// One request per month, no daily files, no API traffic.
	assert.Len(t, arch.paths, 3)
	assert.Equal(t, 3, arch.count("/monthly/"))
	assert.Zero(t, apiCalls)
}

func TestRangeKlinesGapFallbackSingleSpan(t *testing.T) {
	d1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)
	d4 := d1.AddDate(0, 0, 3)
	d5 := d1.AddDate(0, 0, 4)

	arch := &fakeArchive{files: map[string][]byte{}}
	for _, d := range []time.Time{d1, d3, d4} {
		path := "/data/spot/daily/klines/BTCUSDT/1h/BTCUSDT-1h-" + d.Format("2006-01-02") + ".zip"
		arch.files[path] = dayOfHourlyBars(t, d)
	}
	srv := httptest.NewServer(arch.handler())
	defer srv.Close()

	// The API serves the whole missing span in one page, with two bars past
	// the requested end that the range filter must drop.
	var apiStarts []int64
	page := [][]any{}
	for h := 0; h < 24; h++ {
		page = append(page, jsonKline(d2.Add(time.Duration(h)*time.Hour).UnixMilli(), "100", "101", "99", "100.5", "1"))
	}
	for h := 0; h < 26; h++ {
		page = append(page, jsonKline(d5.Add(time.Duration(h)*time.Hour).UnixMilli(), "100", "101", "99", "100.5", "1"))
	}
	api := newKlineTestServer(t, &apiStarts, map[int64][][]any{d2.UnixMilli(): page})
	defer api.Close()

	c := newArchiveTestClient(srv.URL)
	c.SetAPIBase(api.URL)
	c.PageDelay = time.Millisecond

	end := d5.Add(23 * time.Hour)
	bars, err := c.RangeKlines(context.Background(), "BTCUSDT", interval.Interval("1h"), d1, end, true)
	require.NoError(t, err)

	// Five full days of hourly bars, nothing past the end timestamp.
	assert.Len(t, bars, 120)
	assert.Equal(t, d1.UnixMilli(), bars[0].Timestamp)
	assert.Equal(t, end.UnixMilli(), bars[len(bars)-1].Timestamp)

	// Five daily lookups, then one monthly probe shared by both gap days.
	assert.Equal(t, 5, arch.count("/daily/"))
	assert.Equal(t, 1, arch.count("/monthly/"))

	// Both gap days collapsed into one API span starting at the first gap.
	require.NotEmpty(t, apiStarts)
	assert.Equal(t, d2.UnixMilli(), apiStarts[0])
}

func TestRangeKlinesDayFromMonthlyFile(t *testing.T) {
	d1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	rows := [][]string{}
	for _, d := range []time.Time{d1, d2} {
		for h := 0; h < 24; h++ {
			rows = append(rows, klineRow(d.Add(time.Duration(h)*time.Hour).UnixMilli(), "100", "101", "99", "100.5", "1"))
		}
	}
	arch := &fakeArchive{files: map[string][]byte{
		"/data/spot/monthly/klines/BTCUSDT/1h/BTCUSDT-1h-2024-02.zip": makeKlineZip(t, rows),
	}}
	srv := httptest.NewServer(arch.handler())
	defer srv.Close()

	c := newArchiveTestClient(srv.URL)

	end := d2.Add(12 * time.Hour)
	bars, err := c.RangeKlines(context.Background(), "BTCUSDT", interval.Interval("1h"), d1, end, false)
	require.NoError(t, err)

	// Day one in full, day two clipped at noon inclusive.
	assert.Len(t, bars, 24+13)

	// Two failed daily lookups, one monthly download reused for both days.
	assert.Equal(t, 2, arch.count("/daily/"))
	assert.Equal(t, 1, arch.count("/monthly/"))
}

func TestRangeKlinesNoFallbackWhenDisabled(t *testing.T) {
	arch := &fakeArchive{files: map[string][]byte{}}
	srv := httptest.NewServer(arch.handler())
	defer srv.Close()

	var apiCalls int
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([][]any{})
	}))
	defer api.Close()

	c := newArchiveTestClient(srv.URL)
	c.SetAPIBase(api.URL)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	bars, err := c.RangeKlines(context.Background(), "BTCUSDT", interval.Interval("1h"), start, start.AddDate(0, 0, 2), false)
	require.NoError(t, err)
	assert.Empty(t, bars)
	assert.Zero(t, apiCalls)
}
