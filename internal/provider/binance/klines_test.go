package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"lean-data/internal/interval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonKline renders one kline in the wire format of the REST endpoint.
func jsonKline(openMillis int64, o, h, l, c, v string) []any {
	return []any{
		openMillis, o, h, l, c, v,
		openMillis + 59_999, "0", 0, "0", "0", "0",
	}
}

// newKlineTestServer serves GET /api/v3/klines, picking the response page by
// the startTime query parameter. Requests are counted through calls.
func newKlineTestServer(t *testing.T, calls *[]int64, pages map[int64][][]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		startTime, err := strconv.ParseInt(r.URL.Query().Get("startTime"), 10, 64)
		require.NoError(t, err)
		*calls = append(*calls, startTime)

		page, ok := pages[startTime]
		if !ok {
			page = [][]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
}

func newKlineTestClient(srvURL string) *Client {
	c := NewClient(false)
	c.SetAPIBase(srvURL)
	c.PageDelay = time.Millisecond
	return c
}

func TestKlinesPaginates(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Minute)
	t0 := start.UnixMilli()

	var calls []int64
	srv := newKlineTestServer(t, &calls, map[int64][][]any{
		t0: {
			jsonKline(t0, "100", "101", "99", "100.5", "1"),
			jsonKline(t0+60_000, "100.5", "102", "100", "101", "2"),
		},
		t0 + 120_000: {
			jsonKline(t0+120_000, "101", "103", "101", "102", "3"),
		},
		t0 + 180_000: {},
	})
	defer srv.Close()

	c := newKlineTestClient(srv.URL)
	bars, err := c.Klines(context.Background(), "BTCUSDT", interval.Interval("1m"), start, end)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, t0, bars[0].Timestamp)
	assert.Equal(t, t0+120_000, bars[2].Timestamp)

	// Cursor moved one millisecond past the last bar of each page.
	assert.Equal(t, []int64{t0, t0 + 120_000, t0 + 180_000}, calls)
}

func TestKlinesStopsWhenCursorStalls(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	t0 := start.UnixMilli()

	stale := jsonKline(t0-120_000, "100", "101", "99", "100", "1")
	var calls []int64
	srv := newKlineTestServer(t, &calls, map[int64][][]any{
		t0: {stale},
	})
	defer srv.Close()

	c := newKlineTestClient(srv.URL)
	bars, err := c.Klines(context.Background(), "BTCUSDT", interval.Interval("1m"), start, end)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Len(t, calls, 1, "a page behind the cursor must end the fetch")
}

func TestKlinesReturnsPartialOnAPIError(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	t0 := start.UnixMilli()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			http.Error(w, `{"code":-1003,"msg":"Too many requests."}`, http.StatusTeapot)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([][]any{jsonKline(t0, "100", "101", "99", "100", "1")})
	}))
	defer srv.Close()

	c := newKlineTestClient(srv.URL)
	bars, err := c.Klines(context.Background(), "BTCUSDT", interval.Interval("1m"), start, end)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, t0, bars[0].Timestamp)
}

func TestKlinesEmptySymbol(t *testing.T) {
	c := NewClient(false)
	_, err := c.Klines(context.Background(), "", interval.Interval("1m"), time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}
