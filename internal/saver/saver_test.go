package saver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"lean-data/internal/model"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBars(t *testing.T) []model.Bar {
	t.Helper()
	mk := func(ts int64, o, h, l, c, v string) model.Bar {
		return model.Bar{
			Timestamp: ts,
			Open:      decimal.RequireFromString(o),
			High:      decimal.RequireFromString(h),
			Low:       decimal.RequireFromString(l),
			Close:     decimal.RequireFromString(c),
			Volume:    decimal.RequireFromString(v),
		}
	}
	return []model.Bar{
		mk(1706745600000, "100.5", "101", "99.5", "100.75", "12.5"),
		mk(1706745660000, "100.75", "102", "100", "101.25", "8"),
	}
}

func TestNewPacketSaver(t *testing.T) {
	assert.IsType(t, CSVSaver{}, NewPacketSaver("csv"))
	assert.IsType(t, ParquetSaver{}, NewPacketSaver("Parquet"))
	assert.IsType(t, JSONSaver{}, NewPacketSaver(" json "))
	assert.Nil(t, NewPacketSaver("xml"))
	assert.Nil(t, NewPacketSaver(""))
}

func TestCSVSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packet.csv")
	require.NoError(t, CSVSaver{}.Save(testBars(t), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"t,o,h,l,c,v\n"+
			"1706745600000,100.5,101,99.5,100.75,12.5\n"+
			"1706745660000,100.75,102,100,101.25,8\n",
		string(data))
}

func TestJSONSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packet.json")
	require.NoError(t, JSONSaver{}.Save(testBars(t), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []jsonBar
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1706745600000), rows[0].Timestamp)
	assert.True(t, rows[0].Open.Equal(decimal.RequireFromString("100.5")))
	assert.True(t, rows[1].Close.Equal(decimal.RequireFromString("101.25")))
}

func TestParquetSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packet.parquet")
	require.NoError(t, ParquetSaver{}.Save(testBars(t), path))

	rows, err := parquet.ReadFile[parquetBar](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1706745600000), rows[0].Timestamp)
	assert.InDelta(t, 100.5, rows[0].Open, 1e-9)
	assert.InDelta(t, 101.25, rows[1].Close, 1e-9)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, "csv", CSVSaver{}.Extension())
	assert.Equal(t, "json", JSONSaver{}.Extension())
	assert.Equal(t, "parquet", ParquetSaver{}.Extension())
}
