package saver

import (
	"github.com/parquet-go/parquet-go"

	"lean-data/internal/model"
)

// ParquetSaver writes packets as Parquet.
type ParquetSaver struct{}

// parquetBar is the columnar row shape; parquet has no decimal-string type,
// so prices are stored as float64 (the raw dump is diagnostic, the exact
// values live in the Lean output).
type parquetBar struct {
	Timestamp int64   `parquet:"t"`
	Open      float64 `parquet:"o"`
	High      float64 `parquet:"h"`
	Low       float64 `parquet:"l"`
	Close     float64 `parquet:"c"`
	Volume    float64 `parquet:"v"`
}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []model.Bar, path string) error {
	rows := make([]parquetBar, len(bars))
	for i, b := range bars {
		rows[i] = parquetBar{
			Timestamp: b.Timestamp,
			Open:      b.Open.InexactFloat64(),
			High:      b.High.InexactFloat64(),
			Low:       b.Low.InexactFloat64(),
			Close:     b.Close.InexactFloat64(),
			Volume:    b.Volume.InexactFloat64(),
		}
	}
	return parquet.WriteFile(path, rows)
}
