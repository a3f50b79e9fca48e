package saver

import (
	"encoding/json"
	"os"

	"lean-data/internal/model"

	"github.com/shopspring/decimal"
)

// JSONSaver writes packets as a JSON array (indented).
type JSONSaver struct{}

// jsonBar mirrors model.Bar with the short field names shared by the csv
// and parquet packet layouts.
type jsonBar struct {
	Timestamp int64           `json:"t"`
	Open      decimal.Decimal `json:"o"`
	High      decimal.Decimal `json:"h"`
	Low       decimal.Decimal `json:"l"`
	Close     decimal.Decimal `json:"c"`
	Volume    decimal.Decimal `json:"v"`
}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(bars []model.Bar, path string) error {
	rows := make([]jsonBar, len(bars))
	for i, b := range bars {
		rows[i] = jsonBar{Timestamp: b.Timestamp, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
