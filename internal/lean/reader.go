package lean

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"lean-data/internal/model"

	"github.com/shopspring/decimal"
)

// ReadIntradayZip reads back a minute/second trade zip. The file stores only
// milliseconds since midnight, so the calendar date is taken from the caller.
func ReadIntradayZip(path string, date time.Time) ([]model.Bar, error) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return readTradeZip(path, func(field string) (int64, error) {
		millis, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return 0, err
		}
		return midnight.UnixMilli() + millis, nil
	})
}

// ReadAggregatedZip reads back an hour/daily trade zip.
func ReadAggregatedZip(path string) ([]model.Bar, error) {
	return readTradeZip(path, func(field string) (int64, error) {
		t, err := time.ParseInLocation("20060102 15:04", field, time.UTC)
		if err != nil {
			return 0, err
		}
		return t.UnixMilli(), nil
	})
}

// readTradeZip opens the single csv entry and parses its rows, converting
// the leading time field through parseTime.
func readTradeZip(path string, parseTime func(string) (int64, error)) ([]model.Bar, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("%s: zip has no entries", path)
	}
	entry, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry: %w", err)
	}
	defer entry.Close()

	cr := csv.NewReader(entry)
	cr.FieldsPerRecord = 6
	var bars []model.Bar
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		millis, err := parseTime(record[0])
		if err != nil {
			return nil, fmt.Errorf("parse time field %q: %w", record[0], err)
		}
		values := make([]decimal.Decimal, 5)
		for i := 0; i < 5; i++ {
			v, err := decimal.NewFromString(record[i+1])
			if err != nil {
				return nil, fmt.Errorf("parse value %q: %w", record[i+1], err)
			}
			values[i] = v
		}
		bars = append(bars, model.Bar{
			Timestamp: millis,
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}
	return bars, nil
}
