// Package csvfile reads OHLCV bars from CSV files so histories exported
// from other tooling can be analyzed or ingested without a database.
//
// Expected layout: ts,open,high,low,close,volume with a header row.
// Timestamps are Unix seconds or RFC 3339.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"techpulse/internal/model"
)

// ReadBars loads all bars from path in file order.
func ReadBars(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	start := 0
	if isHeader(records[0]) {
		start = 1
	}

	bars := make([]model.Bar, 0, len(records)-start)
	for i, rec := range records[start:] {
		b, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("csv %s row %d: %w", path, start+i+1, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	return err != nil && parseTS(rec[0]) == nil
}

func parseRow(rec []string) (model.Bar, error) {
	if len(rec) != 6 {
		return model.Bar{}, fmt.Errorf("want 6 columns (ts,open,high,low,close,volume), got %d", len(rec))
	}

	ts := parseTS(rec[0])
	if ts == nil {
		return model.Bar{}, fmt.Errorf("bad timestamp %q", rec[0])
	}

	vals := make([]float64, 4)
	for i, field := range rec[1:5] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("bad price %q", field)
		}
		vals[i] = v
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(rec[5]), 10, 64)
	if err != nil {
		return model.Bar{}, fmt.Errorf("bad volume %q", rec[5])
	}

	return model.Bar{
		TS:     *ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vol,
	}, nil
}

// parseTS accepts Unix seconds or RFC 3339. Returns nil when neither parses.
func parseTS(s string) *time.Time {
	s = strings.TrimSpace(s)
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.Unix(unix, 0).UTC()
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}
