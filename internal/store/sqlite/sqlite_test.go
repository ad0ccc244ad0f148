package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"techpulse/internal/model"
)

func testBars(n int, start float64) []model.Bar {
	out := make([]model.Bar, n)
	for i := range out {
		c := start + float64(i)
		out[i] = model.Bar{
			TS:     time.Unix(int64(1700000000+i*60), 0).UTC(),
			Open:   c - 0.2,
			High:   c + 0.4,
			Low:    c - 0.6,
			Close:  c,
			Volume: int64(1000 + i),
		}
	}
	return out
}

func TestWriterReader_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")

	w, err := New(WriterConfig{DBPath: path})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	bars := testBars(10, 100)
	if err := w.InsertBars("AAPL", bars); err != nil {
		t.Fatalf("insert: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	got, err := r.ReadBars("AAPL", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(bars) {
		t.Fatalf("read %d bars, want %d", len(got), len(bars))
	}
	for i := range bars {
		if !got[i].TS.Equal(bars[i].TS) || got[i].Close != bars[i].Close || got[i].Volume != bars[i].Volume {
			t.Fatalf("bar %d = %+v, want %+v", i, got[i], bars[i])
		}
	}
	if got[0].TS.After(got[len(got)-1].TS) {
		t.Fatal("bars must come back in ascending time order")
	}
}

func TestReader_ReadRecentBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")

	w, err := New(WriterConfig{DBPath: path})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()
	if err := w.InsertBars("TSLA", testBars(50, 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	got, err := r.ReadRecentBars("TSLA", 20)
	if err != nil {
		t.Fatalf("read recent: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("read %d bars, want 20", len(got))
	}
	// Most recent 20 of closes 200..249 are 230..249, oldest first.
	if got[0].Close != 230 || got[19].Close != 249 {
		t.Fatalf("recent window = [%.0f..%.0f], want [230..249]", got[0].Close, got[19].Close)
	}
}

func TestWriter_InsertReplacesDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")

	w, err := New(WriterConfig{DBPath: path})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	bars := testBars(5, 100)
	if err := w.InsertBars("AAPL", bars); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Re-insert the same timestamps with corrected closes.
	for i := range bars {
		bars[i].Close += 1000
	}
	if err := w.InsertBars("AAPL", bars); err != nil {
		t.Fatalf("reinsert: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	got, err := r.ReadBars("AAPL", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("read %d bars after replace, want 5", len(got))
	}
	if got[0].Close != 1100 {
		t.Fatalf("close = %.0f, want the replaced 1100", got[0].Close)
	}
}

func TestWriter_LastTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")

	w, err := New(WriterConfig{DBPath: path})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	ts, err := w.LastTimestamp("MSFT")
	if err != nil {
		t.Fatalf("last ts: %v", err)
	}
	if ts != 0 {
		t.Fatalf("empty table last ts = %d, want 0", ts)
	}

	bars := testBars(3, 100)
	if err := w.InsertBars("MSFT", bars); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ts, err = w.LastTimestamp("MSFT")
	if err != nil {
		t.Fatalf("last ts: %v", err)
	}
	if want := bars[2].TS.Unix(); ts != want {
		t.Fatalf("last ts = %d, want %d", ts, want)
	}
}

func TestWriter_SaveSnapshotPrunes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")

	w, err := New(WriterConfig{DBPath: path})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	snap := &model.TechnicalSnapshot{Ticker: "AAPL", Price: 150}
	for i := 0; i < 15; i++ {
		if err := w.SaveSnapshot("AAPL", snap); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	var count int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE ticker = ?`, "AAPL").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count > 10 {
		t.Fatalf("snapshot count = %d, want at most 10 after pruning", count)
	}
}

func TestWriter_WALMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")

	w, err := New(WriterConfig{DBPath: path})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	var mode string
	if err := w.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("pragma query: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}
