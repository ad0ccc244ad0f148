package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SQLITE_PATH", "METRICS_ADDR", "TICKERS", "WINDOW_SIZE", "SNAPSHOT_TTL", "PARAMS_FILE", "LOG_LEVEL"} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.SQLitePath != "data/bars.db" {
		t.Errorf("SQLitePath = %q, want data/bars.db", cfg.SQLitePath)
	}
	if cfg.WindowSize != 256 {
		t.Errorf("WindowSize = %d, want 256", cfg.WindowSize)
	}
	if cfg.SnapshotTTL != 5*time.Second {
		t.Errorf("SnapshotTTL = %v, want 5s", cfg.SnapshotTTL)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want disabled by default", cfg.MetricsAddr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WINDOW_SIZE", "512")
	t.Setenv("SNAPSHOT_TTL", "30s")
	t.Setenv("TICKERS", "AAPL, MSFT,, TSLA")

	cfg := Load()
	if cfg.WindowSize != 512 {
		t.Errorf("WindowSize = %d, want 512", cfg.WindowSize)
	}
	if cfg.SnapshotTTL != 30*time.Second {
		t.Errorf("SnapshotTTL = %v, want 30s", cfg.SnapshotTTL)
	}
	got := cfg.ParseTickers()
	want := []string{"AAPL", "MSFT", "TSLA"}
	if len(got) != len(want) {
		t.Fatalf("tickers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tickers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WINDOW_SIZE", "-3")
	t.Setenv("SNAPSHOT_TTL", "soon")

	cfg := Load()
	if cfg.WindowSize != 256 {
		t.Errorf("WindowSize = %d, want fallback 256", cfg.WindowSize)
	}
	if cfg.SnapshotTTL != 5*time.Second {
		t.Errorf("SnapshotTTL = %v, want fallback 5s", cfg.SnapshotTTL)
	}
}

func TestParams_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("rsi_period: 7\nbollinger_k: 2.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	cfg.ParamsFile = path
	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.RSIPeriod != 7 {
		t.Errorf("RSIPeriod = %d, want the YAML override 7", p.RSIPeriod)
	}
	if p.BollingerK != 2.5 {
		t.Errorf("BollingerK = %v, want 2.5", p.BollingerK)
	}
	// Untouched fields keep their defaults.
	if p.MACDSlow != 26 {
		t.Errorf("MACDSlow = %d, want the default 26", p.MACDSlow)
	}
}

func TestParams_MissingFileErrors(t *testing.T) {
	cfg := Load()
	cfg.ParamsFile = filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := cfg.Params(); err == nil {
		t.Error("expected an error on a missing params file")
	}
}
