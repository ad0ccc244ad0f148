// cmd/snapshot loads recent bars from SQLite and prints a full technical
// snapshot per ticker: trend, momentum, volatility, volume, price structure,
// candlestick patterns, Heikin-Ashi and Ichimoku.
//
// Usage:
//
//	go run ./cmd/snapshot --ticker=AAPL,MSFT --db=data/bars.db
//	go run ./cmd/snapshot --ticker=AAPL --csv=data/aapl_1m.csv
//	go run ./cmd/snapshot --serve            # recompute on an interval, with /metrics
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"techpulse/config"
	"techpulse/internal/analyzer"
	"techpulse/internal/indicator"
	"techpulse/internal/logger"
	"techpulse/internal/metrics"
	"techpulse/internal/model"
	"techpulse/internal/store/csvfile"
	sqlitestore "techpulse/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	_ = godotenv.Load()
	cfg := config.Load()

	// Flags override environment.
	tickerStr := flag.String("ticker", cfg.Tickers, "Comma-separated tickers to analyze")
	dbPath := flag.String("db", cfg.SQLitePath, "Path to SQLite database")
	csvPath := flag.String("csv", "", "Read bars from a CSV file instead of SQLite (single ticker)")
	limit := flag.Int("limit", cfg.WindowSize, "Max bars to load per ticker")
	save := flag.Bool("save", false, "Archive computed snapshots back into SQLite")
	serve := flag.Bool("serve", false, "Keep running: recompute on an interval and expose /metrics")
	flag.Parse()

	logger.Init("snapshot", logger.ParseLevel(cfg.LogLevel))

	cfg.Tickers = *tickerStr
	tickers := cfg.ParseTickers()

	params, err := cfg.Params()
	if err != nil {
		log.Fatalf("[snapshot] params load failed: %v", err)
	}

	if *csvPath != "" {
		if len(tickers) == 0 {
			log.Fatal("[snapshot] --csv needs a ticker (flag --ticker or env TICKERS)")
		}
		if err := runCSV(*csvPath, tickers[0], params, cfg.WindowSize); err != nil {
			log.Fatalf("[snapshot] %v", err)
		}
		return
	}

	reader, err := sqlitestore.NewReader(*dbPath)
	if err != nil {
		log.Fatalf("[snapshot] sqlite open failed: %v", err)
	}
	defer reader.Close()

	// No explicit tickers: analyze everything in the store.
	if len(tickers) == 0 {
		tickers, err = reader.Tickers()
		if err != nil {
			log.Fatalf("[snapshot] ticker discovery failed: %v", err)
		}
		if len(tickers) == 0 {
			log.Fatal("[snapshot] no tickers specified and the store is empty")
		}
	}

	var writer *sqlitestore.Writer
	if *save {
		writer, err = sqlitestore.New(sqlitestore.WriterConfig{DBPath: *dbPath})
		if err != nil {
			log.Fatalf("[snapshot] sqlite writer open failed: %v", err)
		}
		defer writer.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var prom *metrics.Metrics
	var health *metrics.HealthStatus
	if *serve && cfg.MetricsAddr != "" {
		prom = metrics.NewMetrics()
		health = metrics.NewHealthStatus()
		health.StartLivenessChecker(ctx, reader.DB(), 15*time.Second)
		srv := metrics.NewServer(cfg.MetricsAddr, health)
		srv.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			srv.Stop(shutdownCtx)
		}()
	}

	an := analyzer.New(analyzer.Options{
		Params:     params,
		WindowSize: cfg.WindowSize,
		TTL:        cfg.SnapshotTTL,
		Metrics:    prom,
	})

	lastTS := make(map[string]int64)
	runOnce(an, reader, writer, prom, tickers, *limit, lastTS)
	if health != nil {
		health.SetLastSnapshotAt(time.Now())
	}
	if !*serve {
		return
	}

	ticker := time.NewTicker(cfg.SnapshotTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[snapshot] shutting down")
			return
		case <-ticker.C:
			runOnce(an, reader, writer, prom, tickers, *limit, lastTS)
			if health != nil {
				health.SetLastSnapshotAt(time.Now())
			}
		}
	}
}

// runOnce loads bars the analyzer has not seen yet, then recomputes and
// prints one snapshot per ticker.
func runOnce(an *analyzer.Analyzer, reader *sqlitestore.Reader, writer *sqlitestore.Writer, prom *metrics.Metrics, tickers []string, limit int, lastTS map[string]int64) {
	for _, tk := range tickers {
		var bars []model.Bar
		var err error
		readStart := time.Now()
		if seen, ok := lastTS[tk]; ok {
			bars, err = reader.ReadBars(tk, seen)
		} else {
			bars, err = reader.ReadRecentBars(tk, limit)
		}
		if prom != nil {
			prom.SQLiteReadDur.Observe(time.Since(readStart).Seconds())
		}
		if err != nil {
			log.Printf("[snapshot] %s: read failed: %v", tk, err)
			continue
		}
		if prom != nil {
			prom.BarsLoaded.Add(float64(len(bars)))
		}
		if len(bars) > 0 {
			an.AddBars(tk, bars...)
			lastTS[tk] = bars[len(bars)-1].TS.Unix()
		} else if _, ok := lastTS[tk]; !ok {
			log.Printf("[snapshot] %s: no bars in store, skipping", tk)
			continue
		}

		snap, err := an.Snapshot(tk)
		if err != nil {
			log.Printf("[snapshot] %s: compute failed: %v", tk, err)
			continue
		}

		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			log.Printf("[snapshot] %s: encode failed: %v", tk, err)
			continue
		}
		os.Stdout.Write(append(out, '\n'))

		if writer != nil {
			if err := writer.SaveSnapshot(tk, snap); err != nil {
				log.Printf("[snapshot] %s: archive failed: %v", tk, err)
			}
		}
	}
}

// runCSV computes and prints a single snapshot from a CSV bar file.
func runCSV(path, ticker string, params indicator.Params, windowSize int) error {
	bars, err := csvfile.ReadBars(path)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("%s: no bars in file", path)
	}

	an := analyzer.New(analyzer.Options{Params: params, WindowSize: windowSize})
	an.AddBars(ticker, bars...)

	snap, err := an.Snapshot(ticker)
	if err != nil {
		return fmt.Errorf("%s: compute failed: %w", ticker, err)
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode failed: %w", ticker, err)
	}
	os.Stdout.Write(append(out, '\n'))
	return nil
}
