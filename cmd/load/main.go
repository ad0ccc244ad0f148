// cmd/load ingests OHLCV bars from a CSV file into the SQLite bar archive,
// so exported histories can be served to the snapshot CLI.
//
// Usage:
//
//	go run ./cmd/load --ticker=AAPL --csv=data/aapl_1m.csv --db=data/bars.db
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"techpulse/config"
	"techpulse/internal/logger"
	"techpulse/internal/model"
	"techpulse/internal/store/csvfile"
	sqlitestore "techpulse/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	_ = godotenv.Load()
	cfg := config.Load()

	ticker := flag.String("ticker", "", "Ticker symbol the bars belong to")
	csvPath := flag.String("csv", "", "Path to the CSV file (ts,open,high,low,close,volume)")
	dbPath := flag.String("db", cfg.SQLitePath, "Path to SQLite database")
	skipOld := flag.Bool("skip-old", true, "Skip rows at or before the newest stored bar")
	flag.Parse()

	logger.Init("load", logger.ParseLevel(cfg.LogLevel))

	if *ticker == "" || *csvPath == "" {
		log.Fatal("[load] --ticker and --csv are required")
	}

	bars, err := csvfile.ReadBars(*csvPath)
	if err != nil {
		log.Fatalf("[load] read failed: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("[load] %s: no bars in file", *csvPath)
	}

	writer, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: *dbPath})
	if err != nil {
		log.Fatalf("[load] sqlite open failed: %v", err)
	}
	defer writer.Close()

	if *skipOld {
		last, err := writer.LastTimestamp(*ticker)
		if err != nil {
			log.Fatalf("[load] last timestamp lookup failed: %v", err)
		}
		var fresh []model.Bar
		for _, b := range bars {
			if b.TS.Unix() > last {
				fresh = append(fresh, b)
			}
		}
		if skipped := len(bars) - len(fresh); skipped > 0 {
			log.Printf("[load] %s: skipping %d already-stored bars", *ticker, skipped)
		}
		bars = fresh
	}

	if len(bars) == 0 {
		log.Printf("[load] %s: nothing new to insert", *ticker)
		return
	}

	if err := writer.InsertBars(*ticker, bars); err != nil {
		log.Fatalf("[load] insert failed: %v", err)
	}
	log.Printf("[load] %s: inserted %d bars from %s into %s", *ticker, len(bars), *csvPath, *dbPath)
}
