// Package analyzer is the stateful layer over the pure calculators: it
// keeps a rolling bar window per ticker, caches computed snapshots for a
// TTL, and carries the service instrumentation. Callers feed bars in and
// ask for snapshots; everything below this package is pure.
package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"techpulse/internal/barwindow"
	"techpulse/internal/indicator"
	"techpulse/internal/metrics"
	"techpulse/internal/model"
)

// ErrUnknownTicker is returned when a snapshot is requested for a ticker
// that has never received bars.
var ErrUnknownTicker = errors.New("analyzer: unknown ticker")

// Options configures an Analyzer. Zero-value fields fall back to defaults.
type Options struct {
	Params     indicator.Params
	WindowSize int           // rolling window capacity per ticker
	TTL        time.Duration // snapshot cache lifetime
	Clock      func() time.Time
	Metrics    *metrics.Metrics // nil disables instrumentation
	Logger     *slog.Logger
}

type cacheEntry struct {
	snap     *model.TechnicalSnapshot
	computed time.Time
}

// Analyzer serves cached technical snapshots over per-ticker bar windows.
// Safe for concurrent use.
type Analyzer struct {
	params indicator.Params
	winCap int
	ttl    time.Duration
	clock  func() time.Time
	prom   *metrics.Metrics
	log    *slog.Logger

	mu      sync.RWMutex
	windows map[string]*barwindow.Window
	cache   map[string]cacheEntry
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.WindowSize <= 0 {
		opts.WindowSize = 256
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Params == (indicator.Params{}) {
		opts.Params = indicator.DefaultParams()
	}
	return &Analyzer{
		params:  opts.Params,
		winCap:  opts.WindowSize,
		ttl:     opts.TTL,
		clock:   opts.Clock,
		prom:    opts.Metrics,
		log:     opts.Logger,
		windows: make(map[string]*barwindow.Window),
		cache:   make(map[string]cacheEntry),
	}
}

// AddBars appends bars to the ticker's rolling window and invalidates its
// cached snapshot.
func (a *Analyzer) AddBars(ticker string, bars ...model.Bar) {
	if len(bars) == 0 {
		return
	}
	a.mu.Lock()
	w, ok := a.windows[ticker]
	if !ok {
		w = barwindow.New(a.winCap)
		a.windows[ticker] = w
	}
	before := w.Evicted()
	for _, b := range bars {
		w.Append(b)
	}
	if a.prom != nil {
		a.prom.WindowEvictions.Add(float64(w.Evicted() - before))
	}
	delete(a.cache, ticker)
	a.mu.Unlock()
}

// Tickers returns the tickers with at least one bar.
func (a *Analyzer) Tickers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.windows))
	for t := range a.windows {
		out = append(out, t)
	}
	return out
}

// Invalidate drops the cached snapshot for a ticker.
func (a *Analyzer) Invalidate(ticker string) {
	a.mu.Lock()
	delete(a.cache, ticker)
	a.mu.Unlock()
}

// Snapshot returns the ticker's technical snapshot, serving a cached copy
// while it is younger than the TTL. The current price is the latest bar's
// close.
func (a *Analyzer) Snapshot(ticker string) (*model.TechnicalSnapshot, error) {
	now := a.clock()

	a.mu.RLock()
	w, ok := a.windows[ticker]
	if ok {
		if e, hit := a.cache[ticker]; hit && now.Sub(e.computed) < a.ttl {
			a.mu.RUnlock()
			if a.prom != nil {
				a.prom.CacheHits.Inc()
			}
			return e.snap, nil
		}
	}
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	if a.prom != nil {
		a.prom.CacheMisses.Inc()
	}

	bars := w.Snapshot()
	last, _ := w.Last()

	start := time.Now()
	snap, err := indicator.ComputeSnapshotWith(bars, last.Close, a.params)
	if err != nil {
		return nil, err
	}
	snap.Ticker = ticker
	a.observe(ticker, snap, time.Since(start))

	a.mu.Lock()
	a.cache[ticker] = cacheEntry{snap: snap, computed: now}
	a.mu.Unlock()
	return snap, nil
}

// observe records instrumentation and logs the computation.
func (a *Analyzer) observe(ticker string, snap *model.TechnicalSnapshot, dur time.Duration) {
	if a.prom != nil {
		a.prom.SnapshotsTotal.Inc()
		a.prom.SnapshotComputeDur.Observe(dur.Seconds())
		for _, c := range absentComponents(snap) {
			a.prom.ComponentAbsent.WithLabelValues(c).Inc()
		}
		if snap.Patterns != nil {
			for _, p := range snap.Patterns.Patterns {
				a.prom.PatternsDetected.WithLabelValues(p.Name).Inc()
			}
		}
	}
	a.log.Debug("snapshot computed",
		"ticker", ticker,
		"trend", snap.Trend,
		"duration", dur,
	)
}

// absentComponents names the snapshot fields left nil for insufficient
// data.
func absentComponents(s *model.TechnicalSnapshot) []string {
	var out []string
	if s.SMA200 == nil {
		out = append(out, "sma200")
	}
	if s.RSI == nil {
		out = append(out, "rsi")
	}
	if s.MFI == nil {
		out = append(out, "mfi")
	}
	if s.MACD == nil {
		out = append(out, "macd")
	}
	if s.Stochastic == nil {
		out = append(out, "stochastic")
	}
	if s.Bollinger == nil {
		out = append(out, "bollinger")
	}
	if s.ATR == nil {
		out = append(out, "atr")
	}
	if s.ADX == nil {
		out = append(out, "adx")
	}
	if s.CMF == nil {
		out = append(out, "cmf")
	}
	if s.Ichimoku == nil {
		out = append(out, "ichimoku")
	}
	if s.VolumeProfile == nil {
		out = append(out, "volume_profile")
	}
	return out
}
