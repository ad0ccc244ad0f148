package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the snapshot engine.
type Metrics struct {
	SnapshotsTotal     prometheus.Counter
	SnapshotComputeDur prometheus.Histogram
	BarsLoaded         prometheus.Counter
	SQLiteReadDur      prometheus.Histogram

	// Per-component absence: a snapshot field left nil because the
	// series was too short for its window.
	ComponentAbsent *prometheus.CounterVec // labels: component

	// Candlestick pattern hits by name.
	PatternsDetected *prometheus.CounterVec // labels: pattern

	// Analyzer cache behavior.
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Rolling window eviction (bars dropped off the tail).
	WindowEvictions prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "techpulse_snapshots_total",
			Help: "Total technical snapshots computed",
		}),
		SnapshotComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "techpulse_snapshot_compute_duration_seconds",
			Help:    "Full snapshot aggregation latency",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		BarsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "techpulse_bars_loaded_total",
			Help: "Total bars loaded from storage",
		}),
		SQLiteReadDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "techpulse_sqlite_read_duration_seconds",
			Help:    "SQLite bar query latency",
			Buckets: prometheus.DefBuckets,
		}),
		ComponentAbsent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techpulse_component_absent_total",
			Help: "Snapshot components absent due to insufficient data",
		}, []string{"component"}),
		PatternsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techpulse_patterns_detected_total",
			Help: "Candlestick pattern matches by pattern name",
		}, []string{"pattern"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "techpulse_cache_hits_total",
			Help: "Snapshot cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "techpulse_cache_misses_total",
			Help: "Snapshot cache misses (fresh computation)",
		}),
		WindowEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "techpulse_window_evictions_total",
			Help: "Bars evicted off rolling window tails",
		}),
	}

	prometheus.MustRegister(
		m.SnapshotsTotal,
		m.SnapshotComputeDur,
		m.BarsLoaded,
		m.SQLiteReadDur,
		m.ComponentAbsent,
		m.PatternsDetected,
		m.CacheHits,
		m.CacheMisses,
		m.WindowEvictions,
	)

	return m
}

// HealthStatus represents the service health.
type HealthStatus struct {
	mu sync.RWMutex

	SQLiteOK       bool      `json:"sqlite_ok"`
	LastSnapshotAt time.Time `json:"last_snapshot_at"`

	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetLastSnapshotAt(t time.Time) {
	h.mu.Lock()
	h.LastSnapshotAt = t
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, db *sql.DB, interval time.Duration) {
	go func() {
		if db != nil {
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			h.CheckSQLite(probeCtx, db)
			cancel()
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if db != nil {
					h.CheckSQLite(probeCtx, db)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	snapshotAge := ""
	if !h.LastSnapshotAt.IsZero() {
		snapshotAge = time.Since(h.LastSnapshotAt).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastSnapshotAt  string  `json:"last_snapshot_at"`
		SnapshotAge     string  `json:"snapshot_age"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastSnapshotAt:  h.LastSnapshotAt.Format(time.RFC3339),
		SnapshotAge:     snapshotAge,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
