package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-player, per-enemy labels, to
// prevent a metrics-scrape-driven cardinality DoS).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Wall-clock time spent in one simulation tick",
		Buckets: []float64{0.0002, 0.0005, 0.001, 0.002, 0.004, 0.008},
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_player_count",
		Help: "Currently connected players",
	})

	enemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_enemy_count",
		Help: "Currently live enemies across all areas",
	})

	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped by the circular buffer or per-player rate limit",
	})

	// DoS detection metrics - use ONLY bounded label values.
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter, origin check, or capacity",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "invalid", "ws_limit", "capacity"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Debug HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is a path pattern, not the full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total debug HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spectator_ws_connections_active",
		Help: "Currently connected spectator WebSocket clients",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spectator_ws_messages_total",
		Help: "Total snapshot messages sent to spectators",
	})
)

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be loopback unless explicitly overridden
	BasicAuthUser string // optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the metrics/pprof/health/spectator HTTP server.
// CRITICAL: binds to loopback only unless ELUDING_ALLOW_DEBUG_EXTERNAL=true.
func StartDebugServer(cfg ObservabilityConfig, stats SimStats, hub *WebSocketHub) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ELUDING_ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server address forced to loopback; set ELUDING_ALLOW_DEBUG_EXTERNAL=true to override")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := NewRouter(RouterConfig{Stats: stats, Hub: hub})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("debug server starting on %s", cfg.ListenAddr)
		log.Printf("  metrics:   http://%s/metrics", cfg.ListenAddr)
		log.Printf("  pprof:     http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("  spectator: ws://%s/spectate/ws", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records one tick's wall-clock duration.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdatePlayerCount updates the player gauge.
func UpdatePlayerCount(count int) {
	playerCount.Set(float64(count))
}

// UpdateEnemyCount updates the enemy gauge.
func UpdateEnemyCount(count int) {
	enemyCount.Set(float64(count))
}

// UpdateEventLogStats syncs the event log counters against the
// EventLog's own atomic totals (itself monotonic, so Add of the delta
// since the last call keeps the Prometheus counters monotonic too).
var lastEventTotal, lastEventDropped uint64

func UpdateEventLogStats(total, dropped uint64) {
	if total > lastEventTotal {
		eventLogTotal.Add(float64(total - lastEventTotal))
		lastEventTotal = total
	}
	if dropped > lastEventDropped {
		eventLogDropped.Add(float64(dropped - lastEventDropped))
		lastEventDropped = dropped
	}
}

// RecordConnectionRejected increments the rejection counter.
// reason must be one of: "rate_limit", "origin", "invalid", "ws_limit", "capacity".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records debug-HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates the spectator connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the spectator message counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
