package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SimStats is the read-only subset of simulation state the debug
// surface exposes; satisfied by *sim.Simulation.
type SimStats interface {
	PlayerCount() int
	EnemyCount() int
	TickNumber() uint64
}

// RouterConfig contains the dependencies the debug/spectator router
// needs. Unlike a player-facing API this has no session manager, no
// CORS allowlist (any origin is allowed), and no admin auth — there is
// no authenticated surface in this server at all.
type RouterConfig struct {
	// Stats is the simulation's read-only counters, used by /stats.
	// May be nil in tests that only exercise /health.
	Stats SimStats

	// Hub serves the optional read-only spectator WebSocket endpoint.
	// May be nil to disable /spectate/ws entirely.
	Hub *WebSocketHub

	// RateLimiter is an optional pre-configured rate limiter. If nil,
	// a new one is created from DefaultRateLimitConfig.
	RateLimiter *IPRateLimiter

	// DisableLogging turns off the request logger middleware, useful
	// for benchmarks.
	DisableLogging bool
}

// NewRouter builds the debug/spectator HTTP mux. It has no side
// effects of its own (no goroutines, no listeners) beyond whatever
// RateLimiter it constructs, matching the reference server's pure
// router-factory convention.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)
	}
	r.Use(rateLimiter.Middleware)

	// This mux is bound to loopback by default (see
	// ObservabilityConfig); CORS is permissive because there is no
	// session or credential a cross-origin request could steal.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	h := &routerHandlers{stats: cfg.Stats}

	r.Get("/health", h.handleHealth)
	r.Get("/stats", h.handleStats)

	if cfg.Hub != nil {
		r.Get("/spectate/ws", cfg.Hub.HandleWebSocket)
	}

	return r
}

type routerHandlers struct {
	stats SimStats
}
