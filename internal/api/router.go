// Package api serves the HTTP side of the platformer server: health,
// Prometheus metrics, live session listings, the runs board and a
// websocket feed for spectators.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/tui-platformer/internal/metrics"
	"github.com/vovakirdan/tui-platformer/internal/ratelimit"
	"github.com/vovakirdan/tui-platformer/internal/spectate"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// RunStore is the subset of storage the API reads.
type RunStore interface {
	TopRuns(mapID string, limit int) ([]storage.Run, error)
	RecentRuns(limit int) ([]storage.Run, error)
	GetMapStats(mapID string) (*storage.MapStats, error)
	BestRun(mapID string) (*storage.Run, error)
}

// MapLister lists the playable map ids.
type MapLister interface {
	ListIDs() ([]string, error)
}

// RouterConfig contains all dependencies needed to construct the router.
// Nil optional fields disable the routes that need them.
type RouterConfig struct {
	Hub     *spectate.Hub // required
	Runs    RunStore      // optional
	Maps    MapLister     // optional
	Metrics *metrics.Metrics
	Logger  *log.Logger

	// RateLimiter is an optional pre-configured limiter. If nil, one is
	// created from RateLimitConfig or ratelimit.DefaultConfig.
	RateLimiter     *ratelimit.IPRateLimiter
	RateLimitConfig *ratelimit.Config

	// MaxSpectatorsPerIP caps websocket connections per client. Zero uses the default.
	MaxSpectatorsPerIP int
}

// DefaultMaxSpectatorsPerIP is used when RouterConfig leaves it unset.
const DefaultMaxSpectatorsPerIP = 4

type handlers struct {
	hub     *spectate.Hub
	runs    RunStore
	maps    MapLister
	metrics *metrics.Metrics
	logger  *log.Logger
	conns   *ratelimit.ConnLimiter
	limiter *ratelimit.IPRateLimiter
}

// NewRouter builds the router. It starts no goroutines beyond the rate
// limiter cleanup loop of a limiter it creates itself.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		rlCfg := ratelimit.DefaultConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		limiter = ratelimit.NewIPRateLimiter(rlCfg)
	}
	if cfg.Metrics != nil && limiter.OnReject == nil {
		limiter.OnReject = func(string) { cfg.Metrics.RecordRejected("rate_limit") }
	}

	maxPerIP := cfg.MaxSpectatorsPerIP
	if maxPerIP <= 0 {
		maxPerIP = DefaultMaxSpectatorsPerIP
	}

	h := &handlers{
		hub:     cfg.Hub,
		runs:    cfg.Runs,
		maps:    cfg.Maps,
		metrics: cfg.Metrics,
		logger:  logger,
		conns:   ratelimit.NewConnLimiter(maxPerIP),
		limiter: limiter,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)
	r.Use(limiter.Middleware)

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/sessions", h.handleSessions)
		r.Get("/sessions/{id}", h.handleSession)
		r.Get("/runs", h.handleRuns)
		r.Get("/maps", h.handleMaps)
		r.Get("/maps/{id}/stats", h.handleMapStats)
	})

	r.Get("/ws/spectate/{id}", h.handleSpectate)

	return r
}

// observe logs each request and records metrics by route pattern.
func (h *handlers) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		h.metrics.RecordRequest(r.Method, endpoint, status, elapsed)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
