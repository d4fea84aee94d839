// Package metrics exposes Prometheus collectors for play sessions and the
// HTTP API. All label values are bounded; no per-player labels.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/tui-platformer/internal/sim"
)

// Metrics holds every collector on its own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	ticksTotal     prometheus.Counter
	tickDuration   prometheus.Histogram
	gameOvers      *prometheus.CounterVec // cause: health, fell
	events         *prometheus.CounterVec // kind: bounded by sim.EventKind
	runsSaved      prometheus.Counter
	spectators     prometheus.Gauge

	requestLatency *prometheus.HistogramVec // method, endpoint (route pattern)
	requestTotal   *prometheus.CounterVec   // method, endpoint, status
	rejected       *prometheus.CounterVec   // reason: rate_limit, ws_ip_limit, ssh_rate_limit
}

// New creates the collectors and registers them with Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "platformer_sessions_active",
			Help: "Currently running play sessions",
		}),
		sessionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "platformer_sessions_total",
			Help: "Play sessions started",
		}),
		ticksTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "platformer_ticks_total",
			Help: "Simulation ticks executed",
		}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "platformer_tick_duration_seconds",
			Help:    "Time spent in one simulation tick",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		gameOvers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "platformer_game_overs_total",
			Help: "Sessions ended, by cause",
		}, []string{"cause"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "platformer_events_total",
			Help: "Simulation events, by kind",
		}, []string{"kind"}),
		runsSaved: f.NewCounter(prometheus.CounterOpts{
			Name: "platformer_runs_saved_total",
			Help: "Finished runs written to storage",
		}),
		spectators: f.NewGauge(prometheus.GaugeOpts{
			Name: "platformer_spectators_active",
			Help: "Connected spectator streams",
		}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		requestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "connection_rejected_total",
			Help: "Connections rejected by a limiter",
		}, []string{"reason"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionStarted records a new running session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

// SessionEnded records a session leaving the running set.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// RecordTick records one tick and the events it produced.
func (m *Metrics) RecordTick(d time.Duration, events []sim.Event) {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
	m.tickDuration.Observe(d.Seconds())
	for _, ev := range events {
		m.events.WithLabelValues(string(ev.Kind)).Inc()
		if ev.Kind == sim.EventGameOver {
			m.gameOvers.WithLabelValues(ev.Cause).Inc()
		}
	}
}

// RunSaved counts a persisted run.
func (m *Metrics) RunSaved() {
	if m == nil {
		return
	}
	m.runsSaved.Inc()
}

// SetSpectators updates the spectator gauge.
func (m *Metrics) SetSpectators(n int) {
	if m == nil {
		return
	}
	m.spectators.Set(float64(n))
}

// RecordRequest records HTTP request metrics. endpoint must be a route pattern.
func (m *Metrics) RecordRequest(method, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(method, endpoint).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// RecordRejected increments the rejection counter for a bounded reason.
func (m *Metrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
