// Package metrics owns the prometheus registry for a process. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rektwatch"

// Ingest outcomes for a post
const (
	OutcomeStored    = "stored"
	OutcomeDuplicate = "duplicate"
	OutcomeUnmatched = "unmatched"
	OutcomeFailed    = "failed"
)

// Metrics is the set of collectors on one registry
type Metrics struct {
	reg *prometheus.Registry

	posts            *prometheus.CounterVec
	relayEvents      *prometheus.CounterVec
	relaysConnected  prometheus.Gauge
	collectorRunning prometheus.Gauge
	httpDuration     *prometheus.HistogramVec
	buildInfo        *prometheus.GaugeVec
}

// New builds a registry with the process and Go collectors plus ours
func New(version, commit string) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_total",
			Help:      "Posts seen by the ingest pipeline by path (backfill|live) and outcome",
		}, []string{"path", "outcome"}),
		relayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_events_total",
			Help:      "EVENT messages received per relay, before cross-relay dedup",
		}, []string{"relay"}),
		relaysConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relays_connected",
			Help:      "Relays with an open websocket",
		}),
		collectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collector_running",
			Help:      "1 while the collector is started",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		}, []string{"version", "commit"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.posts, m.relayEvents, m.relaysConnected, m.collectorRunning, m.httpDuration, m.buildInfo,
	)
	m.buildInfo.WithLabelValues(version, commit).Set(1)
	return m
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Post counts one post on path with outcome
func (m *Metrics) Post(path, outcome string) {
	if m == nil {
		return
	}
	m.posts.WithLabelValues(path, outcome).Inc()
}

// RelayEvent counts one EVENT from relay
func (m *Metrics) RelayEvent(relay string) {
	if m == nil {
		return
	}
	m.relayEvents.WithLabelValues(relay).Inc()
}

// RelayConnected moves the connected gauge by +1 or -1
func (m *Metrics) RelayConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.relaysConnected.Inc()
	} else {
		m.relaysConnected.Dec()
	}
}

// CollectorRunning sets the running gauge
func (m *Metrics) CollectorRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.collectorRunning.Set(1)
	} else {
		m.collectorRunning.Set(0)
	}
}

// Handler serves the registry in the exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware observes request duration labelled with the chi route
// pattern, so path parameters do not explode cardinality
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
	})
}
