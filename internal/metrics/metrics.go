// Package metrics exposes sync and HTTP client counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maya-shopify-sync/internal/domain/model"
)

const namespace = "maya_shopify_sync"

// Recorder is what the sync pipeline reports into. A nil *Metrics is a valid no-op Recorder.
type Recorder interface {
	ObserveItem(outcome model.Outcome)
	ObserveRun(status string, duration time.Duration)
	ObserveRequest(target string, statusCode int)
}

type Metrics struct {
	registry      *prometheus.Registry
	itemsTotal    *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	requestsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.itemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_items_total",
			Help:      "Catalog items processed, by outcome.",
		},
		[]string{"outcome"},
	)
	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs, by final status.",
		},
		[]string{"status"},
	)
	m.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_run_duration_seconds",
			Help:      "Wall time of a sync run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outbound HTTP requests, by target API and status code (0 = transport error).",
		},
		[]string{"target", "code"},
	)

	m.registry.MustRegister(m.itemsTotal, m.runsTotal, m.runDuration, m.requestsTotal)
	return m
}

func (m *Metrics) ObserveItem(outcome model.Outcome) {
	if m == nil {
		return
	}
	m.itemsTotal.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) ObserveRun(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveRequest(target string, statusCode int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(target, strconv.Itoa(statusCode)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
