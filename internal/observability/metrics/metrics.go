// Package metrics exposes Prometheus collectors for the CryptoLab transports.
//
// A nil *Metrics is valid and records nothing, so callers can disable metrics
// by passing nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cryptolab"

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	errors          *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	inputRunes      *prometheus.HistogramVec
	classifications *prometheus.CounterVec
}

// New registers the CryptoLab collectors plus the Go runtime and process
// collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests handled, by transport, operation and result code.",
		}, []string{"transport", "operation", "code"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Requests that failed, by transport, operation and error kind.",
		}, []string{"transport", "operation", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of request handlers by transport and operation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"transport", "operation"}),
		inputRunes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_runes",
			Help:      "Length in runes of the text submitted to each operation.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		}, []string{"operation"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classifier outcomes by label.",
		}, []string{"label"}),
	}
	m.registry.MustRegister(
		m.requests, m.errors, m.latency, m.inputRunes, m.classifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(transport, operation, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(transport, operation, code).Inc()
	m.latency.WithLabelValues(transport, operation).Observe(d.Seconds())
}

// ObserveError records a failed request. kind is an errdefs.Kind value, or
// "request" for errors raised by the HTTP router itself.
func (m *Metrics) ObserveError(transport, operation, kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(transport, operation, kind).Inc()
}

// ObserveInput records the size of a request's text.
func (m *Metrics) ObserveInput(operation string, runes int) {
	if m == nil {
		return
	}
	m.inputRunes.WithLabelValues(operation).Observe(float64(runes))
}

// ObserveClassification counts a classifier label.
func (m *Metrics) ObserveClassification(label string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(label).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
