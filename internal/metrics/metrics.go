// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "watchlist"

// Metrics contains the service's collectors and the private registry they live in
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	AuthFailures *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the service metrics.
// A fresh registry per call keeps tests and multiple app instances independent.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of rejected logins and bearer tokens by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(m.HTTPRequests, m.HTTPDuration, m.AuthFailures)
	return m
}

// Registry returns the registry backing the /metrics endpoint
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest counts a finished HTTP request and observes its duration
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthFailure counts a rejected authentication attempt
func (m *Metrics) RecordAuthFailure(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}
