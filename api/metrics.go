package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	extractions *prometheus.CounterVec
}

// newMetrics registers collectors on a registry owned by one server, so
// several servers can live in one process.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stmtsense_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stmtsense_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stmtsense_extractions_total",
			Help: "Statement extractions by profile and outcome.",
		}, []string{"profile", "outcome"}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.extractions)
	return m
}

var knownRoutes = map[string]bool{
	"/health":    true,
	"/extract":   true,
	"/summarize": true,
	"/insights":  true,
	"/metrics":   true,
}

// routeLabel keeps label cardinality bounded.
func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}
