package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Decode outcomes.
const (
	outcomeOK         = "ok"
	outcomeDeprecated = "deprecated"
	outcomeMalformed  = "malformed"
)

// Metrics counts requests and envelope decodes.
type Metrics struct {
	Requests *prometheus.CounterVec
	Decodes  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the counters and registers them with reg. A nil reg
// uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "biq_http_requests_total",
				Help: "Total requests by route and method.",
			},
			[]string{"route", "method"},
		),
		Decodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "biq_envelope_decodes_total",
				Help: "Envelope decodes by envelope, format and outcome.",
			},
			[]string{"envelope", "format", "outcome"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.Requests, m.Decodes)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests per matched route pattern.
func (m *Metrics) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			m.Requests.WithLabelValues(route(r), r.Method).Inc()
		})
	}
}
