package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors for backend calls and view state transitions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	BackendRequests        *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	ViewTransitions        *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BackendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditor_backend_requests_total",
				Help: "Total number of audit backend requests",
			},
			[]string{"op", "outcome"}, // outcome: ok/not_found/http_error/transport_error/decode_error
		),
		BackendRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auditor_backend_request_duration_seconds",
				Help:    "Audit backend request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"op"},
		),
		ViewTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditor_view_transitions_total",
				Help: "Total number of view state transitions",
			},
			[]string{"view", "state"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.BackendRequests, m.BackendRequestDuration, m.ViewTransitions)
	}
	return m
}

func (m *Metrics) ObserveRequest(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(op, outcome).Inc()
	m.BackendRequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) ObserveTransition(view, state string) {
	if m == nil {
		return
	}
	m.ViewTransitions.WithLabelValues(view, state).Inc()
}
