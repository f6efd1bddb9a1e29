package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the access-module Prometheus metrics.
type Metrics struct {
	EntriesRegistered  prometheus.Counter
	ExitsRegistered    prometheus.Counter
	TransitionsDenied  *prometheus.CounterVec
	VisitorsCreated    prometheus.Counter
	TransitionDuration *prometheus.HistogramVec
}

// New creates and registers the access metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EntriesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "garita_access_entries_total",
			Help: "Entry events committed to the ledger.",
		}),
		ExitsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "garita_access_exits_total",
			Help: "Exit events committed to the ledger.",
		}),
		TransitionsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "garita_access_denied_total",
			Help: "Denied transitions by stable reason code.",
		}, []string{"reason"}),
		VisitorsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "garita_visitors_created_total",
			Help: "Visitors created by the identity resolver.",
		}),
		TransitionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "garita_access_transition_seconds",
			Help:    "Transition engine latency by direction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// RecordCommit counts one committed transition.
func (m *Metrics) RecordCommit(kind string, seconds float64) {
	if m == nil {
		return
	}
	switch kind {
	case "ingreso":
		m.EntriesRegistered.Inc()
	case "salida":
		m.ExitsRegistered.Inc()
	}
	m.TransitionDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordDenied counts one refused transition by its stable reason code.
func (m *Metrics) RecordDenied(reason string) {
	if m == nil {
		return
	}
	m.TransitionsDenied.WithLabelValues(reason).Inc()
}

// RecordVisitorCreated counts one new visitor record.
func (m *Metrics) RecordVisitorCreated() {
	if m == nil {
		return
	}
	m.VisitorsCreated.Inc()
}
