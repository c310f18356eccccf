package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for validations.
type Metrics struct {
	Validations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arrayschema_validations_total",
				Help: "Total number of container validations",
			},
			[]string{"schema", "result", "facet"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arrayschema_validation_duration_seconds",
				Help:    "Duration of container validations",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"schema"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Validations, m.Duration)
	}
	return m
}

// Observe records a finished validation.
func (m *Metrics) Observe(e *ValidationEvent) {
	m.Validations.WithLabelValues(e.Schema, string(e.Result), e.Facet).Inc()
	m.Duration.WithLabelValues(e.Schema).Observe(e.Duration.Seconds())
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnValidate: func(_ context.Context, e *ValidationEvent) {
			m.Observe(e)
		},
	}
}
