package observability

import (
	"context"

	"github.com/aretw0/recipient/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recipient"

// Metrics holds the workflow collectors.
type Metrics struct {
	Transitions  *prometheus.CounterVec
	Alerts       *prometheus.CounterVec
	Calls        *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
	InFlight     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "phase_transitions_total",
				Help:      "Total number of workflow phase transitions.",
			},
			[]string{"from", "to"},
		),
		Alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_total",
				Help:      "Total number of alerts raised.",
			},
			[]string{"alert"},
		),
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collaborator_calls_total",
				Help:      "Total number of fetch and update round-trips by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "collaborator_call_duration_seconds",
				Help:      "Duration of fetch and update round-trips.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collaborator_calls_in_flight",
				Help:      "Number of fetch and update calls awaiting a callback.",
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.Alerts, m.Calls, m.CallDuration, m.InFlight)
	}
	return m
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseChange: func(_ context.Context, e *domain.PhaseEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnAlert: func(_ context.Context, e *domain.AlertEvent) {
			m.Alerts.WithLabelValues(string(e.Alert)).Inc()
		},
		OnCall: func(_ context.Context, e *domain.CallEvent) {
			m.InFlight.WithLabelValues(string(e.Operation)).Inc()
		},
		OnReturn: func(_ context.Context, e *domain.CallEvent) {
			op := string(e.Operation)
			outcome := "success"
			if e.IsError {
				outcome = "error"
			}
			m.InFlight.WithLabelValues(op).Dec()
			m.Calls.WithLabelValues(op, outcome).Inc()
			m.CallDuration.WithLabelValues(op).Observe(e.Duration.Seconds())
		},
	}
}
