package observability

import (
	"fmt"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const metricNamespace = "stagehand"

// Metrics holds the engine collectors.
type Metrics struct {
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	ignored     *prometheus.CounterVec
	pending     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "transitions_total",
				Help:      "Transition actions processed, by group namespace and operation.",
			},
			[]string{"namespace", "operation"},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "conflicts_total",
				Help:      "Stages recorded against a newer confirmed entity.",
			},
			[]string{"namespace"},
		),
		ignored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "ignored_total",
				Help:      "Transition actions that left the output unchanged.",
			},
			[]string{"namespace", "reason"},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      "pending_mutations",
				Help:      "Pending log size after the last processed action, by engine namespace.",
			},
			[]string{"namespace"},
		),
	}

	for _, c := range []prometheus.Collector{m.transitions, m.conflicts, m.ignored, m.pending} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	record := func(ev *domain.TransitionEvent) {
		m.transitions.WithLabelValues(string(ev.Kind.Namespace), ev.Kind.Operation.String()).Inc()
		m.pending.WithLabelValues(string(ev.Scope)).Set(float64(ev.Pending))
	}

	return domain.LifecycleHooks{
		OnStage: func(ev *domain.TransitionEvent) {
			record(ev)
			if ev.Conflict {
				m.conflicts.WithLabelValues(string(ev.Kind.Namespace)).Inc()
			}
		},
		OnCommit: record,
		OnFail:   record,
		OnStash:  record,
		OnIgnored: func(ev *domain.TransitionEvent) {
			m.ignored.WithLabelValues(string(ev.Kind.Namespace), string(ev.Reason)).Inc()
		},
	}
}
