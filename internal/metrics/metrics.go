// Package metrics exposes dispatch counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dispatch"

// Prometheus implements ports.Metrics with client_golang counters.
type Prometheus struct {
	dispatches         *prometheus.CounterVec
	claimConflicts     prometheus.Counter
	transitions        *prometheus.CounterVec
	sweepItems         *prometheus.CounterVec
	reconciliationGaps prometheus.Counter
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Dispatch attempts by outcome (offered, queued, existing).",
		}, []string{"outcome"}),
		claimConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rider_claim_conflicts_total",
			Help:      "Rider claims lost to a concurrent dispatcher.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignment_transitions_total",
			Help:      "Applied assignment transitions by target status.",
		}, []string{"to"}),
		sweepItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_items_total",
			Help:      "Timed out offers processed by the sweeper, by outcome.",
		}, []string{"outcome"}),
		reconciliationGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_reconciliation_gaps_total",
			Help:      "Order status updates that failed after the assignment was committed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.dispatches, m.claimConflicts, m.transitions, m.sweepItems, m.reconciliationGaps,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) DispatchCompleted(outcome string) {
	m.dispatches.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) ClaimConflict() {
	m.claimConflicts.Inc()
}

func (m *Prometheus) TransitionApplied(to string) {
	m.transitions.WithLabelValues(to).Inc()
}

func (m *Prometheus) SweepItem(outcome string) {
	m.sweepItems.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) ReconciliationGap() {
	m.reconciliationGaps.Inc()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) DispatchCompleted(string) {}
func (Nop) ClaimConflict()           {}
func (Nop) TransitionApplied(string) {}
func (Nop) SweepItem(string)         {}
func (Nop) ReconciliationGap()       {}
