// Package metrics exposes the engine's Prometheus counters. Telemetry is an
// observable side effect, not a core responsibility (spec §1) — nothing in
// internal/engine depends on these values, they are write-only from the
// engine's perspective.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter the engine increments during its lifecycle.
type Metrics struct {
	GamesCreated       prometheus.Counter
	GamesClosed        *prometheus.CounterVec // label: cause
	ValidityVerdicts   *prometheus.CounterVec // label: verdict
	RatingsApplied     prometheus.Counter
	ReconciliationTies prometheus.Counter
}

// New registers and returns the engine's metric set against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "session_engine",
			Name:      "games_created_total",
			Help:      "Games created via createGame.",
		}),
		GamesClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "session_engine",
			Name:      "games_closed_total",
			Help:      "Games transitioned to CLOSED, labeled by terminal cause.",
		}, []string{"cause"}),
		ValidityVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "session_engine",
			Name:      "validity_verdicts_total",
			Help:      "Validity adjudication verdicts, labeled by verdict kind.",
		}, []string{"verdict"}),
		RatingsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "session_engine",
			Name:      "ratings_applied_total",
			Help:      "Rating updates applied by the rating serializer.",
		}),
		ReconciliationTies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "session_engine",
			Name:      "reconciliation_ties_broken_total",
			Help:      "Most-reported-army-result ties broken by insertion order.",
		}),
	}

	reg.MustRegister(m.GamesCreated, m.GamesClosed, m.ValidityVerdicts, m.RatingsApplied, m.ReconciliationTies)
	return m
}
