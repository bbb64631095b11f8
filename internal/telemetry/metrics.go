// Package telemetry carries the ambient logging and metrics stack:
// a thin logger for game-lifecycle events, and the Prometheus
// counters/histograms queried for anything that needs to be more
// than grepped. Mirrors the teacher's internal/fraud/metrics.go
// package-level promauto pattern, renamed to the tournament domain.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HandsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tournament_hands_started_total",
		Help: "Total number of hands started, per table",
	}, []string{"table_id"})

	HandsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tournament_hands_completed_total",
		Help: "Total number of hands completed, per table",
	}, []string{"table_id"})

	ActionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tournament_action_latency_seconds",
		Help:    "Time from action submission to applied state",
		Buckets: prometheus.DefBuckets,
	}, []string{"action_type"})

	ActionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tournament_actions_rejected_total",
		Help: "Total number of actions rejected by the rules engine",
	}, []string{"reason"})

	ActiveTables = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tournament_active_tables",
		Help: "Number of tables currently open",
	})

	RegisteredPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tournament_registered_players",
		Help: "Number of players registered in the current tournament",
	})

	EliminationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tournament_eliminations_total",
		Help: "Total number of player eliminations",
	})

	TimeoutsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tournament_timeouts_fired_total",
		Help: "Total number of action-timeout auto-folds, per table",
	}, []string{"table_id"})

	BlindLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tournament_blind_level",
		Help: "Current blind level",
	})
)
