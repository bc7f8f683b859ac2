package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvocationsTotal counts external command executions by outcome.
	InvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowdeck_invocations_total",
			Help: "Total number of external command invocations.",
		},
		[]string{"operation", "status"},
	)

	// CorrectionsTotal counts self-heal correction dispatches per phase.
	CorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowdeck_corrections_total",
			Help: "Total number of self-heal correction attempts.",
		},
		[]string{"phase"},
	)

	// SessionsTotal counts sessions reaching a terminal state.
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowdeck_sessions_total",
			Help: "Total number of workflow sessions by terminal status.",
		},
		[]string{"status"},
	)

	// ActiveSessions tracks sessions currently holding a work item.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowdeck_active_sessions",
			Help: "Number of currently active workflow sessions.",
		},
	)
)
