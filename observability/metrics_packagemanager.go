package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PackageManagerOperationsTotal counts install/uninstall/update/restore
	// operations by outcome.
	PackageManagerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gonuget_packagemanager_operations_total",
			Help: "Total number of package manager operations by kind and outcome",
		},
		[]string{"operation", "outcome"}, // operation: install/uninstall/update/restore; outcome: success/failure
	)

	// ResolveDurationSeconds tracks dependency resolution latency.
	ResolveDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gonuget_resolve_duration_seconds",
			Help:    "Dependency resolution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"outcome"},
	)

	// PlanActionsTotal counts planned install/uninstall actions by kind.
	PlanActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gonuget_plan_actions_total",
			Help: "Total number of actions emitted by the planner, by action kind",
		},
		[]string{"kind"}, // install, uninstall
	)

	// ApplyActionsTotal counts actions the applier executed, by kind and
	// outcome (success, failure, cancelled).
	ApplyActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gonuget_apply_actions_total",
			Help: "Total number of actions executed by the applier, by action kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)
