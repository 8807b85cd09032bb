package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ObjectsProcessed counts objects reaching a terminal status.
	ObjectsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_objects_processed_total",
			Help: "Total number of objects that reached a terminal status",
		},
		[]string{"kind", "status"},
	)

	// ConversionsTotal counts conversions per tool.
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_conversions_total",
			Help: "Total number of conversions per tool",
		},
		[]string{"tool"},
	)

	// DeployAttemptsTotal counts deployment attempts per kind and outcome.
	DeployAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_deploy_attempts_total",
			Help: "Total number of deployment attempts",
		},
		[]string{"kind", "outcome"},
	)

	// ClassifiedErrorsTotal counts deployment failures by classified kind.
	ClassifiedErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_classified_errors_total",
			Help: "Total number of deployment errors by classified kind",
		},
		[]string{"error_kind"},
	)

	// WebSearchesTotal counts web-search collaborator invocations.
	WebSearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "migrator_web_searches_total",
			Help: "Total number of web search queries issued",
		},
	)

	// RepairDuration tracks time spent in the repair loop per object.
	RepairDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "migrator_repair_duration_seconds",
			Help:    "Time spent deploying and repairing one object",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"kind"},
	)
)
