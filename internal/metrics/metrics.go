// Package metrics exposes prometheus instrumentation for the storage core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Routing metrics
	EventsRoutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_router_events_total",
			Help: "Total number of events routed, by adapter and outcome",
		},
		[]string{"adapter", "outcome"},
	)

	DualWriteEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_router_dualwrite_enqueued_total",
			Help: "Total number of event batches accepted by the dual-write queue",
		},
	)

	// Storage actor metrics
	ActorRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitepulse_actor_request_duration_seconds",
			Help:    "Duration of storage actor RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ActorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_actor_errors_total",
			Help: "Total number of storage actor RPC errors",
		},
		[]string{"operation"},
	)

	// Migration metrics
	MigrationBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_migration_batches_total",
			Help: "Total number of migration batches written, by outcome",
		},
		[]string{"outcome"},
	)

	MigrationEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_migration_events_total",
			Help: "Total number of events migrated to storage actors",
		},
	)

	MigrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitepulse_migration_site_duration_seconds",
			Help:    "Duration of a single site migration in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)

	// Validation metrics
	ValidationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_validation_errors_total",
			Help: "Total number of validation errors reported",
		},
	)

	ValidationWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_validation_warnings_total",
			Help: "Total number of validation warnings reported",
		},
	)
)
