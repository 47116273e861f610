// Package metrics provides Prometheus collectors for diagnosis and restoration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Diagnoses counts registry lookups.
	// Labels: rule (matching rule name, or "none")
	Diagnoses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recoveryd",
			Subsystem: "diagnose",
			Name:      "lookups_total",
			Help:      "Total number of repair rule lookups by matching rule",
		},
		[]string{"rule"},
	)

	// RestoreRuns counts restoration engine runs.
	// Labels: result (success, empty, error)
	RestoreRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recoveryd",
			Subsystem: "restore",
			Name:      "runs_total",
			Help:      "Total number of restoration engine runs by result",
		},
		[]string{"result"},
	)

	// FilesCopied counts files copied into target directories.
	FilesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recoveryd",
			Subsystem: "restore",
			Name:      "files_copied_total",
			Help:      "Total number of backup files copied into target directories",
		},
	)

	// RecoveryRuns counts intelligent restore runs.
	// Labels: outcome (direct, migrated, no_migration_path, failed)
	RecoveryRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recoveryd",
			Subsystem: "recovery",
			Name:      "runs_total",
			Help:      "Total number of intelligent restore runs by outcome",
		},
		[]string{"outcome"},
	)

	// RecoveryDuration tracks how long intelligent restore runs take.
	RecoveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recoveryd",
			Subsystem: "recovery",
			Name:      "run_duration_seconds",
			Help:      "Duration of intelligent restore runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
