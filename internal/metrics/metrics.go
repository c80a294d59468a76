// Package metrics exposes the Prometheus instrumentation around historize
// runs, mirroring the teacher's lake/api and lake/pkg/querier metrics
// packages (package-level promauto collectors, no registry threading).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scd2historize_runs_total",
			Help: "Total number of historize invocations",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scd2historize_run_duration_seconds",
			Help:    "Duration of historize invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"status"},
	)

	RowsByKind = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scd2historize_rows_total",
			Help: "Total number of output rows produced, partitioned by what the engine did to them",
		},
		[]string{"kind"}, // unchanged_open, closed, opened, carried_closed
	)

	ValidationViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scd2historize_validation_violations_total",
			Help: "Total number of invariant violations found by ValidateHistory",
		},
		[]string{"invariant"},
	)
)

// RecordRun records the outcome of one historize invocation.
func RecordRun(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRowCounts records the per-kind row counts of one historize run.
func RecordRowCounts(unchangedOpen, closed, opened, carriedClosed int) {
	RowsByKind.WithLabelValues("unchanged_open").Add(float64(unchangedOpen))
	RowsByKind.WithLabelValues("closed").Add(float64(closed))
	RowsByKind.WithLabelValues("opened").Add(float64(opened))
	RowsByKind.WithLabelValues("carried_closed").Add(float64(carriedClosed))
}

// RecordViolations records the invariants violated by one ValidateHistory call.
func RecordViolations(invariants []string) {
	for _, inv := range invariants {
		ValidationViolationsTotal.WithLabelValues(inv).Inc()
	}
}
