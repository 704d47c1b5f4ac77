// Package metrics exposes prometheus instrumentation for sync runs and
// alert evaluation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// syncRuns tracks completed sync runs per brand and terminal status.
	syncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_runs_total",
		Help: "Total number of completed sync runs by brand and status",
	}, []string{"brand", "status"})

	// syncDuration tracks how long a full brand sync takes.
	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_sync_duration_seconds",
		Help:    "Time taken for a full brand sync",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"brand"})

	// productsReconciled tracks reconciled products per brand and outcome.
	productsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_products_reconciled_total",
		Help: "Total number of products reconciled by brand and outcome",
	}, []string{"brand", "outcome"}) // outcome: added, updated, failed

	// alertsEvaluated tracks price alert evaluation outcomes.
	alertsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_price_alerts_evaluated_total",
		Help: "Total number of price alerts evaluated by outcome",
	}, []string{"outcome"}) // outcome: triggered, skipped, error

	// alertSweepDuration tracks how long an alert evaluation pass takes.
	alertSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_alert_sweep_duration_seconds",
		Help:    "Time taken for one price alert evaluation pass",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
)

// RecordSyncRun records a terminal sync run
func RecordSyncRun(brand string, status string, duration time.Duration) {
	syncRuns.WithLabelValues(brand, status).Inc()
	syncDuration.WithLabelValues(brand).Observe(duration.Seconds())
}

// RecordReconciled records reconciled product counts for a run
func RecordReconciled(brand string, added, updated, failed int) {
	productsReconciled.WithLabelValues(brand, "added").Add(float64(added))
	productsReconciled.WithLabelValues(brand, "updated").Add(float64(updated))
	productsReconciled.WithLabelValues(brand, "failed").Add(float64(failed))
}

// RecordAlertOutcome records one alert evaluation outcome
func RecordAlertOutcome(outcome string) {
	alertsEvaluated.WithLabelValues(outcome).Inc()
}

// RecordAlertSweep records the duration of one evaluation pass
func RecordAlertSweep(duration time.Duration) {
	alertSweepDuration.Observe(duration.Seconds())
}
