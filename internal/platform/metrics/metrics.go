package metrics

import (
	"time"

	"github.com/finbackoffice/fxrates_app/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reconciliationOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fxrates",
		Subsystem: "reconciliation",
		Name:      "pairs_total",
		Help:      "Reconciliation outcomes per candidate pair.",
	},
	[]string{"outcome"},
)

var feedPullDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "fxrates",
		Subsystem: "ratefeed",
		Name:      "pull_duration_seconds",
		Help:      "Duration of rate feed pull and reconciliation passes.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
)

var feedPullErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "fxrates",
		Subsystem: "ratefeed",
		Name:      "pull_errors_total",
		Help:      "Failed rate feed pulls.",
	},
)

// ObserveReconciliation records the per-outcome counts of one pass.
func ObserveReconciliation(report *domain.ReconciliationReport) {
	for _, result := range report.Results {
		reconciliationOutcomes.WithLabelValues(string(result.Outcome)).Inc()
	}
}

// ObserveFeedPull records the duration of one feed pull.
func ObserveFeedPull(elapsed time.Duration) {
	feedPullDuration.Observe(elapsed.Seconds())
}

// ObserveFeedPullError counts a failed pull.
func ObserveFeedPullError() {
	feedPullErrors.Inc()
}
