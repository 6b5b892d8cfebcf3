// Package metrics exposes Prometheus collectors for the scraping pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TargetsProcessed counts targets completed, by terminal outcome.
	TargetsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachscout",
		Name:      "targets_processed_total",
		Help:      "Targets processed, labelled by terminal outcome.",
	}, []string{"outcome"})

	// RecordsExtracted counts staff records extracted, by strategy.
	RecordsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachscout",
		Name:      "records_extracted_total",
		Help:      "Staff records extracted, labelled by strategy.",
	}, []string{"strategy"})

	// StrategyAttempts counts strategy invocations and their outcomes.
	StrategyAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachscout",
		Name:      "strategy_attempts_total",
		Help:      "Strategy invocations, labelled by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	// TargetDuration observes per-target wall time in seconds.
	TargetDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coachscout",
		Name:      "target_duration_seconds",
		Help:      "Wall time spent per target, including fallback.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
