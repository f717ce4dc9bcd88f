package metrics

import (
	"time"

	"a11y-hq/lumen/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks rule evaluation.
//
// Metrics:
//   - lumen_rule_evaluations_total: evaluations by rule and verdict
//   - lumen_rule_evaluation_duration_seconds: time spent in Evaluate
//   - lumen_rule_execution_errors_total: evaluations that could not complete
//   - lumen_rule_prefiltered_total: evaluations skipped by the condition pre-filter
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	executionErrors    *prometheus.CounterVec
	preFiltered        *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations by verdict",
			},
			[]string{"rule_id", "code"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_evaluation_duration_seconds",
				Help:      "Duration of a single rule evaluation in seconds",
				Buckets:   cfg.EvaluationDurationBuckets,
			},
			[]string{"rule_id"},
		),

		executionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_execution_errors_total",
				Help:      "Total number of rule evaluations that failed to complete",
			},
			[]string{"rule_id"},
		),

		preFiltered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_prefiltered_total",
				Help:      "Total number of evaluations skipped because the rule condition did not match",
			},
			[]string{"rule_id"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.executionErrors,
		em.preFiltered,
	)

	return em
}

// RecordEvaluation records a verdict and its duration.
func (em *EvaluationMetrics) RecordEvaluation(ruleID, code string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(ruleID, code).Inc()
	em.evaluationDuration.WithLabelValues(ruleID).Observe(duration.Seconds())
}

// RecordExecutionError records an execution failure.
func (em *EvaluationMetrics) RecordExecutionError(ruleID string) {
	em.executionErrors.WithLabelValues(ruleID).Inc()
}

// RecordPreFiltered records a skipped evaluation.
func (em *EvaluationMetrics) RecordPreFiltered(ruleID string) {
	em.preFiltered.WithLabelValues(ruleID).Inc()
}
