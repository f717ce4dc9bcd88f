package metrics

import (
	"strconv"

	"a11y-hq/lumen/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RuleSetMetrics tracks the loaded rule catalog.
//
// Metrics:
//   - lumen_rules_loaded: ready rules by source
//   - lumen_rule_reloads_total: reload attempts by trigger and outcome
type RuleSetMetrics struct {
	loaded  *prometheus.GaugeVec
	reloads *prometheus.CounterVec
}

// NewRuleSetMetrics creates and registers rule set metrics.
func NewRuleSetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleSetMetrics {
	rm := &RuleSetMetrics{
		loaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "rules_loaded",
				Help:      "Number of ready rules by source",
			},
			[]string{"source"},
		),

		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_reloads_total",
				Help:      "Total number of rule set reloads",
			},
			[]string{"trigger", "success"},
		),
	}

	registry.MustRegister(rm.loaded, rm.reloads)

	return rm
}

// SetLoaded sets the ready rule count for a source.
func (rm *RuleSetMetrics) SetLoaded(source string, count int) {
	rm.loaded.WithLabelValues(source).Set(float64(count))
}

// RecordReload records a reload attempt.
func (rm *RuleSetMetrics) RecordReload(trigger string, success bool) {
	rm.reloads.WithLabelValues(trigger, strconv.FormatBool(success)).Inc()
}
