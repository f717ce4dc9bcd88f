package metrics

import (
	"fmt"
	"sync"
	"time"

	"a11y-hq/lumen/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// maxRuleCardinality bounds the number of distinct rule_id label values.
// Rule packs are user supplied, so their IDs are not a closed set.
const maxRuleCardinality = 2000

// OtherRuleID replaces rule IDs once the cardinality limit is reached.
const OtherRuleID = "other"

// Collector owns every Prometheus metric lumen exports. A nil *Collector is
// valid and records nothing, so callers never need to branch on whether
// metrics are enabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluationMetrics *EvaluationMetrics
	scanMetrics       *ScanMetrics
	ruleSetMetrics    *RuleSetMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "lumen"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.EvaluationDurationBuckets) == 0 {
		cfg.EvaluationDurationBuckets = append([]float64(nil), config.DefaultEvaluationDurationBuckets...)
	}
	if len(cfg.ScanDurationBuckets) == 0 {
		cfg.ScanDurationBuckets = append([]float64(nil), config.DefaultScanDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		evaluationMetrics:  NewEvaluationMetrics(cfg, registry),
		scanMetrics:        NewScanMetrics(cfg, registry),
		ruleSetMetrics:     NewRuleSetMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxRuleCardinality),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

func (c *Collector) ruleLabel(ruleID string) string {
	if c.cardinalityLimiter.Allow(fmt.Sprintf("rule:%s", ruleID)) {
		return ruleID
	}
	return OtherRuleID
}

// RecordEvaluation records one rule evaluation against one element.
//
// Parameters:
//   - ruleID: rule identifier
//   - code: verdict name ("Pass", "Error", "Open", "NotApplicable", "ExecutionError")
//   - duration: time spent in Evaluate
func (c *Collector) RecordEvaluation(ruleID, code string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.evaluationMetrics.RecordEvaluation(c.ruleLabel(ruleID), code, duration)
}

// RecordExecutionError records an evaluation that failed to run to completion.
func (c *Collector) RecordExecutionError(ruleID string) {
	if !c.enabled() {
		return
	}
	c.evaluationMetrics.RecordExecutionError(c.ruleLabel(ruleID))
}

// RecordPreFiltered records an evaluation skipped because the rule's
// condition did not match the element.
func (c *Collector) RecordPreFiltered(ruleID string) {
	if !c.enabled() {
		return
	}
	c.evaluationMetrics.RecordPreFiltered(c.ruleLabel(ruleID))
}

// RecordScan records a completed scan.
//
// Parameters:
//   - status: "passed", "failed", "canceled" or "error"
//   - duration: wall time of the scan
//   - elements: number of elements in the tree
func (c *Collector) RecordScan(status string, duration time.Duration, elements int) {
	if !c.enabled() {
		return
	}
	c.scanMetrics.RecordScan(status, duration, elements)
}

// ScanStarted increments the in-flight scan gauge. Call ScanFinished when done.
func (c *Collector) ScanStarted() {
	if !c.enabled() {
		return
	}
	c.scanMetrics.inFlight.Inc()
}

// ScanFinished decrements the in-flight scan gauge.
func (c *Collector) ScanFinished() {
	if !c.enabled() {
		return
	}
	c.scanMetrics.inFlight.Dec()
}

// SetRulesLoaded sets the number of ready rules from a source
// ("builtin", "pack" or "git").
func (c *Collector) SetRulesLoaded(source string, count int) {
	if !c.enabled() {
		return
	}
	c.ruleSetMetrics.SetLoaded(source, count)
}

// RecordRuleReload records a rule set reload attempt.
//
// Parameters:
//   - trigger: "file", "git" or "manual"
//   - success: whether the new rule set replaced the old one
func (c *Collector) RecordRuleReload(trigger string, success bool) {
	if !c.enabled() {
		return
	}
	c.ruleSetMetrics.RecordReload(trigger, success)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if the cardinality limit has not been reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
