package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"a11y-hq/lumen/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                   true,
		Namespace:                 "test",
		EvaluationDurationBuckets: []float64{0.0001, 0.001, 0.01},
		ScanDurationBuckets:       []float64{0.1, 1, 10},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_NewCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("expected a registry to be created")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("namespace = %q", cfg.Namespace)
	}
	if len(cfg.EvaluationDurationBuckets) == 0 || len(cfg.ScanDurationBuckets) == 0 {
		t.Error("expected default buckets")
	}
}

func TestCollector_RecordEvaluation(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordEvaluation("NameNotNull", "Pass", 50*time.Microsecond)
	collector.RecordEvaluation("NameNotNull", "Pass", 20*time.Microsecond)
	collector.RecordEvaluation("NameNotNull", "Error", 10*time.Microsecond)

	em := collector.evaluationMetrics
	if got := testutil.ToFloat64(em.evaluationsTotal.WithLabelValues("NameNotNull", "Pass")); got != 2 {
		t.Errorf("Pass count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(em.evaluationsTotal.WithLabelValues("NameNotNull", "Error")); got != 1 {
		t.Errorf("Error count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(em.evaluationDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestCollector_ExecutionErrorsAndPreFilter(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordExecutionError("ProgressBarRangeValue")
	collector.RecordPreFiltered("NameNotNull")
	collector.RecordPreFiltered("NameNotNull")

	em := collector.evaluationMetrics
	if got := testutil.ToFloat64(em.executionErrors.WithLabelValues("ProgressBarRangeValue")); got != 1 {
		t.Errorf("execution errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(em.preFiltered.WithLabelValues("NameNotNull")); got != 2 {
		t.Errorf("prefiltered = %v, want 2", got)
	}
}

func TestCollector_RecordScan(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.ScanStarted()
	collector.ScanStarted()
	collector.ScanFinished()
	collector.RecordScan("failed", 300*time.Millisecond, 120)

	sm := collector.scanMetrics
	if got := testutil.ToFloat64(sm.scansTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("scans_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}

func TestCollector_RuleSet(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.SetRulesLoaded("builtin", 7)
	collector.SetRulesLoaded("builtin", 6)
	collector.RecordRuleReload("file", true)
	collector.RecordRuleReload("file", false)

	rm := collector.ruleSetMetrics
	if got := testutil.ToFloat64(rm.loaded.WithLabelValues("builtin")); got != 6 {
		t.Errorf("rules_loaded = %v, want 6", got)
	}
	if got := testutil.ToFloat64(rm.reloads.WithLabelValues("file", "false")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordEvaluation("NameNotNull", "Pass", time.Millisecond)
	collector.RecordScan("passed", time.Millisecond, 1)

	if got := testutil.CollectAndCount(collector.evaluationMetrics.evaluationsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d series", got)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var collector *Collector

	collector.RecordEvaluation("r", "Pass", time.Millisecond)
	collector.RecordExecutionError("r")
	collector.RecordPreFiltered("r")
	collector.RecordScan("passed", time.Second, 3)
	collector.ScanStarted()
	collector.ScanFinished()
	collector.SetRulesLoaded("builtin", 1)
	collector.RecordRuleReload("git", true)

	if collector.Registry() != nil {
		t.Error("nil collector should have no registry")
	}
}

func TestCollector_RuleCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.cardinalityLimiter = NewCardinalityLimiter(2)

	for i := 0; i < 5; i++ {
		collector.RecordEvaluation(fmt.Sprintf("rule-%d", i), "Pass", time.Microsecond)
	}

	em := collector.evaluationMetrics
	if got := testutil.ToFloat64(em.evaluationsTotal.WithLabelValues(OtherRuleID, "Pass")); got != 3 {
		t.Errorf("other = %v, want 3", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two label sets to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third label set to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected existing label set to be allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestHandler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordScan("passed", time.Second, 10)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `test_scans_total{status="passed"} 1`) {
		t.Errorf("metrics output missing scans_total:\n%s", body)
	}
}
