// Package metrics exposes lumen's Prometheus metrics.
//
// A Collector registers evaluation, scan and rule set metrics in its own
// registry and serves them through Handler. A nil *Collector records
// nothing.
//
// # Metrics
//
//   - lumen_rule_evaluations_total{rule_id,code}
//   - lumen_rule_evaluation_duration_seconds{rule_id}
//   - lumen_rule_execution_errors_total{rule_id}
//   - lumen_rule_prefiltered_total{rule_id}
//   - lumen_scans_total{status}
//   - lumen_scan_duration_seconds{status}
//   - lumen_scan_elements
//   - lumen_scans_in_flight
//   - lumen_rules_loaded{source}
//   - lumen_rule_reloads_total{trigger,success}
//
// rule_id values are capped; rules beyond the cap are reported as "other".
package metrics
