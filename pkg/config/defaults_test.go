package config

import "testing"

func TestApplyDefaults_Empty(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Scan.Workers != DefaultScanWorkers {
		t.Errorf("expected workers %d, got %d", DefaultScanWorkers, cfg.Scan.Workers)
	}
	if cfg.Rules.Language != DefaultRulesLanguage {
		t.Errorf("expected language %q, got %q", DefaultRulesLanguage, cfg.Rules.Language)
	}
	if cfg.Storage.SQLite.Path != DefaultSQLitePath {
		t.Errorf("expected sqlite path %q, got %q", DefaultSQLitePath, cfg.Storage.SQLite.Path)
	}
	if cfg.Retention.PruneSchedule != DefaultRetentionSchedule {
		t.Errorf("expected schedule %q, got %q", DefaultRetentionSchedule, cfg.Retention.PruneSchedule)
	}
	if len(cfg.Telemetry.Metrics.EvaluationDurationBuckets) != len(DefaultEvaluationDurationBuckets) {
		t.Error("expected default evaluation buckets")
	}
	// ApplyDefaults does not touch booleans.
	if cfg.Scan.PreFilter {
		t.Error("ApplyDefaults should not set pre_filter")
	}
}

func TestApplyDefaults_PreservesValues(t *testing.T) {
	cfg := &Config{}
	cfg.Scan.Workers = 12
	cfg.Server.ListenAddress = "0.0.0.0:1"
	ApplyDefaults(cfg)

	if cfg.Scan.Workers != 12 {
		t.Errorf("expected workers 12, got %d", cfg.Scan.Workers)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:1" {
		t.Errorf("expected listen address preserved, got %q", cfg.Server.ListenAddress)
	}
}

func TestDefault_SeedsBooleans(t *testing.T) {
	cfg := Default()
	if !cfg.Scan.PreFilter || !cfg.Rules.Builtin || !cfg.Storage.SQLite.WALMode || !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected true-by-default booleans to be set")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing disabled by default")
	}
}

func TestDefault_BucketsAreCopies(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Metrics.ScanDurationBuckets[0] = 99
	if DefaultScanDurationBuckets[0] == 99 {
		t.Error("default buckets must not alias the package variable")
	}
}
