package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded over Default, so omitted fields keep their defaults.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention LUMEN_SECTION_FIELD (e.g., LUMEN_SERVER_LISTEN_ADDRESS) and
// always take precedence over the file.
//
// An empty path skips the file and starts from Default.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies LUMEN_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Scan overrides
	envInt("LUMEN_SCAN_WORKERS", &cfg.Scan.Workers)
	envBool("LUMEN_SCAN_PRE_FILTER", &cfg.Scan.PreFilter)
	envBool("LUMEN_SCAN_INCLUDE_NOT_APPLICABLE", &cfg.Scan.IncludeNotApplicable)
	envString("LUMEN_SCAN_FAIL_ON", &cfg.Scan.FailOn)
	envDuration("LUMEN_SCAN_TIMEOUT", &cfg.Scan.Timeout)

	// Rules overrides
	envBool("LUMEN_RULES_BUILTIN", &cfg.Rules.Builtin)
	envList("LUMEN_RULES_DISABLED", &cfg.Rules.Disabled)
	envList("LUMEN_RULES_PACKS", &cfg.Rules.Packs)
	envString("LUMEN_RULES_LANGUAGE", &cfg.Rules.Language)
	envBool("LUMEN_RULES_WATCH", &cfg.Rules.Watch)
	envBool("LUMEN_RULES_GIT_ENABLED", &cfg.Rules.Git.Enabled)
	envString("LUMEN_RULES_GIT_REPOSITORY", &cfg.Rules.Git.Repository)
	envString("LUMEN_RULES_GIT_BRANCH", &cfg.Rules.Git.Branch)
	envString("LUMEN_RULES_GIT_PATH", &cfg.Rules.Git.Path)
	envString("LUMEN_RULES_GIT_AUTH_TYPE", &cfg.Rules.Git.Auth.Type)
	envString("LUMEN_RULES_GIT_AUTH_TOKEN", &cfg.Rules.Git.Auth.Token)
	envString("LUMEN_RULES_GIT_AUTH_SSH_KEY_PATH", &cfg.Rules.Git.Auth.SSHKeyPath)

	// Storage overrides
	envString("LUMEN_STORAGE_BACKEND", &cfg.Storage.Backend)
	envString("LUMEN_STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	envString("LUMEN_STORAGE_SQLITE_DRIVER", &cfg.Storage.SQLite.Driver)
	envInt("LUMEN_RETENTION_DAYS", &cfg.Retention.Days)
	envString("LUMEN_RETENTION_PRUNE_SCHEDULE", &cfg.Retention.PruneSchedule)

	// Server overrides
	envString("LUMEN_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("LUMEN_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("LUMEN_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envBool("LUMEN_SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	envString("LUMEN_SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	envString("LUMEN_SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	envBool("LUMEN_SERVER_AUTH_ENABLED", &cfg.Server.Auth.Enabled)
	envInt("LUMEN_SERVER_RATE_LIMIT_SCANS_PER_MINUTE", &cfg.Server.RateLimit.ScansPerMinute)

	// Telemetry overrides
	envString("LUMEN_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("LUMEN_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("LUMEN_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("LUMEN_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("LUMEN_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("LUMEN_TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv("LUMEN_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// envList reads a comma-separated list.
func envList(key string, dst *[]string) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
