package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateScan(&cfg.Scan)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateScan(cfg *ScanConfig) []FieldError {
	var errs []FieldError

	if cfg.Workers < 1 {
		errs = append(errs, FieldError{Field: "scan.workers", Message: "must be at least 1"})
	}
	if !oneOf(cfg.FailOn, "error", "open", "never") {
		errs = append(errs, FieldError{Field: "scan.fail_on", Message: fmt.Sprintf("invalid value %q (must be error, open or never)", cfg.FailOn)})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "scan.timeout", Message: "timeout must be positive"})
	}
	if cfg.MaxElements < 0 {
		errs = append(errs, FieldError{Field: "scan.max_elements", Message: "must be non-negative"})
	}

	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if !oneOf(cfg.Language, "expr", "cel") {
		errs = append(errs, FieldError{Field: "rules.language", Message: fmt.Sprintf("invalid language %q (must be expr or cel)", cfg.Language)})
	}
	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{Field: "rules.watch_debounce", Message: "debounce must be positive"})
	}
	if cfg.MaxFileSize < 0 {
		errs = append(errs, FieldError{Field: "rules.max_file_size", Message: "must be non-negative"})
	}
	for i, id := range cfg.Disabled {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("rules.disabled[%d]", i), Message: "rule id cannot be empty"})
		}
	}

	if cfg.Git.Enabled {
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{Field: "rules.git.repository", Message: "repository is required when git is enabled"})
		}
		switch cfg.Git.Auth.Type {
		case "none", "":
		case "token":
			if cfg.Git.Auth.Token == "" {
				errs = append(errs, FieldError{Field: "rules.git.auth.token", Message: "token auth requires a token"})
			}
		case "ssh":
			if cfg.Git.Auth.SSHKeyPath == "" {
				errs = append(errs, FieldError{Field: "rules.git.auth.ssh_key_path", Message: "ssh auth requires ssh_key_path"})
			}
		default:
			errs = append(errs, FieldError{Field: "rules.git.auth.type", Message: fmt.Sprintf("unknown auth type %q", cfg.Git.Auth.Type)})
		}
		if cfg.Git.Poll.Enabled && cfg.Git.Poll.Interval <= 0 {
			errs = append(errs, FieldError{Field: "rules.git.poll.interval", Message: "interval must be positive"})
		}
		if cfg.Git.Clone.Depth < 0 {
			errs = append(errs, FieldError{Field: "rules.git.clone.depth", Message: "depth must be non-negative"})
		}
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "storage.sqlite.path", Message: "path is required for the sqlite backend"})
		}
		if !oneOf(cfg.SQLite.Driver, "sqlite3", "sqlite") {
			errs = append(errs, FieldError{Field: "storage.sqlite.driver", Message: fmt.Sprintf("invalid driver %q (must be sqlite3 or sqlite)", cfg.SQLite.Driver)})
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			errs = append(errs, FieldError{Field: "storage.sqlite.max_open_conns", Message: "must be at least 1"})
		}
		if cfg.SQLite.MaxIdleConns < 0 {
			errs = append(errs, FieldError{Field: "storage.sqlite.max_idle_conns", Message: "must be non-negative"})
		}
	default:
		errs = append(errs, FieldError{Field: "storage.backend", Message: fmt.Sprintf("invalid backend %q (must be memory or sqlite)", cfg.Backend)})
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.Days < 0 {
		errs = append(errs, FieldError{Field: "retention.days", Message: "must be non-negative"})
	}
	if cfg.MaxScans < 0 {
		errs = append(errs, FieldError{Field: "retention.max_scans", Message: "must be non-negative"})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{Field: "retention.prune_schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "must be non-negative"})
	}
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.cert_file", Message: "cert_file is required when TLS is enabled"})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.key_file", Message: "key_file is required when TLS is enabled"})
		}
		if !oneOf(cfg.TLS.MinVersion, "1.2", "1.3") {
			errs = append(errs, FieldError{Field: "server.tls.min_version", Message: fmt.Sprintf("unsupported TLS version %q", cfg.TLS.MinVersion)})
		}
	}
	if cfg.Auth.Enabled {
		if len(cfg.Auth.Keys) == 0 {
			errs = append(errs, FieldError{Field: "server.auth.keys", Message: "at least one key is required when auth is enabled"})
		}
		for i, k := range cfg.Auth.Keys {
			if k.Key == "" {
				errs = append(errs, FieldError{Field: fmt.Sprintf("server.auth.keys[%d].key", i), Message: "key is required"})
			}
		}
	}
	if cfg.RateLimit.ScansPerMinute < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.scans_per_minute", Message: "must be non-negative"})
	}
	if cfg.RateLimit.Burst < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.burst", Message: "must be non-negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !oneOf(strings.ToLower(cfg.Logging.Level), "debug", "info", "warn", "warning", "error") {
		errs = append(errs, FieldError{Field: "telemetry.logging.level", Message: fmt.Sprintf("invalid log level %q", cfg.Logging.Level)})
	}
	if !oneOf(strings.ToLower(cfg.Logging.Format), "json", "text", "console") {
		errs = append(errs, FieldError{Field: "telemetry.logging.format", Message: fmt.Sprintf("invalid log format %q", cfg.Logging.Format)})
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "path must start with /"})
	}
	if cfg.Tracing.Enabled {
		if !oneOf(cfg.Tracing.Sampler, "always", "never", "ratio") {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sampler", Message: fmt.Sprintf("invalid sampler %q", cfg.Tracing.Sampler)})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0.0 and 1.0"})
		}
	}

	return errs
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
