package config

import "time"

// Config is the root configuration structure for lumen.
type Config struct {
	// Scan controls how element trees are evaluated.
	Scan ScanConfig `yaml:"scan"`

	// Rules controls which rules are loaded and from where.
	Rules RulesConfig `yaml:"rules"`

	// Storage selects and configures the scan result backend.
	Storage StorageConfig `yaml:"storage"`

	// Retention controls pruning of stored scan results.
	Retention RetentionConfig `yaml:"retention"`

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ScanConfig contains configuration for the scan runner.
type ScanConfig struct {
	// Workers is the number of concurrent evaluation workers.
	// Default: 4
	Workers int `yaml:"workers"`

	// PreFilter skips evaluation when a rule's condition does not match and
	// records NotApplicable directly.
	// Default: true
	PreFilter bool `yaml:"pre_filter"`

	// IncludeNotApplicable keeps NotApplicable findings in results.
	// Default: false
	IncludeNotApplicable bool `yaml:"include_not_applicable"`

	// FailOn selects which verdicts make the CLI exit non-zero.
	// Options: "error", "open", "never"
	// Default: "error"
	FailOn string `yaml:"fail_on"`

	// Timeout bounds a single scan.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxElements rejects trees with more elements than this (0 = unlimited).
	// Default: 100000
	MaxElements int `yaml:"max_elements"`
}

// RulesConfig configures rule sources.
type RulesConfig struct {
	// Builtin enables the built-in rule library.
	// Default: true
	Builtin bool `yaml:"builtin"`

	// Disabled lists rule IDs that are never evaluated.
	Disabled []string `yaml:"disabled"`

	// Packs lists rule pack files or directories.
	Packs []string `yaml:"packs"`

	// Language is the default expression language for pack conditions.
	// Options: "expr", "cel"
	// Default: "expr"
	Language string `yaml:"language"`

	// Watch reloads rule packs when their files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before a reload.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// MaxFileSize is the largest accepted pack file in bytes.
	// Default: 1MB
	MaxFileSize int64 `yaml:"max_file_size"`

	// Git loads rule packs from a Git repository.
	Git GitRulesConfig `yaml:"git"`
}

// GitRulesConfig configures Git-based rule pack loading.
type GitRulesConfig struct {
	// Enabled determines if Git loading is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to pack files.
	// Default: "" (root directory)
	Path string `yaml:"path"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Poll configures change detection.
	Poll GitPollConfig `yaml:"poll"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication.
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitPollConfig configures change detection.
type GitPollConfig struct {
	// Enabled determines if polling is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Interval between polls.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// Timeout for Git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local repo before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// StorageConfig selects the scan result backend.
type StorageConfig struct {
	// Backend is the storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/lumen.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain scan results.
	// 0 keeps results forever.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxScans is the maximum number of scans to keep (0 = unlimited).
	// Default: 0
	MaxScans int64 `yaml:"max_scans"`

	// ArchivePath is a directory that receives a JSON export of every
	// batch of pruned scans. Empty disables archiving.
	ArchivePath string `yaml:"archive_path"`
}

// ServerConfig contains configuration for the HTTP API.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8420"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of uploaded tree snapshots.
	// Default: 10MB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// TLS configures HTTPS.
	TLS TLSConfig `yaml:"tls"`

	// Auth guards the /api/v1 routes with API keys.
	Auth AuthConfig `yaml:"auth"`

	// RateLimit bounds scan submissions.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// TLSConfig contains HTTPS configuration.
type TLSConfig struct {
	// Enabled serves HTTPS instead of HTTP.
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version ("1.2" or "1.3").
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`
}

// AuthConfig contains API key authentication configuration.
type AuthConfig struct {
	// Enabled requires a valid key on every /api/v1 request.
	Enabled bool `yaml:"enabled"`

	// Header carries the key. Values of the Authorization header may use
	// the Bearer scheme.
	// Default: "Authorization"
	Header string `yaml:"header"`

	// Keys are the accepted API keys.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig is one accepted API key.
type APIKeyConfig struct {
	// Name identifies the client in logs.
	Name string `yaml:"name"`

	// Key is the secret value. "${VAR}" reads it from the environment.
	Key string `yaml:"key"`

	// Disabled rejects the key without removing it.
	Disabled bool `yaml:"disabled"`
}

// RateLimitConfig limits POST /api/v1/scans with a token bucket.
type RateLimitConfig struct {
	// ScansPerMinute is the sustained rate (0 = unlimited).
	ScansPerMinute int `yaml:"scans_per_minute"`

	// Burst is the bucket capacity.
	// Default: ScansPerMinute
	Burst int `yaml:"burst"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "lumen"
	Namespace string `yaml:"namespace"`

	// EvaluationDurationBuckets defines histogram buckets for a single rule
	// evaluation (seconds).
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets"`

	// ScanDurationBuckets defines histogram buckets for whole scans (seconds).
	ScanDurationBuckets []float64 `yaml:"scan_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "lumen"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
