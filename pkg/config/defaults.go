package config

import "time"

// Default values for configuration fields.
const (
	// Scan defaults
	DefaultScanWorkers     = 4
	DefaultScanPreFilter   = true
	DefaultScanFailOn      = "error"
	DefaultScanTimeout     = 60 * time.Second
	DefaultScanMaxElements = 100000

	// Rules defaults
	DefaultRulesBuiltin       = true
	DefaultRulesLanguage      = "expr"
	DefaultRulesWatchDebounce = 100 * time.Millisecond
	DefaultRulesMaxFileSize   = int64(1 << 20)
	DefaultGitBranch          = "main"
	DefaultGitAuthType        = "none"
	DefaultGitPollInterval    = 30 * time.Second
	DefaultGitPollTimeout     = 10 * time.Second
	DefaultGitCloneDepth      = 1

	// Storage defaults
	DefaultStorageBackend     = "sqlite"
	DefaultSQLitePath         = "data/lumen.db"
	DefaultSQLiteDriver       = "sqlite3"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteMaxIdleConns = 5
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second
	DefaultRetentionDays      = 30
	DefaultRetentionSchedule  = "0 3 * * *"
	DefaultRetentionMaxScans  = int64(0)

	// Server defaults
	DefaultServerListenAddress   = "127.0.0.1:8420"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerIdleTimeout     = 120 * time.Second
	DefaultServerShutdownTimeout = 15 * time.Second
	DefaultServerMaxBodyBytes    = int64(10 << 20)
	DefaultServerTLSMinVersion   = "1.2"
	DefaultServerAuthHeader      = "Authorization"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "lumen"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingService     = "lumen"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
)

// Default histogram buckets.
var (
	DefaultEvaluationDurationBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05}
	DefaultScanDurationBuckets       = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{
		Scan: ScanConfig{
			PreFilter: DefaultScanPreFilter,
		},
		Rules: RulesConfig{
			Builtin: DefaultRulesBuiltin,
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{WALMode: DefaultSQLiteWALMode},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled: DefaultTracingEnabled,
				OTLP:    OTLPConfig{Insecure: DefaultOTLPInsecure},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Boolean fields
// whose default is true are seeded by Default, which LoadConfig decodes into.
func ApplyDefaults(cfg *Config) {
	// Scan defaults
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = DefaultScanWorkers
	}
	if cfg.Scan.FailOn == "" {
		cfg.Scan.FailOn = DefaultScanFailOn
	}
	if cfg.Scan.Timeout == 0 {
		cfg.Scan.Timeout = DefaultScanTimeout
	}
	if cfg.Scan.MaxElements == 0 {
		cfg.Scan.MaxElements = DefaultScanMaxElements
	}

	// Rules defaults
	if cfg.Rules.Language == "" {
		cfg.Rules.Language = DefaultRulesLanguage
	}
	if cfg.Rules.WatchDebounce == 0 {
		cfg.Rules.WatchDebounce = DefaultRulesWatchDebounce
	}
	if cfg.Rules.MaxFileSize == 0 {
		cfg.Rules.MaxFileSize = DefaultRulesMaxFileSize
	}
	if cfg.Rules.Git.Branch == "" {
		cfg.Rules.Git.Branch = DefaultGitBranch
	}
	if cfg.Rules.Git.Auth.Type == "" {
		cfg.Rules.Git.Auth.Type = DefaultGitAuthType
	}
	if cfg.Rules.Git.Poll.Interval == 0 {
		cfg.Rules.Git.Poll.Interval = DefaultGitPollInterval
	}
	if cfg.Rules.Git.Poll.Timeout == 0 {
		cfg.Rules.Git.Poll.Timeout = DefaultGitPollTimeout
	}
	if cfg.Rules.Git.Clone.Depth == 0 {
		cfg.Rules.Git.Clone.Depth = DefaultGitCloneDepth
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.Driver == "" {
		cfg.Storage.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Storage.SQLite.MaxOpenConns == 0 {
		cfg.Storage.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Storage.SQLite.MaxIdleConns == 0 {
		cfg.Storage.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Retention defaults
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultRetentionSchedule
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultServerListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultServerIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultServerMaxBodyBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultServerTLSMinVersion
	}
	if cfg.Server.Auth.Header == "" {
		cfg.Server.Auth.Header = DefaultServerAuthHeader
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = cfg.Server.RateLimit.ScansPerMinute
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.EvaluationDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.EvaluationDurationBuckets = append([]float64(nil), DefaultEvaluationDurationBuckets...)
	}
	if len(cfg.Telemetry.Metrics.ScanDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.ScanDurationBuckets = append([]float64(nil), DefaultScanDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}
