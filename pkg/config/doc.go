// Package config provides configuration management for lumen.
//
// Configuration is read from a YAML file, decoded over the defaults, and
// then overridden by environment variables. The result is validated as a
// whole and every problem is reported at once.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("lumen.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("lumen.yaml")
//
//  3. Without a file:
//     cfg := config.Default()
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LUMEN_SECTION_FIELD:
//
//   - LUMEN_SCAN_WORKERS overrides scan.workers
//   - LUMEN_RULES_PACKS overrides rules.packs (comma separated)
//   - LUMEN_STORAGE_SQLITE_PATH overrides storage.sqlite.path
//   - LUMEN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Singleton Pattern
//
// For application-wide access, call Initialize once at startup and GetConfig
// afterwards. Initialize("") loads $LUMEN_CONFIG, else ./lumen.yaml when it
// exists, else the defaults. Tests should pass *Config explicitly or use
// SetConfig.
//
// # Example
//
//	scan:
//	  workers: 8
//	  fail_on: open
//	rules:
//	  packs: [./rules]
//	  disabled: [NameNotNull]
//	storage:
//	  backend: sqlite
//	  sqlite:
//	    path: data/lumen.db
//	    driver: sqlite
//	server:
//	  auth:
//	    enabled: true
//	    keys:
//	      - name: ci
//	        key: ${LUMEN_CI_KEY}
//	  rate_limit:
//	    scans_per_minute: 60
//	telemetry:
//	  logging:
//	    level: debug
package config
