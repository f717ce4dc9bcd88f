package storage

import (
	"fmt"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/telemetry/logging"
)

// New opens the backend selected by cfg.Backend.
func New(cfg *config.StorageConfig, logger *logging.Logger) (results.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		return NewSQLiteStorage(&cfg.SQLite, logger)
	default:
		return nil, results.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown storage backend %q", cfg.Backend))
	}
}
