// Package storage provides results.Storage backends.
//
//   - MemoryStorage: a map guarded by a RWMutex, for tests and one-shot runs
//   - SQLiteStorage: a durable database with WAL mode and a busy timeout
//
// SQLiteStorage works with either of two database/sql drivers, selected by
// config.SQLiteConfig.Driver: "sqlite3" (github.com/mattn/go-sqlite3, cgo)
// or "sqlite" (modernc.org/sqlite, pure Go).
//
// # Basic Usage
//
//	store, err := storage.New(&cfg.Storage, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Store(ctx, result); err != nil {
//	    return err
//	}
//	recent, err := store.List(ctx, &results.Query{Status: scan.StatusCompleted, Limit: 20})
//
// # Schema
//
// The SQLite schema is created on open. Its version is tracked in the
// schema_version table.
package storage
