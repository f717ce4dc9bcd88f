package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/scan"
	"a11y-hq/lumen/pkg/telemetry/logging"
)

// Driver names accepted in config.SQLiteConfig.Driver.
const (
	DriverCGo    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

const backendSQLite = "sqlite"

// SQLiteStorage implements results.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *logging.Logger
}

var _ results.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (creating if needed) the database at cfg.Path and
// initializes its schema.
func NewSQLiteStorage(cfg *config.SQLiteConfig, logger *logging.Logger) (*SQLiteStorage, error) {
	c := config.Default().Storage.SQLite
	if cfg != nil {
		c = *cfg
	}
	if c.Driver == "" {
		c.Driver = config.DefaultSQLiteDriver
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = config.DefaultSQLiteBusyTimeout
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = config.DefaultSQLiteMaxOpenConns
	}
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("results.storage.sqlite")

	if c.Path == "" {
		return nil, results.NewStorageError(backendSQLite, "open", errors.New("database path is empty"))
	}
	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, results.NewStorageError(backendSQLite, "open", err)
		}
	}

	dsn, err := dataSourceName(c)
	if err != nil {
		return nil, results.NewStorageError(backendSQLite, "open", err)
	}

	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, results.NewStorageError(backendSQLite, "open", err)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: c,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", c.Path,
		"driver", c.Driver,
		"wal_mode", c.WALMode,
		"max_open_conns", c.MaxOpenConns,
	)

	return s, nil
}

// dataSourceName sets the busy timeout on every pooled connection; the two
// drivers spell the option differently.
func dataSourceName(c config.SQLiteConfig) (string, error) {
	ms := c.BusyTimeout.Milliseconds()
	switch c.Driver {
	case DriverCGo:
		return fmt.Sprintf("file:%s?_busy_timeout=%d", c.Path, ms), nil
	case DriverPureGo:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", c.Path, ms), nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", c.Driver)
	}
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return results.NewStorageError(backendSQLite, "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return results.NewStorageError(backendSQLite, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return results.NewStorageError(backendSQLite, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return results.NewStorageError(backendSQLite, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return results.NewStorageError(backendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store implements results.Storage. The scan row and its findings are
// written in one transaction.
func (s *SQLiteStorage) Store(ctx context.Context, result *scan.Result) error {
	if err := results.Validate(result); err != nil {
		return results.NewStorageError(backendSQLite, "store", err)
	}

	counts, err := json.Marshal(result.Summary.Counts)
	if err != nil {
		return results.NewStorageError(backendSQLite, "store", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return results.NewStorageError(backendSQLite, "store", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM findings WHERE scan_id = ?", result.ID); err != nil {
		return results.NewStorageError(backendSQLite, "store", err)
	}

	_, err = tx.ExecContext(ctx, insertScan,
		result.ID, result.Target, result.Status,
		result.StartedAt.UnixNano(), result.FinishedAt.UnixNano(), int64(result.Duration),
		result.CatalogVersion,
		result.Summary.Elements, result.Summary.Rules, result.Summary.Evaluations,
		result.Summary.Failures(), string(counts),
	)
	if err != nil {
		return results.NewStorageError(backendSQLite, "store", err)
	}

	if len(result.Findings) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertFinding)
		if err != nil {
			return results.NewStorageError(backendSQLite, "store", err)
		}
		defer stmt.Close()

		for i, f := range result.Findings {
			_, err := stmt.ExecContext(ctx,
				result.ID, i, f.RuleID, f.ElementID, f.ControlType, nullString(f.ElementName),
				f.Code.String(), nullString(f.Description), nullString(f.HowToFix),
				nullString(f.Standard), nullString(f.Error),
			)
			if err != nil {
				return results.NewStorageError(backendSQLite, "store", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return results.NewStorageError(backendSQLite, "store", err)
	}
	return nil
}

// Get implements results.Storage.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*scan.Result, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scanColumns+" FROM scans WHERE id = ?", id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, results.ErrNotFound
	}
	if err != nil {
		return nil, results.NewStorageError(backendSQLite, "get", err)
	}

	rows, err := s.db.QueryContext(ctx, selectFindings, id)
	if err != nil {
		return nil, results.NewStorageError(backendSQLite, "get", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, results.NewStorageError(backendSQLite, "scan", err)
		}
		r.Findings = append(r.Findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, results.NewStorageError(backendSQLite, "get", err)
	}
	return r, nil
}

// List implements results.Storage.
func (s *SQLiteStorage) List(ctx context.Context, query *results.Query) ([]*scan.Result, error) {
	q, err := results.Normalized(query)
	if err != nil {
		return nil, err
	}

	where, args := buildWhereClause(q)
	sqlQuery := "SELECT " + scanColumns + " FROM scans"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	// Sort field and order are checked by Validate.
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s, id %s LIMIT %d", sortColumn(q.SortBy), q.SortOrder, q.SortOrder, q.Limit)
	if q.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, results.NewStorageError(backendSQLite, "list", err)
	}
	defer rows.Close()

	out := []*scan.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, results.NewStorageError(backendSQLite, "scan", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, results.NewStorageError(backendSQLite, "list", err)
	}
	return out, nil
}

// Count implements results.Storage.
func (s *SQLiteStorage) Count(ctx context.Context, query *results.Query) (int64, error) {
	q, err := results.Normalized(query)
	if err != nil {
		return 0, err
	}

	where, args := buildWhereClause(q)
	sqlQuery := "SELECT COUNT(*) FROM scans"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, results.NewStorageError(backendSQLite, "count", err)
	}
	return count, nil
}

// Delete implements results.Storage.
func (s *SQLiteStorage) Delete(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.deleteWhere(ctx, "id IN ("+placeholders+")", args...)
}

// DeleteBefore implements results.Storage.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteWhere(ctx, "started_at < ?", cutoff.UnixNano())
}

func (s *SQLiteStorage) deleteWhere(ctx context.Context, where string, args ...any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, results.NewStorageError(backendSQLite, "delete", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM findings WHERE scan_id IN (SELECT id FROM scans WHERE "+where+")", args...); err != nil {
		return 0, results.NewStorageError(backendSQLite, "delete", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM scans WHERE "+where, args...)
	if err != nil {
		return 0, results.NewStorageError(backendSQLite, "delete", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, results.NewStorageError(backendSQLite, "delete", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, results.NewStorageError(backendSQLite, "delete", err)
	}
	return count, nil
}

// Ping implements results.Storage.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return results.NewStorageError(backendSQLite, "ping", err)
	}
	return nil
}

// Close implements results.Storage.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return results.NewStorageError(backendSQLite, "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause returns the WHERE clause (without the keyword) for q.
func buildWhereClause(q *results.Query) (string, []any) {
	var conditions []string
	var args []any

	if q.StartTime != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, q.EndTime.UnixNano())
	}
	if q.Target != "" {
		conditions = append(conditions, "target = ?")
		args = append(args, q.Target)
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, q.Status)
	}
	if q.MinFailures != nil {
		conditions = append(conditions, "failures >= ?")
		args = append(args, *q.MinFailures)
	}
	if q.RuleID != "" {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM findings f WHERE f.scan_id = scans.id AND f.rule_id = ?)")
		args = append(args, q.RuleID)
	}

	return strings.Join(conditions, " AND "), args
}

func sortColumn(field string) string {
	switch field {
	case results.SortDuration:
		return "duration"
	case results.SortFailures:
		return "failures"
	case results.SortElements:
		return "elements"
	default:
		return "started_at"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*scan.Result, error) {
	var (
		r                            scan.Result
		startedAt, finishedAt, durNS int64
		failures                     int
		counts                       string
	)
	err := row.Scan(
		&r.ID, &r.Target, &r.Status, &startedAt, &finishedAt, &durNS, &r.CatalogVersion,
		&r.Summary.Elements, &r.Summary.Rules, &r.Summary.Evaluations, &failures, &counts,
	)
	if err != nil {
		return nil, err
	}

	r.StartedAt = time.Unix(0, startedAt).UTC()
	r.FinishedAt = time.Unix(0, finishedAt).UTC()
	r.Duration = time.Duration(durNS)
	if err := json.Unmarshal([]byte(counts), &r.Summary.Counts); err != nil {
		return nil, fmt.Errorf("decode counts of scan %s: %w", r.ID, err)
	}
	return &r, nil
}

func scanFinding(row rowScanner) (scan.Finding, error) {
	var (
		f                                            scan.Finding
		code                                         string
		name, description, howToFix, standard, cause sql.NullString
	)
	err := row.Scan(&f.RuleID, &f.ElementID, &f.ControlType, &name,
		&code, &description, &howToFix, &standard, &cause)
	if err != nil {
		return f, err
	}
	f.Code, err = rule.ParseEvaluationCode(code)
	if err != nil {
		return f, err
	}
	f.ElementName = name.String
	f.Description = description.String
	f.HowToFix = howToFix.String
	f.Standard = standard.String
	f.Error = cause.String
	return f, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
