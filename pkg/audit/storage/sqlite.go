// Package storage provides the SQLite persistence backend for audit
// records.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"railguard-io/railguard/pkg/audit"
)

// schema is the violations table definition.
const schema = `
CREATE TABLE IF NOT EXISTS violations (
	id          TEXT PRIMARY KEY,
	surface     TEXT NOT NULL,
	rule        TEXT NOT NULL,
	action      TEXT NOT NULL,
	matched     TEXT NOT NULL,
	generation  INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_violations_created_at ON violations(created_at);
CREATE INDEX IF NOT EXISTS idx_violations_rule ON violations(rule);
`

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path. Parent directories are created.
	Path string

	// MaxOpenConns caps open connections. Default: 10.
	MaxOpenConns int

	// BusyTimeout is the SQLite busy timeout. Default: 5s.
	BusyTimeout time.Duration

	// DefaultQueryLimit caps query results when Query.Limit is zero.
	// Default: 100.
	DefaultQueryLimit int
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:              "data/audit.db",
		MaxOpenConns:      10,
		BusyTimeout:       5 * time.Second,
		DefaultQueryLimit: 100,
	}
}

// SQLiteStorage implements audit.Storage on a local SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the audit database.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 10
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if config.DefaultQueryLimit <= 0 {
		config.DefaultQueryLimit = 100
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "audit.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("audit storage initialized", "path", config.Path)
	return s, nil
}

// initialize enables WAL mode and creates the schema.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Store persists one audit record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO violations (id, surface, rule, action, matched, generation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Surface,
		record.Rule,
		record.Action,
		record.Matched,
		record.Generation,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store audit record %q: %w", record.ID, err)
	}
	return nil
}

// Query returns matching records, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	where, args := buildWhere(query)

	limit := s.config.DefaultQueryLimit
	if query != nil && query.Limit > 0 {
		limit = query.Limit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, surface, rule, action, matched, generation, created_at
		 FROM violations `+where+` ORDER BY created_at DESC LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		var r audit.Record
		if err := rows.Scan(&r.ID, &r.Surface, &r.Rule, &r.Action, &r.Matched, &r.Generation, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	where, args := buildWhere(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM violations "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return count, nil
}

// DeleteBefore removes records created before the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM violations WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit records: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// buildWhere translates a query into a WHERE clause and arguments.
func buildWhere(query *audit.Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var conds []string
	var args []interface{}

	if query.Surface != "" {
		conds = append(conds, "surface = ?")
		args = append(args, query.Surface)
	}
	if query.Rule != "" {
		conds = append(conds, "rule = ?")
		args = append(args, query.Rule)
	}
	if query.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, query.Action)
	}
	if !query.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, query.Since)
	}
	if !query.Until.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, query.Until)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
