package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mail-headers/internal/model"
)

// defaultRecentLimit applies when RecentFetches is called with limit <= 0.
const defaultRecentLimit = 20

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every :memory: connection is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordFetch inserts one fetch outcome.
func (s *SQLiteStore) RecordFetch(ctx context.Context, rec model.FetchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}
	rec.FetchedAt = rec.FetchedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO fetches (
			id, raw_item_id, message_id, base_url,
			outcome, error_kind, status_code, header_bytes, fetched_at
		) VALUES (
			:id, :raw_item_id, :message_id, :base_url,
			:outcome, :error_kind, :status_code, :header_bytes, :fetched_at
		)`, rec)
	if err != nil {
		return fmt.Errorf("recording fetch %s: %w", rec.ID, err)
	}
	return nil
}

// RecentFetches retrieves the newest fetch records.
func (s *SQLiteStore) RecentFetches(
	ctx context.Context,
	limit int,
) ([]model.FetchRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var records []model.FetchRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, raw_item_id, message_id, base_url,
			outcome, error_kind, status_code, header_bytes, fetched_at
		FROM fetches
		ORDER BY fetched_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent fetches: %w", err)
	}
	return records, nil
}

// PruneBefore deletes fetch records older than cutoff.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM fetches WHERE fetched_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning fetches: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
