// Package state persists what the bot already did with each ad file, so
// selectors like "changed" and "due" can compare against the last run.
package state

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// AdState is the persisted record for one ad file.
type AdState struct {
	Path        string
	AdID        *int64
	ContentHash string
	PublishedAt *time.Time
	UpdatedAt   time.Time
}

// Store wraps the SQLite database holding ad state.
type Store struct {
	db *sql.DB
}

// Open initializes the database at path and runs pending migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("path", path).Msg("State database opened")
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite3 migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to init migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply state migrations: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the state for an ad file path, or nil when none is recorded.
func (s *Store) Get(ctx context.Context, path string) (*AdState, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, ad_id, content_hash, published_at, updated_at FROM ad_state WHERE path = ?`, path)

	var st AdState
	err := row.Scan(&st.Path, &st.AdID, &st.ContentHash, &st.PublishedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ad state for %s: %w", path, err)
	}
	return &st, nil
}

// Upsert records the state for an ad file path, replacing any previous row.
func (s *Store) Upsert(ctx context.Context, st *AdState) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ad_state (path, ad_id, content_hash, published_at, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(path) DO UPDATE SET
		 	ad_id = excluded.ad_id,
		 	content_hash = excluded.content_hash,
		 	published_at = excluded.published_at,
		 	updated_at = CURRENT_TIMESTAMP`,
		st.Path, st.AdID, st.ContentHash, st.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert ad state for %s: %w", st.Path, err)
	}
	return nil
}

// Delete removes the state for an ad file path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ad_state WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete ad state for %s: %w", path, err)
	}
	return nil
}
