// Package sqlite is the single Store implementation, backed by
// ncruces/go-sqlite3 (a pure-Go, WASM-hosted SQLite build run under
// wazero — the same driver BeadsLog's internal/storage/sqlite opens with
// the same pragma set: WAL journaling, foreign keys on, a busy timeout
// so concurrent readers don't see SQLITE_BUSY during a writer's
// transaction).
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/untoldecay/matrix/internal/store"
)

// Store is the concrete, single-writer Store implementation.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if necessary) the database at cfg.Path, applies
// the pragma set, and runs any pending migrations.
func New(cfg store.Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create db dir: %w", err)
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		cfg.Path, busyTimeout)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite has exactly one writer; serialize all access through a
	// single connection so WAL checkpointing and our EXCLUSIVE-mode
	// migrations never race against a pooled second connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: cfg.Path}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error        { return s.db.Close() }
func (s *Store) Path() string        { return s.path }
func (s *Store) UnderlyingDB() *sql.DB { return s.db }
