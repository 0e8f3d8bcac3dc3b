package sqlite

import (
	"database/sql"
	"fmt"
)

// migration is one forward step in schema history. Each Func must be
// idempotent: re-running it against a database that already has its
// effect applied must be a no-op, matching BeadsLog's migration style
// of guarding every ALTER/CREATE with an existence check rather than
// relying solely on the version table to skip it. Func runs against
// the shared *sql.DB rather than a *sql.Tx because the connection pool
// is pinned to size 1 and the exclusive transaction is opened with a
// raw `BEGIN EXCLUSIVE` statement, a mode database/sql's Tx type has no
// portable way to request.
type migration struct {
	Version int
	Name    string
	Func    func(db *sql.DB) error
}

// migrationsList is the ordered history of schema changes. A fresh
// database created from schema.go and a database built by applying
// every entry here in order must be structurally identical — see
// migrate_test.go, which asserts this for §8 invariant 1.
var migrationsList = []migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Func: func(db *sql.DB) error {
			_, err := db.Exec(schema)
			return err
		},
	},
}

// migrate brings db up to the latest schema version, recording each
// applied step in schema_migrations. Each step runs inside a single
// EXCLUSIVE transaction so a crash mid-migration never leaves the
// version table and the schema disagreeing about what was applied.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int]bool{}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, m := range migrationsList {
		if applied[m.Version] {
			continue
		}
		if err := runMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func runMigration(db *sql.DB, m migration) error {
	if _, err := db.Exec(`PRAGMA foreign_keys = OFF`); err != nil {
		return err
	}
	defer db.Exec(`PRAGMA foreign_keys = ON`)

	if _, err := db.Exec(`BEGIN EXCLUSIVE`); err != nil {
		return fmt.Errorf("begin exclusive: %w", err)
	}

	if err := m.Func(db); err != nil {
		db.Exec(`ROLLBACK`)
		return err
	}
	if _, err := db.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		db.Exec(`ROLLBACK`)
		return err
	}
	if _, err := db.Exec(`COMMIT`); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
