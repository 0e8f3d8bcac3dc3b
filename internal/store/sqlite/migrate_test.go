package sqlite

import (
	"database/sql"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"

	"github.com/untoldecay/matrix/internal/store"
)

// TestFreshSchemaMatchesMigrationHistory asserts §8 invariant 1: a
// database created from scratch via New (which runs migrationsList) and
// one dumped straight from the schema constant expose the same set of
// tables and columns.
func TestFreshSchemaMatchesMigrationHistory(t *testing.T) {
	dir := t.TempDir()

	migrated, err := New(store.Config{Path: filepath.Join(dir, "migrated.db")})
	require.NoError(t, err)
	defer migrated.Close()

	direct, err := sql.Open("sqlite3", "file:"+filepath.Join(dir, "direct.db"))
	require.NoError(t, err)
	defer direct.Close()
	_, err = direct.Exec(schema)
	require.NoError(t, err)

	require.Equal(t, tableColumns(t, direct), tableColumns(t, migrated.db))
}

func tableColumns(t *testing.T, db *sql.DB) map[string][]string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())

	out := map[string][]string{}
	for _, name := range names {
		colRows, err := db.Query(`PRAGMA table_info(` + name + `)`)
		require.NoError(t, err)
		var cols []string
		for colRows.Next() {
			var cid int
			var colName, colType string
			var notNull, pk int
			var dflt sql.NullString
			require.NoError(t, colRows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk))
			cols = append(cols, colName)
		}
		colRows.Close()
		sort.Strings(cols)
		out[name] = cols
	}
	return out
}

func TestMigrateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s, err := New(store.Config{Path: filepath.Join(dir, "matrix.db")})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, migrate(s.db))
	require.NoError(t, migrate(s.db))
}
