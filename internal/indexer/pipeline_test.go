package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/indexer/languages"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/store/sqlite"
	"github.com/untoldecay/matrix/internal/types"
)

func newTestPipeline(t *testing.T) (*Pipeline, store.Store) {
	t.Helper()
	db, err := sqlite.New(store.Config{Path: filepath.Join(t.TempDir(), "matrix.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry, err := languages.NewRegistry(grammar.New(t.TempDir()))
	require.NoError(t, err)

	return New(db, registry), db
}

func TestIndexAddsModifiesAndDeletes(t *testing.T) {
	ctx := context.Background()
	p, db := newTestPipeline(t)
	dir := t.TempDir()

	repo := &types.Repo{Name: "fixture", Path: dir}
	require.NoError(t, db.UpsertRepo(ctx, repo))

	mainGo := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(mainGo, []byte("package main\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n"), 0o644))

	res, err := p.Index(ctx, repo.ID, dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)
	require.Equal(t, 0, res.Modified)

	syms, err := db.FindDefinitions(ctx, repo.ID, "Greet", "", "")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	require.True(t, syms[0].Exported)

	// mtime-based diffing needs a strictly later modification time.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(mainGo, []byte("package main\n\nfunc Greet() string {\n\treturn \"hello\"\n}\n\nfunc unexported() {}\n"), 0o644))
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(mainGo, future, future))

	res, err = p.Index(ctx, repo.ID, dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, res.Added)
	require.Equal(t, 1, res.Modified)

	syms, err = db.FindDefinitions(ctx, repo.ID, "unexported", "", "")
	require.NoError(t, err)
	require.Len(t, syms, 1)

	require.NoError(t, os.Remove(mainGo))
	res, err = p.Index(ctx, repo.ID, dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Deleted)

	status, _, _, _, err := db.GetIndexStatus(ctx, repo.ID)
	require.NoError(t, err)
	require.Equal(t, 0, status)
}

func TestIndexSkipsTestFilesByDefault(t *testing.T) {
	ctx := context.Background()
	p, db := newTestPipeline(t)
	dir := t.TempDir()

	repo := &types.Repo{Name: "fixture", Path: dir}
	require.NoError(t, db.UpsertRepo(ctx, repo))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main_test.go"), []byte("package main\n\nfunc TestFoo() {}\n"), 0o644))

	res, err := p.Index(ctx, repo.ID, dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, res.Added)

	res, err = p.Index(ctx, repo.ID, dir, Options{IncludeTests: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)
}
