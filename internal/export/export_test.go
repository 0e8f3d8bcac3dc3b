package export

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/store/sqlite"
	"github.com/untoldecay/matrix/internal/types"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(store.Config{Path: filepath.Join(t.TempDir(), "matrix.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, db store.Store) {
	t.Helper()
	ctx := context.Background()

	sol := &types.Solution{
		Problem:      "flaky test due to real clock",
		SolutionText: "inject a fake clock",
		Scope:        types.ScopeGlobal,
		Category:     types.CategoryBugfix,
		Tags:         []string{"go", "testing"},
	}
	require.NoError(t, db.InsertSolution(ctx, sol))

	fail := &types.Failure{
		ErrorType:      types.ErrorRuntime,
		ErrorMessage:   "nil pointer dereference",
		ErrorSignature: "sig-1",
		RootCause:      "unchecked nil",
	}
	require.NoError(t, db.InsertFailure(ctx, fail))

	repo := &types.Repo{
		Name:      "widget-service",
		Path:      "/repos/widget-service",
		Languages: []string{"go"},
	}
	require.NoError(t, db.UpsertRepo(ctx, repo))
}

func TestJSONExportIncludesAllCollectionsAndExcludesEmbeddings(t *testing.T) {
	db := newTestStore(t)
	seed(t, db)

	var buf bytes.Buffer
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, JSON(context.Background(), db, &buf, now))

	require.NotContains(t, buf.String(), "ProblemEmbedding")
	require.NotContains(t, buf.String(), "FingerprintEmbedding")

	var bundle Bundle
	require.NoError(t, json.Unmarshal(buf.Bytes(), &bundle))
	require.Len(t, bundle.Solutions, 1)
	require.Len(t, bundle.Failures, 1)
	require.Len(t, bundle.Repos, 1)
	require.Equal(t, Version, bundle.Version)
	require.True(t, bundle.ExportedAt.Equal(now))
	require.Equal(t, "flaky test due to real clock", bundle.Solutions[0].Problem)
}

func TestCSVExportIsPerTypeWithHeaderRow(t *testing.T) {
	db := newTestStore(t)
	seed(t, db)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, CSV(ctx, db, &buf, TypeSolutions))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "id,repo_id,problem,solution,scope,tags,score,uses,successes,category,created_at", lines[0])
	require.Contains(t, lines[1], "flaky test due to real clock")

	buf.Reset()
	require.NoError(t, CSV(ctx, db, &buf, TypeFailures))
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "nil pointer dereference")

	buf.Reset()
	require.NoError(t, CSV(ctx, db, &buf, TypeRepos))
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "widget-service")
}

func TestCSVExportRejectsUnknownType(t *testing.T) {
	db := newTestStore(t)
	var buf bytes.Buffer
	err := CSV(context.Background(), db, &buf, Type("all"))
	require.Error(t, err)
}
