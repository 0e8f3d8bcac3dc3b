package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/untoldecay/matrix/internal/embedding"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(store.Config{Path: filepath.Join(t.TempDir(), "matrix.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSolutionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sol := &types.Solution{
		Problem:          "nil pointer dereference in http handler",
		ProblemEmbedding: embedding.Embed("nil pointer dereference in http handler"),
		SolutionText:     "check for nil before dereferencing the request body",
		Scope:            types.ScopeGlobal,
		Category:         types.CategoryBugfix,
		Tags:             []string{"go", "http"},
	}
	require.NoError(t, s.InsertSolution(ctx, sol))
	require.NotEmpty(t, sol.ID)

	got, err := s.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, sol.Problem, got.Problem)
	require.Equal(t, sol.SolutionText, got.SolutionText)
	require.Equal(t, []string{"go", "http"}, got.Tags)
	require.Equal(t, 0.5, got.Score)
	require.Len(t, got.ProblemEmbedding, embedding.Dimension)

	require.NoError(t, s.TouchSolutionUse(ctx, []string{sol.ID}))
	got, err = s.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Uses)
	require.NotNil(t, got.LastUsedAt)

	require.NoError(t, s.UpdateSolutionScore(ctx, sol.ID, 0.6, types.OutcomeSuccess))
	got, err = s.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, 0.6, got.Score)
	require.Equal(t, 1, got.Uses)
	require.Equal(t, 1, got.Successes)

	require.NoError(t, s.SetPromotedToSkill(ctx, sol.ID, "**When to use:** ..."))
	got, err = s.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, "**When to use:** ...", got.PromotedToSkill)
}

func TestFailureCollapsesOnSignature(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	f := &types.Failure{
		ErrorType:      types.ErrorRuntime,
		ErrorMessage:   "panic: runtime error: invalid memory address",
		ErrorSignature: "deadbeefcafef00d",
		ErrorEmbedding: embedding.Embed("panic: runtime error: invalid memory address"),
	}
	require.NoError(t, s.InsertFailure(ctx, f))

	_, err := s.GetFailureBySignature(ctx, "does-not-exist")
	require.Error(t, err)

	got, err := s.GetFailureBySignature(ctx, f.ErrorSignature)
	require.NoError(t, err)
	require.Equal(t, 1, got.Occurrences)

	got.Occurrences++
	require.NoError(t, s.UpdateFailure(ctx, got))

	reloaded, err := s.GetFailureBySignature(ctx, f.ErrorSignature)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Occurrences)
}

func TestWarningRepoScopeWinsOverGlobal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	repo := &types.Repo{Name: "demo", Path: "/tmp/demo"}
	require.NoError(t, s.UpsertRepo(ctx, repo))

	require.NoError(t, s.InsertWarning(ctx, &types.Warning{
		Type: types.WarningPackage, Target: "left-pad", Reason: "trivial", Severity: types.SeverityWarn,
	}))
	require.NoError(t, s.InsertWarning(ctx, &types.Warning{
		Type: types.WarningPackage, Target: "left-pad", Reason: "banned here specifically", Severity: types.SeverityBlock, RepoID: repo.ID,
	}))

	w, err := s.FindWarning(ctx, types.WarningPackage, "left-pad", "", repo.ID)
	require.NoError(t, err)
	require.Equal(t, types.SeverityBlock, w.Severity)

	w, err = s.FindWarning(ctx, types.WarningPackage, "left-pad", "", "")
	require.NoError(t, err)
	require.Equal(t, types.SeverityWarn, w.Severity)
}

func TestIndexerReplaceSymbolsAndImports(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	repo := &types.Repo{Name: "demo", Path: "/tmp/demo2"}
	require.NoError(t, s.UpsertRepo(ctx, repo))

	fileID, err := s.UpsertRepoFile(ctx, &types.RepoFile{RepoID: repo.ID, FilePath: "main.go", MTime: 1000})
	require.NoError(t, err)

	err = s.ReplaceFileSymbolsAndImports(ctx, fileID, repo.ID,
		[]*types.Symbol{{Name: "Run", Kind: types.SymbolFunction, Line: 10, Exported: true}},
		[]*types.Import{{ImportedName: "fmt", SourcePath: "fmt", Line: 3}})
	require.NoError(t, err)

	defs, err := s.FindDefinitions(ctx, repo.ID, "Run", "", "")
	require.NoError(t, err)
	require.Len(t, defs, 1)

	files, symbols, imports, _, err := s.GetIndexStatus(ctx, repo.ID)
	require.NoError(t, err)
	require.Equal(t, 1, files)
	require.Equal(t, 1, symbols)
	require.Equal(t, 1, imports)
}

func TestApiCacheTTL(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SetCached(ctx, "gh:repo:foo", []byte(`{"ok":true}`)))

	data, ok, err := s.GetCached(ctx, "gh:repo:foo", 86400)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"ok":true}`, string(data))

	_, ok, err = s.GetCached(ctx, "gh:repo:foo", 0)
	require.NoError(t, err)
	require.False(t, ok)
}
