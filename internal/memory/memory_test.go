package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sqlitestore "github.com/untoldecay/matrix/internal/store/sqlite"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := sqlitestore.New(store.Config{Path: filepath.Join(t.TempDir(), "matrix.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func TestStoreAndRecall(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	sol, err := e.Store(ctx, StoreInput{
		Problem:      "connection refused when calling the payments service",
		SolutionText: "retry with exponential backoff and a circuit breaker",
		Category:     types.CategoryBugfix,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sol.ID)

	rows, err := e.Recall(ctx, RecallInput{Query: "payments service connection refused", MinScore: -1})
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	require.Equal(t, sol.ID, rows[0].Solution.ID)
	require.Equal(t, 0.5, rows[0].SuccessRate)
}

func TestRewardClampsToFloorAndCeiling(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	sol, err := e.Store(ctx, StoreInput{Problem: "p", SolutionText: "s"})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := e.Reward(ctx, sol.ID, types.OutcomeFailure, "")
		require.NoError(t, err)
	}
	got, err := e.db.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, 0.1, got.Score)

	for i := 0; i < 200; i++ {
		_, err := e.Reward(ctx, sol.ID, types.OutcomeSuccess, "")
		require.NoError(t, err)
	}
	got, err = e.db.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.LessOrEqual(t, got.Score, 1.0)
	require.InDelta(t, 1.0, got.Score, 0.001)
}

func TestRecallIncrementsUsesBeforeReward(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	sol, err := e.Store(ctx, StoreInput{
		Problem:      "connection refused when calling the payments service",
		SolutionText: "retry with exponential backoff and a circuit breaker",
	})
	require.NoError(t, err)

	got, err := e.db.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Uses)

	rows, err := e.Recall(ctx, RecallInput{Query: "payments service connection refused", MinScore: -1})
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	got, err = e.db.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Uses, "recall alone must increment uses per §4.3 step 7")
	require.NotNil(t, got.LastUsedAt)
	require.Equal(t, 0, got.Successes, "reward counters must not move until a reward is recorded")
}

func TestRewardAppliesScoreAndUsageLogAtomically(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	sol, err := e.Store(ctx, StoreInput{Problem: "p", SolutionText: "s"})
	require.NoError(t, err)

	_, err = e.Reward(ctx, sol.ID, types.OutcomeSuccess, "worked")
	require.NoError(t, err)

	got, err := e.db.GetSolution(ctx, sol.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Successes)
	require.Equal(t, 0, got.Uses, "reward must not touch uses — that is recall's side effect")

	var count int
	row := e.db.UnderlyingDB().QueryRowContext(ctx, `SELECT count(*) FROM usage_log WHERE solution_id = ? AND outcome = ?`, sol.ID, string(types.OutcomeSuccess))
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}

func TestRecordFailureCollapsesBySignature(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	f1, err := e.RecordFailure(ctx, RecordFailureInput{
		ErrorType:    types.ErrorRuntime,
		ErrorMessage: `panic at line 42: invalid value "foo"`,
	})
	require.NoError(t, err)
	require.Equal(t, 1, f1.Occurrences)

	f2, err := e.RecordFailure(ctx, RecordFailureInput{
		ErrorType:    types.ErrorRuntime,
		ErrorMessage: `panic at line 99: invalid value "bar"`,
	})
	require.NoError(t, err)
	require.Equal(t, f1.ID, f2.ID)
	require.Equal(t, 2, f2.Occurrences)
}

func TestNormalizeMessageTruncatesAt500(t *testing.T) {
	long := ""
	for i := 0; i < 600; i++ {
		long += "a"
	}
	got := normalizeMessage(long)
	require.LessOrEqual(t, len(got), 500)
}
