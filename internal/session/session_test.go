package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("MATRIX_HOME", t.TempDir())

	ctx := &Context{
		SessionID: "sess-abc123",
		Mode:      ModeInteractive,
		StartedAt: time.Now(),
		RepoRoot:  "/repos/widget-service",
		RepoID:    "repo_deadbeef",
	}
	require.NoError(t, Save(ctx))

	got, err := Load("sess-abc123")
	require.NoError(t, err)
	require.Equal(t, ctx.SessionID, got.SessionID)
	require.Equal(t, ctx.Mode, got.Mode)
	require.Equal(t, ctx.RepoRoot, got.RepoRoot)
	require.Equal(t, ctx.RepoID, got.RepoID)
}

func TestLoadReturnsExpiredError(t *testing.T) {
	t.Setenv("MATRIX_HOME", t.TempDir())

	ctx := &Context{
		SessionID: "sess-old",
		Mode:      ModeInteractive,
		StartedAt: time.Now().Add(-25 * time.Hour),
	}
	require.NoError(t, Save(ctx))

	got, err := Load("sess-old")
	require.Error(t, err)
	var expired *ErrExpired
	require.True(t, errors.As(err, &expired))
	require.NotNil(t, got)
}

func TestDeleteRemovesFileAndIsIdempotent(t *testing.T) {
	t.Setenv("MATRIX_HOME", t.TempDir())

	ctx := &Context{SessionID: "sess-del", Mode: ModeAutonomous, StartedAt: time.Now()}
	require.NoError(t, Save(ctx))

	require.NoError(t, Delete("sess-del"))
	_, err := Load("sess-del")
	require.Error(t, err)

	require.NoError(t, Delete("sess-del"))
}

func TestReapRemovesOnlyExpiredFiles(t *testing.T) {
	t.Setenv("MATRIX_HOME", t.TempDir())

	fresh := &Context{SessionID: "sess-fresh", Mode: ModeInteractive, StartedAt: time.Now()}
	stale := &Context{SessionID: "sess-stale", Mode: ModeInteractive, StartedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, Save(fresh))
	require.NoError(t, Save(stale))

	n, err := Reap()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = Load("sess-fresh")
	require.NoError(t, err)
	_, err = Load("sess-stale")
	require.Error(t, err)
}
