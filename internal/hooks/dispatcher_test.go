package hooks

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/untoldecay/matrix/internal/memory"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/store/sqlite"
	"github.com/untoldecay/matrix/internal/types"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	db, err := sqlite.New(store.Config{Path: filepath.Join(t.TempDir(), "matrix.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return Deps{DB: db, Engine: memory.New(db)}
}

func TestDispatcherUnknownEventProceeds(t *testing.T) {
	d := NewDispatcher()
	var out bytes.Buffer
	code := d.Run(bytes.NewBufferString(`{"hook_event_name":"SomethingElse"}`), &out)
	require.Equal(t, ExitProceed, code)

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.True(t, resp.Continue)
}

func TestDispatcherMalformedInput(t *testing.T) {
	d := NewDispatcher()
	var out bytes.Buffer
	code := d.Run(bytes.NewBufferString(`not json`), &out)
	require.Equal(t, ExitNonBlockingErr, code)
}

func TestPreToolUseBlocksOnBlockSeverityWarning(t *testing.T) {
	deps := newTestDeps(t)
	ctx := t.Context()
	require.NoError(t, deps.DB.InsertWarning(ctx, &types.Warning{
		Type:     types.WarningFile,
		Target:   "legacy/parser.go",
		Reason:   "hand-rolled parser, do not touch without review",
		Severity: types.SeverityBlock,
	}))

	d := NewDispatcher()
	RegisterDefaults(d, deps)

	input, err := json.Marshal(map[string]string{"file_path": "legacy/parser.go"})
	require.NoError(t, err)
	event := Event{HookEventName: EventPreToolUse, ToolInput: input}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var out bytes.Buffer
	code := d.Run(bytes.NewReader(payload), &out)
	require.Equal(t, ExitBlockingErr, code)

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.False(t, resp.Continue)
}

func TestPreToolUseProceedsWithNoWarning(t *testing.T) {
	deps := newTestDeps(t)
	d := NewDispatcher()
	RegisterDefaults(d, deps)

	input, err := json.Marshal(map[string]string{"file_path": "fresh/file.go"})
	require.NoError(t, err)
	event := Event{HookEventName: EventPreToolUse, ToolInput: input}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var out bytes.Buffer
	code := d.Run(bytes.NewReader(payload), &out)
	require.Equal(t, ExitProceed, code)
}
