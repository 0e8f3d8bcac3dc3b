package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/store/sqlite"
	"github.com/untoldecay/matrix/internal/types"
)

// fakeRegistrar stands in for the platform scheduler so tests never
// shell out to crontab/launchctl.
type fakeRegistrar struct {
	registered   map[string]*types.Task
	failRegister bool
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{registered: map[string]*types.Task{}}
}

func (f *fakeRegistrar) Register(task *types.Task) error {
	if f.failRegister {
		return errors.New("simulated platform registration failure")
	}
	f.registered[task.ID] = task
	return nil
}

func (f *fakeRegistrar) Unregister(taskID string) error {
	delete(f.registered, taskID)
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, store.Store, *fakeRegistrar) {
	t.Helper()
	db, err := sqlite.New(store.Config{Path: filepath.Join(t.TempDir(), "matrix.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := newFakeRegistrar()
	return New(db, reg), db, reg
}

func TestAddRegistersAndPersistsTask(t *testing.T) {
	ctx := context.Background()
	s, db, reg := newTestScheduler(t)

	task, err := s.Add(ctx, AddInput{
		Name:     "nightly build",
		Schedule: "daily at 9am",
		Command:  "make build",
	})
	require.NoError(t, err)
	require.Equal(t, "0 9 * * *", task.CronExpression)
	require.Contains(t, reg.registered, task.ID)

	stored, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, task.Name, stored.Name)
}

func TestAddRollsBackOnRegistrationFailure(t *testing.T) {
	ctx := context.Background()
	s, db, reg := newTestScheduler(t)
	reg.failRegister = true

	_, err := s.Add(ctx, AddInput{
		Name:     "broken",
		Schedule: "hourly",
		Command:  "true",
	})
	require.Error(t, err)

	tasks, err := db.ListTasks(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestAddRejectsInvalidSchedule(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t)

	_, err := s.Add(ctx, AddInput{Name: "bad", Schedule: "not a schedule", Command: "true"})
	require.Error(t, err)
}

func TestRemoveUnregistersAndDeletes(t *testing.T) {
	ctx := context.Background()
	s, db, reg := newTestScheduler(t)

	task, err := s.Add(ctx, AddInput{Name: "t", Schedule: "hourly", Command: "true"})
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, task.ID))
	require.NotContains(t, reg.registered, task.ID)

	_, err = db.GetTask(ctx, task.ID)
	require.Error(t, err)
}

func TestRunExecutesCommandAndRecordsExecution(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newTestScheduler(t)

	task, err := s.Add(ctx, AddInput{
		Name:             "echo",
		Schedule:         "hourly",
		Command:          "echo hello",
		WorkingDirectory: t.TempDir(),
		TimeoutSeconds:   5,
	})
	require.NoError(t, err)

	exec, err := s.Run(ctx, task.ID, types.TriggeredManual)
	require.NoError(t, err)
	require.Equal(t, types.ExecSuccess, exec.Status)
	require.NotNil(t, exec.ExitCode)
	require.Equal(t, 0, *exec.ExitCode)
	require.Contains(t, exec.OutputPreview, "hello")

	history, err := db.ListExecutions(ctx, task.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestRunMarksTimeoutOnSlowCommand(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t)

	task, err := s.Add(ctx, AddInput{
		Name:             "slow",
		Schedule:         "hourly",
		Command:          "sleep 5",
		WorkingDirectory: t.TempDir(),
		TimeoutSeconds:   1,
	})
	require.NoError(t, err)

	exec, err := s.Run(ctx, task.ID, types.TriggeredManual)
	require.NoError(t, err)
	require.Equal(t, types.ExecTimeout, exec.Status)
}
