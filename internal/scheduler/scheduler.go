package scheduler

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/matrix/internal/debug"
	"github.com/untoldecay/matrix/internal/paths"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

const defaultTimeoutSeconds = 300

// Scheduler owns the task lifecycle of spec.md §4.11.
type Scheduler struct {
	db        store.Store
	registrar Registrar
}

func New(db store.Store, registrar Registrar) *Scheduler {
	if registrar == nil {
		registrar = NewRegistrar()
	}
	return &Scheduler{db: db, registrar: registrar}
}

// AddInput is the user-supplied half of a Task.
type AddInput struct {
	Name             string
	Schedule         string // raw cron expression or a recognized NL phrase
	Timezone         string
	Command          string
	WorkingDirectory string
	TimeoutSeconds   int
	Env              map[string]string
	Worktree         bool
	Tags             []string
	RepoID           string
}

// Add validates and persists a task, then registers it with the
// platform scheduling facility. If native registration fails, the
// just-inserted row is deleted (compensating rollback, spec.md §4.11).
func (s *Scheduler) Add(ctx context.Context, in AddInput) (*types.Task, error) {
	cronExpr, err := ResolveCronExpression(in.Schedule)
	if err != nil {
		return nil, err
	}

	timeout := in.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}
	timezone := in.Timezone
	if timezone == "" {
		timezone = "local"
	}

	now := time.Now()
	task := &types.Task{
		ID:               "task_" + uuid.NewString()[:8],
		Name:             in.Name,
		CronExpression:   cronExpr,
		Timezone:         timezone,
		Command:          in.Command,
		WorkingDirectory: in.WorkingDirectory,
		TimeoutSeconds:   timeout,
		Env:              in.Env,
		Enabled:          true,
		Worktree:         in.Worktree,
		Tags:             in.Tags,
		RepoID:           in.RepoID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.db.InsertTask(ctx, task); err != nil {
		return nil, fmt.Errorf("scheduler: insert task: %w", err)
	}

	if err := s.registrar.Register(task); err != nil {
		if delErr := s.db.DeleteTask(ctx, task.ID); delErr != nil {
			debug.Logf("scheduler: compensating delete of task %s also failed: %v", task.ID, delErr)
		}
		return nil, fmt.Errorf("scheduler: registering task with platform scheduler: %w", err)
	}

	return task, nil
}

// List returns every task.
func (s *Scheduler) List(ctx context.Context) ([]*types.Task, error) {
	return s.db.ListTasks(ctx)
}

// Remove unregisters and deletes a task.
func (s *Scheduler) Remove(ctx context.Context, taskID string) error {
	if err := s.registrar.Unregister(taskID); err != nil {
		debug.Logf("scheduler: unregister task %s: %v (continuing with deletion)", taskID, err)
	}
	return s.db.DeleteTask(ctx, taskID)
}

// History returns the most recent executions of a task, newest first.
func (s *Scheduler) History(ctx context.Context, taskID string, limit int) ([]*types.Execution, error) {
	return s.db.ListExecutions(ctx, taskID, limit)
}

// Logs returns the tail of a task's stdout/stderr log files.
func (s *Scheduler) Logs(taskID string, maxLines int) (stdout, stderr []string, err error) {
	dir, err := paths.DreamerLogsDir()
	if err != nil {
		return nil, nil, err
	}
	stdout, err = tailLines(filepath.Join(dir, taskID+".out.log"), maxLines)
	if err != nil {
		return nil, nil, err
	}
	stderr, err = tailLines(filepath.Join(dir, taskID+".err.log"), maxLines)
	if err != nil {
		return nil, nil, err
	}
	return stdout, stderr, nil
}

func tailLines(path string, maxLines int) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if len(lines) > maxLines {
			lines = lines[1:]
		}
	}
	return lines, sc.Err()
}

// Run executes a task immediately, outside its schedule (spec.md §4.11
// "run(task_id)"), recording the observed run as a single Execution row
// updated in place.
func (s *Scheduler) Run(ctx context.Context, taskID string, triggeredBy types.TriggeredBy) (*types.Execution, error) {
	task, err := s.db.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	execution := &types.Execution{
		ID:             "exec_" + uuid.NewString()[:8],
		TaskID:         task.ID,
		StartedAt:      time.Now(),
		Status:         types.ExecRunning,
		TriggeredBy:    triggeredBy,
		TaskName:       task.Name,
		ProjectPath:    task.WorkingDirectory,
		CronExpression: task.CronExpression,
	}
	if err := s.db.InsertExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("scheduler: insert execution: %w", err)
	}

	timeout := time.Duration(task.TimeoutSeconds) * time.Second
	result := Run(ctx, task.Command, task.WorkingDirectory, task.Env, timeout)

	completed := time.Now()
	execution.CompletedAt = &completed
	execution.Status = result.Status
	execution.ExitCode = result.ExitCode
	execution.Error = result.Error
	execution.OutputPreview = result.OutputPreview
	execution.DurationMS = result.DurationMS

	if err := s.db.UpdateExecution(ctx, execution); err != nil {
		return execution, fmt.Errorf("scheduler: update execution: %w", err)
	}
	return execution, nil
}
