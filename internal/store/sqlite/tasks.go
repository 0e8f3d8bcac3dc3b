package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/types"
)

const taskSelect = `
	SELECT id, name, cron_expression, timezone, command, working_directory, timeout, env,
	       enabled, worktree, tags, repo_id, created_at, updated_at
	FROM tasks`

func (s *Store) InsertTask(ctx context.Context, t *types.Task) error {
	if t.ID == "" {
		t.ID = "task_" + uuid.NewString()[:8]
	}
	if t.Timezone == "" {
		t.Timezone = "local"
	}
	if t.TimeoutSeconds == 0 {
		t.TimeoutSeconds = 300
	}
	env, _ := json.Marshal(mapStringOrEmpty(t.Env))
	tags, _ := json.Marshal(nonNil(t.Tags))

	var repoID sql.NullString
	if t.RepoID != "" {
		repoID = sql.NullString{String: t.RepoID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, cron_expression, timezone, command, working_directory, timeout, env,
			enabled, worktree, tags, repo_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.CronExpression, t.Timezone, t.Command, t.WorkingDirectory, t.TimeoutSeconds, string(env),
		boolToInt(t.Enabled), boolToInt(t.Worktree), string(tags), repoID)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("task", id)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id)
	t, err := scanTaskInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merrors.NotFound("task", id)
	}
	return t, err
}

func (s *Store) ListTasks(ctx context.Context) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, taskSelect+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*types.Task
	for rows.Next() {
		t, err := scanTaskInto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTaskInto(r rowScanner) (*types.Task, error) {
	var t types.Task
	var envJSON, tagsJSON string
	var repoID sql.NullString
	var enabled, worktree int
	var createdAt, updatedAt string

	err := r.Scan(&t.ID, &t.Name, &t.CronExpression, &t.Timezone, &t.Command, &t.WorkingDirectory, &t.TimeoutSeconds,
		&envJSON, &enabled, &worktree, &tagsJSON, &repoID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Enabled = enabled != 0
	t.Worktree = worktree != 0
	t.RepoID = repoID.String
	if err := json.Unmarshal([]byte(envJSON), &t.Env); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, err
	}
	t.CreatedAt, _ = time.Parse(sqliteTimeLayout, createdAt)
	t.UpdatedAt, _ = time.Parse(sqliteTimeLayout, updatedAt)
	return &t, nil
}

func mapStringOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
