package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/types"
)

const executionSelect = `
	SELECT id, task_id, started_at, completed_at, status, triggered_by, duration_ms, exit_code,
	       output_preview, error, task_name, project_path, cron_expression
	FROM executions`

func (s *Store) InsertExecution(ctx context.Context, e *types.Execution) error {
	if e.ID == "" {
		e.ID = "exec_" + uuid.NewString()[:8]
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (id, task_id, started_at, status, triggered_by, task_name, project_path, cron_expression)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.TaskID, e.StartedAt.UTC().Format(sqliteTimeLayout), string(e.Status), string(e.TriggeredBy),
		e.TaskName, e.ProjectPath, e.CronExpression)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

func (s *Store) UpdateExecution(ctx context.Context, e *types.Execution) error {
	var completedAt interface{}
	if e.CompletedAt != nil {
		completedAt = e.CompletedAt.UTC().Format(sqliteTimeLayout)
	}
	var exitCode interface{}
	if e.ExitCode != nil {
		exitCode = *e.ExitCode
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE executions SET completed_at = ?, status = ?, duration_ms = ?, exit_code = ?, output_preview = ?, error = ?
		WHERE id = ?
	`, completedAt, string(e.Status), e.DurationMS, exitCode, e.OutputPreview, e.Error, e.ID)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("execution", e.ID)
	}
	return nil
}

func (s *Store) ListExecutions(ctx context.Context, taskID string, limit int) ([]*types.Execution, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, executionSelect+` WHERE task_id = ? ORDER BY started_at DESC LIMIT ?`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var out []*types.Execution
	for rows.Next() {
		e, err := scanExecutionInto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanExecutionInto(r rowScanner) (*types.Execution, error) {
	var e types.Execution
	var status, triggeredBy string
	var startedAt string
	var completedAt sql.NullString
	var durationMS sql.NullInt64
	var exitCode sql.NullInt64

	err := r.Scan(&e.ID, &e.TaskID, &startedAt, &completedAt, &status, &triggeredBy, &durationMS, &exitCode,
		&e.OutputPreview, &e.Error, &e.TaskName, &e.ProjectPath, &e.CronExpression)
	if err != nil {
		return nil, err
	}
	e.Status = types.ExecutionStatus(status)
	e.TriggeredBy = types.TriggeredBy(triggeredBy)
	e.StartedAt, _ = time.Parse(sqliteTimeLayout, startedAt)
	if completedAt.Valid {
		t, _ := time.Parse(sqliteTimeLayout, completedAt.String)
		e.CompletedAt = &t
	}
	e.DurationMS = durationMS.Int64
	if exitCode.Valid {
		v := int(exitCode.Int64)
		e.ExitCode = &v
	}
	return &e, nil
}
