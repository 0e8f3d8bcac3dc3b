package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/types"
)

const warningSelect = `SELECT id, type, target, ecosystem, reason, severity, repo_id FROM warnings`

func (s *Store) InsertWarning(ctx context.Context, w *types.Warning) error {
	if w.ID == "" {
		w.ID = "warn_" + uuid.NewString()[:8]
	}
	var ecosystem, repoID sql.NullString
	if w.Ecosystem != "" {
		ecosystem = sql.NullString{String: w.Ecosystem, Valid: true}
	}
	if w.RepoID != "" {
		repoID = sql.NullString{String: w.RepoID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warnings (id, type, target, ecosystem, reason, severity, repo_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.ID, string(w.Type), w.Target, ecosystem, w.Reason, string(w.Severity), repoID)
	if err != nil {
		return fmt.Errorf("insert warning: %w", err)
	}
	return nil
}

func (s *Store) DeleteWarning(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM warnings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete warning: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("warning", id)
	}
	return nil
}

// ListWarnings returns warnings visible to repoID: global warnings
// (repo_id IS NULL) plus any scoped to repoID itself.
func (s *Store) ListWarnings(ctx context.Context, repoID string) ([]*types.Warning, error) {
	rows, err := s.db.QueryContext(ctx, warningSelect+` WHERE repo_id IS NULL OR repo_id = ?`, repoID)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	defer rows.Close()

	var out []*types.Warning
	for rows.Next() {
		w, err := scanWarningRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// FindWarning returns the repo-scoped match if one exists, else the
// global match, matching §8 invariant 10 (repo-scoped wins over global).
func (s *Store) FindWarning(ctx context.Context, wtype types.WarningType, target, ecosystem, repoID string) (*types.Warning, error) {
	if repoID != "" {
		row := s.db.QueryRowContext(ctx, warningSelect+` WHERE type = ? AND target = ? AND IFNULL(ecosystem,'') = ? AND repo_id = ?`,
			string(wtype), target, ecosystem, repoID)
		w, err := scanWarning(row)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, sql.ErrNoRows) && !merrors.Is(err, merrors.KindNotFound) {
			return nil, err
		}
	}
	row := s.db.QueryRowContext(ctx, warningSelect+` WHERE type = ? AND target = ? AND IFNULL(ecosystem,'') = ? AND repo_id IS NULL`,
		string(wtype), target, ecosystem)
	return scanWarning(row)
}

func scanWarning(row *sql.Row) (*types.Warning, error) {
	w, err := scanWarningInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merrors.NotFound("warning", "")
	}
	return w, err
}

func scanWarningRows(rows *sql.Rows) (*types.Warning, error) { return scanWarningInto(rows) }

func scanWarningInto(r rowScanner) (*types.Warning, error) {
	var w types.Warning
	var wtype, severity string
	var ecosystem, repoID sql.NullString
	if err := r.Scan(&w.ID, &wtype, &w.Target, &ecosystem, &w.Reason, &severity, &repoID); err != nil {
		return nil, err
	}
	w.Type = types.WarningType(wtype)
	w.Severity = types.Severity(severity)
	w.Ecosystem = ecosystem.String
	w.RepoID = repoID.String
	return &w, nil
}
