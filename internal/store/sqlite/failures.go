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

const failureSelect = `
	SELECT id, repo_id, error_type, error_message, error_signature, error_embedding,
	       stack, files, root_cause, fix_applied, prevention, occurrences, created_at, resolved_at
	FROM failures`

func (s *Store) GetFailureBySignature(ctx context.Context, sig string) (*types.Failure, error) {
	row := s.db.QueryRowContext(ctx, failureSelect+` WHERE error_signature = ?`, sig)
	f, err := scanFailure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merrors.NotFound("failure", sig)
	}
	return f, err
}

func (s *Store) InsertFailure(ctx context.Context, f *types.Failure) error {
	if f.ID == "" {
		f.ID = "fail_" + uuid.NewString()[:8]
	}
	if f.Occurrences == 0 {
		f.Occurrences = 1
	}
	files, _ := json.Marshal(nonNil(f.Files))

	var repoID sql.NullString
	if f.RepoID != "" {
		repoID = sql.NullString{String: f.RepoID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failures (id, repo_id, error_type, error_message, error_signature, error_embedding,
			stack, files, root_cause, fix_applied, prevention, occurrences)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, repoID, string(f.ErrorType), f.ErrorMessage, f.ErrorSignature, encodeVector(f.ErrorEmbedding),
		f.Stack, string(files), f.RootCause, f.FixApplied, f.Prevention, f.Occurrences)
	if err != nil {
		return fmt.Errorf("insert failure: %w", err)
	}
	return nil
}

func (s *Store) UpdateFailure(ctx context.Context, f *types.Failure) error {
	files, _ := json.Marshal(nonNil(f.Files))
	var resolvedAt interface{}
	if f.ResolvedAt != nil {
		resolvedAt = f.ResolvedAt.UTC().Format(sqliteTimeLayout)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE failures SET
			error_message = ?, stack = ?, files = ?, root_cause = ?, fix_applied = ?,
			prevention = ?, occurrences = ?, resolved_at = ?
		WHERE id = ?
	`, f.ErrorMessage, f.Stack, string(files), f.RootCause, f.FixApplied, f.Prevention, f.Occurrences, resolvedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update failure: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("failure", f.ID)
	}
	return nil
}

func (s *Store) ScanFailures(ctx context.Context) ([]*types.Failure, error) {
	rows, err := s.db.QueryContext(ctx, failureSelect)
	if err != nil {
		return nil, fmt.Errorf("scan failures: %w", err)
	}
	defer rows.Close()

	var out []*types.Failure
	for rows.Next() {
		f, err := scanFailureInto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFailure(row *sql.Row) (*types.Failure, error) { return scanFailureInto(row) }

func scanFailureInto(r rowScanner) (*types.Failure, error) {
	var f types.Failure
	var repoID sql.NullString
	var errorType string
	var filesJSON string
	var embedding []byte
	var createdAt string
	var resolvedAt sql.NullString

	err := r.Scan(&f.ID, &repoID, &errorType, &f.ErrorMessage, &f.ErrorSignature, &embedding,
		&f.Stack, &filesJSON, &f.RootCause, &f.FixApplied, &f.Prevention, &f.Occurrences, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	f.RepoID = repoID.String
	f.ErrorType = types.ErrorType(errorType)
	if v, ok := decodeVector(embedding); ok {
		f.ErrorEmbedding = v
	}
	if err := json.Unmarshal([]byte(filesJSON), &f.Files); err != nil {
		return nil, err
	}
	f.CreatedAt, _ = time.Parse(sqliteTimeLayout, createdAt)
	if resolvedAt.Valid {
		t, _ := time.Parse(sqliteTimeLayout, resolvedAt.String)
		f.ResolvedAt = &t
	}
	return &f, nil
}
