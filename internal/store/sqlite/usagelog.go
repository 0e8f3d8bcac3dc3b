package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/untoldecay/matrix/internal/types"
)

func (s *Store) AppendUsageLog(ctx context.Context, log *types.UsageLog) error {
	var repoID sql.NullString
	if log.RepoID != "" {
		repoID = sql.NullString{String: log.RepoID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_log (solution_id, repo_id, outcome, notes) VALUES (?, ?, ?, ?)
	`, log.SolutionID, repoID, string(log.Outcome), log.Notes)
	if err != nil {
		return fmt.Errorf("append usage log: %w", err)
	}
	id, err := res.LastInsertId()
	if err == nil {
		log.ID = id
	}
	return nil
}
