package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

func (s *Store) InsertSolution(ctx context.Context, sol *types.Solution) error {
	if sol.ID == "" {
		sol.ID = "sol_" + uuid.NewString()[:8]
	}
	if sol.Score == 0 {
		sol.Score = 0.5
	}

	tags, _ := json.Marshal(nonNil(sol.Tags))
	context_, _ := json.Marshal(mapOrEmpty(sol.Context))
	prereqs, _ := json.Marshal(nonNil(sol.Prerequisites))
	antiPatterns, _ := json.Marshal(nonNil(sol.AntiPatterns))
	codeBlocks, _ := json.Marshal(nonNil(sol.CodeBlocks))
	related, _ := json.Marshal(nonNil(sol.RelatedSolutions))

	var repoID, supersedes sql.NullString
	if sol.RepoID != "" {
		repoID = sql.NullString{String: sol.RepoID, Valid: true}
	}
	if sol.Supersedes != "" {
		supersedes = sql.NullString{String: sol.Supersedes, Valid: true}
	}
	var complexity sql.NullInt64
	if sol.Complexity > 0 {
		complexity = sql.NullInt64{Int64: int64(sol.Complexity), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO solutions (
			id, repo_id, problem, problem_embedding, solution, scope, tags, context, score,
			category, complexity, prerequisites, anti_patterns, code_blocks, related_solutions, supersedes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sol.ID, repoID, sol.Problem, encodeVector(sol.ProblemEmbedding), sol.SolutionText, string(sol.Scope),
		string(tags), string(context_), sol.Score, string(sol.Category), complexity,
		string(prereqs), string(antiPatterns), string(codeBlocks), string(related), supersedes)
	if err != nil {
		return fmt.Errorf("insert solution: %w", err)
	}
	return nil
}

func (s *Store) GetSolution(ctx context.Context, id string) (*types.Solution, error) {
	row := s.db.QueryRowContext(ctx, solutionSelect+` WHERE id = ?`, id)
	return scanSolution(row)
}

const solutionSelect = `
	SELECT id, repo_id, problem, problem_embedding, solution, scope, tags, context, score,
	       uses, successes, partial_successes, failures, category, complexity,
	       prerequisites, anti_patterns, code_blocks, related_solutions, supersedes,
	       created_at, updated_at, last_used_at, promoted_to_skill
	FROM solutions`

func (s *Store) ScanSolutions(ctx context.Context, filter store.RecallFilter) ([]*types.Solution, error) {
	q := solutionSelect
	var where []string
	var args []interface{}
	if filter.ScopeFilter != "" {
		where = append(where, "scope = ?")
		args = append(args, string(filter.ScopeFilter))
	}
	if filter.CategoryFilter != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.CategoryFilter))
	}
	if filter.MaxComplexity > 0 {
		where = append(where, "(complexity IS NULL OR complexity <= ?)")
		args = append(args, filter.MaxComplexity)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("scan solutions: %w", err)
	}
	defer rows.Close()

	var out []*types.Solution
	for rows.Next() {
		sol, err := scanSolutionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sol)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSolution(row *sql.Row) (*types.Solution, error) {
	sol, err := scanSolutionInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merrors.NotFound("solution", "")
	}
	return sol, err
}

func scanSolutionRows(rows *sql.Rows) (*types.Solution, error) {
	return scanSolutionInto(rows)
}

func scanSolutionInto(r rowScanner) (*types.Solution, error) {
	var sol types.Solution
	var repoID, supersedes, scope, category sql.NullString
	var tags, contextJSON, prereqs, antiPatterns, codeBlocks, related string
	var embedding []byte
	var complexity sql.NullInt64
	var createdAt, updatedAt string
	var lastUsedAt sql.NullString

	err := r.Scan(&sol.ID, &repoID, &sol.Problem, &embedding, &sol.SolutionText, &scope, &tags, &contextJSON,
		&sol.Score, &sol.Uses, &sol.Successes, &sol.PartialSuccesses, &sol.Failures, &category, &complexity,
		&prereqs, &antiPatterns, &codeBlocks, &related, &supersedes,
		&createdAt, &updatedAt, &lastUsedAt, &sol.PromotedToSkill)
	if err != nil {
		return nil, err
	}

	sol.RepoID = repoID.String
	sol.Supersedes = supersedes.String
	sol.Scope = types.Scope(scope.String)
	sol.Category = types.Category(category.String)
	sol.Complexity = int(complexity.Int64)
	if v, ok := decodeVector(embedding); ok {
		sol.ProblemEmbedding = v
	}
	if err := json.Unmarshal([]byte(tags), &sol.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(contextJSON), &sol.Context); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(prereqs), &sol.Prerequisites); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(antiPatterns), &sol.AntiPatterns); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(codeBlocks), &sol.CodeBlocks); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(related), &sol.RelatedSolutions); err != nil {
		return nil, err
	}
	sol.CreatedAt, _ = time.Parse(sqliteTimeLayout, createdAt)
	sol.UpdatedAt, _ = time.Parse(sqliteTimeLayout, updatedAt)
	if lastUsedAt.Valid {
		t, _ := time.Parse(sqliteTimeLayout, lastUsedAt.String)
		sol.LastUsedAt = &t
	}
	return &sol, nil
}

const sqliteTimeLayout = "2006-01-02 15:04:05"

// UpdateSolutionScore applies a reward outcome (§4.5): the new score
// and the matching counter (successes/partial_successes/failures).
// uses and last_used_at are recall's side effect, not reward's — see
// TouchSolutionUse.
func (s *Store) UpdateSolutionScore(ctx context.Context, id string, newScore float64, outcome types.Outcome) error {
	var col string
	switch outcome {
	case types.OutcomeSuccess:
		col = "successes"
	case types.OutcomePartial:
		col = "partial_successes"
	case types.OutcomeFailure:
		col = "failures"
	default:
		col = "" // skipped: no outcome bucket incremented
	}

	query := fmt.Sprintf(`UPDATE solutions SET score = ?%s, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		colIncrement(col))
	res, err := s.db.ExecContext(ctx, query, newScore, id)
	if err != nil {
		return fmt.Errorf("update solution score: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("solution", id)
	}
	return nil
}

// ApplyReward applies a reward outcome and appends its UsageLog entry
// inside one transaction, per §4.5/§5: "Reward updates to score and
// counters and the append to usage_log occur in one transaction."
// Mirrors the BeginTx/defer Rollback/Commit shape
// ReplaceFileSymbolsAndImports (indexer.go) already uses for its own
// multi-statement atomic write.
func (s *Store) ApplyReward(ctx context.Context, id string, newScore float64, outcome types.Outcome, log *types.UsageLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var col string
	switch outcome {
	case types.OutcomeSuccess:
		col = "successes"
	case types.OutcomePartial:
		col = "partial_successes"
	case types.OutcomeFailure:
		col = "failures"
	}

	query := fmt.Sprintf(`UPDATE solutions SET score = ?%s, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, colIncrement(col))
	res, err := tx.ExecContext(ctx, query, newScore, id)
	if err != nil {
		return fmt.Errorf("apply reward: update score: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("solution", id)
	}

	var repoID sql.NullString
	if log.RepoID != "" {
		repoID = sql.NullString{String: log.RepoID, Valid: true}
	}
	logRes, err := tx.ExecContext(ctx, `
		INSERT INTO usage_log (solution_id, repo_id, outcome, notes) VALUES (?, ?, ?, ?)
	`, log.SolutionID, repoID, string(log.Outcome), log.Notes)
	if err != nil {
		return fmt.Errorf("apply reward: append usage log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply reward: commit: %w", err)
	}

	if logID, err := logRes.LastInsertId(); err == nil {
		log.ID = logID
	}
	return nil
}

// SetPromotedToSkill records a solution's compressed skill document
// (Expansion D.2 matrix promote) without touching its score or usage
// counters.
func (s *Store) SetPromotedToSkill(ctx context.Context, id, skill string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE solutions SET promoted_to_skill = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, skill, id)
	if err != nil {
		return fmt.Errorf("set promoted to skill: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return merrors.NotFound("solution", id)
	}
	return nil
}

func colIncrement(col string) string {
	if col == "" {
		return ""
	}
	return ", " + col + " = " + col + " + 1"
}

// TouchSolutionUse is recall's side effect (§4.3 step 7): every
// returned row gets uses incremented and last_used_at set to now,
// regardless of whether it is ever rewarded.
func (s *Store) TouchSolutionUse(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE solutions SET uses = uses + 1, last_used_at = CURRENT_TIMESTAMP WHERE id IN (%s)`, placeholders), args...)
	return err
}

func (s *Store) FindSupersededBy(ctx context.Context, id string) (string, error) {
	var supersededBy sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT id FROM solutions WHERE supersedes = ? LIMIT 1`, id).Scan(&supersededBy)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return supersededBy.String, nil
}

func mapOrEmpty(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
