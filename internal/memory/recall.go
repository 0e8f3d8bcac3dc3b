package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/untoldecay/matrix/internal/embedding"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

const (
	defaultRecallLimit    = 5
	defaultRecallMinScore = 0.3
	sameRepoBoost         = 1.15
	similarStackBoost     = 1.08
	similarStackThreshold = 0.7
	boostCap              = 0.99
)

// BoostTag names the context boost applied to a recalled row, if any.
type BoostTag string

const (
	BoostNone         BoostTag = ""
	BoostSameRepo     BoostTag = "same_repo"
	BoostSimilarStack BoostTag = "similar_stack"
)

// RecallInput is the input to Recall (spec.md §4.3).
type RecallInput struct {
	Query          string
	Dir            string // working directory used for repo fingerprinting
	Limit          int
	MinScore       float64
	ScopeFilter    types.Scope
	CategoryFilter types.Category
	MaxComplexity  int
}

// RecallRow is one ranked result.
type RecallRow struct {
	Solution      *types.Solution
	Similarity    float64
	SuccessRate   float64
	Boost         BoostTag
	SupersededBy  string
}

// Recall runs the §4.3 algorithm: fingerprint the current repo, embed
// the query, scan structurally filtered solutions, apply the context
// boost, filter by MinScore, rank by sim*score, and touch the uses/
// last_used_at of the returned rows.
func (e *Engine) Recall(ctx context.Context, in RecallInput) ([]RecallRow, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultRecallLimit
	}
	minScore := in.MinScore
	if minScore == 0 {
		minScore = defaultRecallMinScore
	}

	var currentRepo *types.Repo
	if in.Dir != "" {
		repo, err := e.Fingerprint.DetectAndPersist(ctx, in.Dir)
		if err == nil {
			currentRepo = repo
		}
	}

	queryEmbedding := embedding.Embed(in.Query)

	solutions, err := e.db.ScanSolutions(ctx, store.RecallFilter{
		ScopeFilter:    in.ScopeFilter,
		CategoryFilter: in.CategoryFilter,
		MaxComplexity:  in.MaxComplexity,
	})
	if err != nil {
		return nil, fmt.Errorf("recall: scan solutions: %w", err)
	}

	var rows []RecallRow
	for _, sol := range solutions {
		if len(sol.ProblemEmbedding) != embedding.Dimension {
			continue // corrupt or missing embedding; skip per §8 invariant 2
		}
		sim, err := embedding.Cosine(queryEmbedding, sol.ProblemEmbedding)
		if err != nil {
			continue
		}

		boost := BoostNone
		if currentRepo != nil && sol.RepoID == currentRepo.ID {
			sim *= sameRepoBoost
			boost = BoostSameRepo
		} else if currentRepo != nil && len(currentRepo.FingerprintEmbedding) == embedding.Dimension && sol.RepoID != "" {
			rowRepo, err := e.db.GetRepo(ctx, sol.RepoID)
			if err == nil && len(rowRepo.FingerprintEmbedding) == embedding.Dimension {
				stackSim, err := embedding.Cosine(currentRepo.FingerprintEmbedding, rowRepo.FingerprintEmbedding)
				if err == nil && stackSim > similarStackThreshold {
					sim *= similarStackBoost
					boost = BoostSimilarStack
				}
			}
		}
		if sim > boostCap {
			sim = boostCap
		}

		if sim < minScore {
			continue
		}

		supersededBy, _ := e.db.FindSupersededBy(ctx, sol.ID)

		rows = append(rows, RecallRow{
			Solution:     sol,
			Similarity:   sim,
			SuccessRate:  successRate(sol),
			Boost:        boost,
			SupersededBy: supersededBy,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Similarity*rows[i].Solution.Score > rows[j].Similarity*rows[j].Solution.Score
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Solution.ID
		rows[i].Similarity = math.Round(r.Similarity*1e5) / 1e5
	}
	if err := e.db.TouchSolutionUse(ctx, ids); err != nil {
		return nil, fmt.Errorf("recall: touch uses: %w", err)
	}

	return rows, nil
}

func successRate(s *types.Solution) float64 {
	total := s.Successes + s.Failures
	if total == 0 {
		return 0.5
	}
	return float64(s.Successes) / float64(total)
}
