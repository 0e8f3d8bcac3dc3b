package memory

import (
	"context"
	"fmt"

	"github.com/untoldecay/matrix/internal/types"
)

const (
	scoreFloor = 0.1
	scoreCeil  = 1.0
)

// RewardResult carries the before/after score for observability.
type RewardResult struct {
	PreviousScore float64
	NewScore      float64
}

// Reward applies the §4.5 score update rule and appends a UsageLog
// entry. Per §5's ordering guarantee, the score/counter update and the
// usage_log append happen in one transaction via store.Store.ApplyReward,
// so a crash between the two writes can never happen.
func (e *Engine) Reward(ctx context.Context, solutionID string, outcome types.Outcome, notes string) (*RewardResult, error) {
	sol, err := e.db.GetSolution(ctx, solutionID)
	if err != nil {
		return nil, fmt.Errorf("memory: reward: %w", err)
	}

	previous := sol.Score
	newScore := updateScore(previous, outcome)

	if err := e.db.ApplyReward(ctx, solutionID, newScore, outcome, &types.UsageLog{
		SolutionID: solutionID,
		RepoID:     sol.RepoID,
		Outcome:    outcome,
		Notes:      notes,
	}); err != nil {
		return nil, fmt.Errorf("memory: reward: %w", err)
	}

	return &RewardResult{PreviousScore: previous, NewScore: newScore}, nil
}

func updateScore(score float64, outcome types.Outcome) float64 {
	var next float64
	switch outcome {
	case types.OutcomeSuccess:
		next = score + 0.10*(1-score)
	case types.OutcomePartial:
		next = score + 0.03
	case types.OutcomeFailure:
		next = score - 0.15
	default:
		next = score
	}
	if next < scoreFloor {
		next = scoreFloor
	}
	if next > scoreCeil {
		next = scoreCeil
	}
	return next
}
