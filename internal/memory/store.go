package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/untoldecay/matrix/internal/embedding"
	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/types"
)

// StoreInput is the payload accepted by Store (spec.md §4.4).
type StoreInput struct {
	Problem       string
	SolutionText  string
	Scope         types.Scope
	RepoID        string
	Tags          []string
	Category      types.Category
	Complexity    int
	Prerequisites []string
	AntiPatterns  []string
	CodeBlocks    []string
	Context       map[string]interface{}
	Supersedes    string
}

// Store persists a new Solution, computing its problem_embedding from
// the problem text. The id is a short prefix plus 8 hex chars from a
// UUID, same convention as every other entity id in this package.
func (e *Engine) Store(ctx context.Context, in StoreInput) (*types.Solution, error) {
	if in.Problem == "" {
		return nil, merrors.Validation("problem", "must not be empty")
	}
	if in.SolutionText == "" {
		return nil, merrors.Validation("solution", "must not be empty")
	}
	scope := in.Scope
	if scope == "" {
		scope = types.ScopeGlobal
	}

	sol := &types.Solution{
		ID:               "sol_" + uuid.NewString()[:8],
		RepoID:           in.RepoID,
		Problem:          in.Problem,
		ProblemEmbedding: embedding.Embed(in.Problem),
		SolutionText:     in.SolutionText,
		Scope:            scope,
		Tags:             in.Tags,
		Category:         in.Category,
		Complexity:       in.Complexity,
		Prerequisites:    in.Prerequisites,
		AntiPatterns:     in.AntiPatterns,
		CodeBlocks:       in.CodeBlocks,
		Context:          in.Context,
		Supersedes:       in.Supersedes,
		Score:            0.5,
	}

	if err := e.db.InsertSolution(ctx, sol); err != nil {
		return nil, fmt.Errorf("memory: store solution: %w", err)
	}
	return sol, nil
}
