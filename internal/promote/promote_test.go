package promote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/untoldecay/matrix/internal/types"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewClient("")
	require.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestRenderPromptIncludesTrackRecord(t *testing.T) {
	c, err := NewClient("test-key")
	require.NoError(t, err)

	sol := &types.Solution{
		Problem:      "flaky integration test due to unmocked clock",
		SolutionText: "inject a clock interface and fake it in tests",
		Tags:         []string{"testing", "go"},
		Category:     types.CategoryBugfix,
		Uses:         4,
		Successes:    3,
	}

	prompt, err := c.renderPrompt(sol)
	require.NoError(t, err)
	require.Contains(t, prompt, sol.Problem)
	require.Contains(t, prompt, sol.SolutionText)
	require.Contains(t, prompt, "used 4 times")
	require.Contains(t, prompt, "75% success rate")
	require.Contains(t, prompt, "testing, go")
}

func TestIsRetryableRejectsContextErrors(t *testing.T) {
	require.False(t, isRetryable(context.Canceled))
	require.False(t, isRetryable(context.DeadlineExceeded))
	require.False(t, isRetryable(nil))
	require.False(t, isRetryable(errors.New("some other error")))
}
