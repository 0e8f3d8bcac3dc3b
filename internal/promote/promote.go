// Package promote compresses a high-scoring Solution into a short,
// reusable skill document (Solution.promoted_to_skill, SPEC_FULL.md
// Expansion D.2), adapted directly from BeadsLog's
// internal/compact/haiku.go Claude Haiku retry/backoff client —
// re-pointed from "summarize a closed issue" to "summarize a
// solution".
package promote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/untoldecay/matrix/internal/types"
)

const (
	defaultModel   = "claude-3-5-haiku-20241022"
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// ErrAPIKeyRequired is returned when no API key is available.
var ErrAPIKeyRequired = errors.New("promote: API key required")

// Client wraps the Anthropic API for solution-to-skill compression.
type Client struct {
	client         anthropic.Client
	model          anthropic.Model
	tmpl           *template.Template
	maxRetries     int
	initialBackoff time.Duration
}

// NewClient creates a skill-promotion client. ANTHROPIC_API_KEY takes
// precedence over an explicitly supplied apiKey.
func NewClient(apiKey string) (*Client, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or provide via config", ErrAPIKeyRequired)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	tmpl, err := template.New("skill").Parse(skillPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("promote: parse template: %w", err)
	}

	return &Client{
		client:         client,
		model:          defaultModel,
		tmpl:           tmpl,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}, nil
}

// Promote compresses sol into a short skill document.
func (c *Client) Promote(ctx context.Context, sol *types.Solution) (string, error) {
	prompt, err := c.renderPrompt(sol)
	if err != nil {
		return "", fmt.Errorf("promote: render prompt: %w", err)
	}
	return c.callWithRetry(ctx, prompt)
}

func (c *Client) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			if len(message.Content) == 0 {
				return "", fmt.Errorf("promote: unexpected response: no content blocks")
			}
			content := message.Content[0]
			if content.Type != "text" {
				return "", fmt.Errorf("promote: unexpected response format: not a text block (type=%s)", content.Type)
			}
			return content.Text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			return "", fmt.Errorf("promote: non-retryable error: %w", err)
		}
	}

	return "", fmt.Errorf("promote: failed after %d retries: %w", c.maxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}

type skillData struct {
	Problem           string
	Solution          string
	Tags              string
	Category          string
	Uses              int
	SuccessRatePercent int
}

func (c *Client) renderPrompt(sol *types.Solution) (string, error) {
	var b strings.Builder
	data := skillData{
		Problem:  sol.Problem,
		Solution: sol.SolutionText,
		Tags:     strings.Join(sol.Tags, ", "),
		Category: string(sol.Category),
		Uses:     sol.Uses,
	}
	if sol.Uses > 0 {
		data.SuccessRatePercent = int(math.Round(float64(sol.Successes) / float64(sol.Uses) * 100))
	}
	if err := c.tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

const skillPromptTemplate = `You are compressing a proven problem/solution pair into a short, reusable skill document. The output MUST be significantly shorter than a full writeup while keeping every detail needed to apply it again.

**Problem:** {{.Problem}}

**Solution:**
{{.Solution}}

{{if .Category}}**Category:** {{.Category}}
{{end}}{{if .Tags}}**Tags:** {{.Tags}}
{{end}}**Track record:** used {{.Uses}} times, {{.SuccessRatePercent}}% success rate

Provide the skill in this exact format:

**When to use:** [one sentence on the triggering situation]

**Steps:** [numbered list, as terse as possible]

**Watch out for:** [one sentence on the most important caveat, or omit if none]`
