package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/untoldecay/matrix/internal/memory"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

const (
	EventSessionStart = "SessionStart"
	EventPreToolUse   = "PreToolUse"
	EventPostToolUse  = "PostToolUse"
)

// Deps is what the stock handlers need from the rest of the module.
// Kept as an explicit struct, rather than a global, so cmd/matrix can
// construct one store/engine per process invocation.
type Deps struct {
	DB     store.Store
	Engine *memory.Engine
}

// RegisterDefaults wires the standard event handlers spec.md §4.12
// implies: recall relevant solutions at session start, and enforce
// warnings before a tool runs.
func RegisterDefaults(d *Dispatcher, deps Deps) {
	d.Register(EventSessionStart, sessionStartHandler(deps))
	d.Register(EventPreToolUse, preToolUseHandler(deps))
}

func sessionStartHandler(deps Deps) Handler {
	return func(event Event) (*Response, ExitCode, error) {
		ctx := context.Background()
		rows, err := deps.Engine.Recall(ctx, memory.RecallInput{
			Query: "session start",
			Dir:   event.CWD,
			Limit: 5,
		})
		if err != nil {
			return nil, ExitNonBlockingErr, fmt.Errorf("hooks: recall at session start: %w", err)
		}
		if len(rows) == 0 {
			return &Response{Continue: true}, ExitProceed, nil
		}

		var b strings.Builder
		b.WriteString("Relevant past solutions for this repo:\n")
		for _, row := range rows {
			fmt.Fprintf(&b, "- %s (score %.2f): %s\n", row.Solution.Problem, row.Solution.Score, row.Solution.SolutionText)
		}
		return &Response{Continue: true, AdditionalContext: b.String()}, ExitProceed, nil
	}
}

type preToolUseInput struct {
	FilePath string `json:"file_path"`
	Package  string `json:"package"`
}

func preToolUseHandler(deps Deps) Handler {
	return func(event Event) (*Response, ExitCode, error) {
		ctx := context.Background()

		var in preToolUseInput
		if len(event.ToolInput) > 0 {
			_ = json.Unmarshal(event.ToolInput, &in)
		}

		targets := []struct {
			wtype  types.WarningType
			target string
		}{
			{types.WarningFile, in.FilePath},
			{types.WarningPackage, in.Package},
		}

		for _, t := range targets {
			if t.target == "" {
				continue
			}
			warning, err := deps.DB.FindWarning(ctx, t.wtype, t.target, "", repoIDFromCWD(event.CWD))
			if err != nil {
				continue // no matching warning, or lookup failed non-fatally
			}
			if warning == nil {
				continue
			}
			switch warning.Severity {
			case types.SeverityBlock:
				return &Response{Continue: false, StopReason: warning.Reason}, ExitBlockingErr, nil
			case types.SeverityWarn:
				return &Response{Continue: true, AdditionalContext: "Warning: " + warning.Reason}, ExitProceed, nil
			}
		}
		return &Response{Continue: true}, ExitProceed, nil
	}
}

// repoIDFromCWD is a placeholder hook until the dispatcher is wired to
// fingerprint-and-lookup the calling repo; an empty repo ID makes
// FindWarning fall back to a global-only match (spec.md §8 invariant
// 10), which is the safe default for a tool call with no known repo.
func repoIDFromCWD(cwd string) string {
	return ""
}
