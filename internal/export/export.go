// Package export implements the JSON and per-type CSV export formats
// of spec.md §6: JSON emits {solutions[], failures[], repos[],
// exportedAt, version} excluding vector blobs; CSV is per-type only
// and emits one header row plus escaped cells.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

// Type names the per-type CSV export target.
type Type string

const (
	TypeSolutions Type = "solutions"
	TypeFailures  Type = "failures"
	TypeRepos     Type = "repos"
)

// Version is the export schema version recorded alongside a JSON dump.
const Version = "1"

// solutionRecord/failureRecord/repoRecord mirror types.Solution/Failure/Repo
// but omit the embedding vectors, per spec.md §6's "excluding vector blobs".
type solutionRecord struct {
	ID               string                 `json:"id"`
	RepoID           string                 `json:"repo_id,omitempty"`
	Problem          string                 `json:"problem"`
	SolutionText     string                 `json:"solution"`
	Scope            types.Scope            `json:"scope"`
	Tags             []string               `json:"tags,omitempty"`
	Context          map[string]interface{} `json:"context,omitempty"`
	Score            float64                `json:"score"`
	Uses             int                    `json:"uses"`
	Successes        int                    `json:"successes"`
	PartialSuccesses int                    `json:"partial_successes"`
	Failures         int                    `json:"failures"`
	Category         types.Category         `json:"category,omitempty"`
	Complexity       int                    `json:"complexity,omitempty"`
	Prerequisites    []string               `json:"prerequisites,omitempty"`
	AntiPatterns     []string               `json:"anti_patterns,omitempty"`
	CodeBlocks       []string               `json:"code_blocks,omitempty"`
	RelatedSolutions []string               `json:"related_solutions,omitempty"`
	Supersedes       string                 `json:"supersedes,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	LastUsedAt       *time.Time             `json:"last_used_at,omitempty"`
	PromotedToSkill  string                 `json:"promoted_to_skill,omitempty"`
}

type failureRecord struct {
	ID           string          `json:"id"`
	RepoID       string          `json:"repo_id,omitempty"`
	ErrorType    types.ErrorType `json:"error_type"`
	ErrorMessage string          `json:"error_message"`
	Signature    string          `json:"error_signature"`
	Stack        string          `json:"stack,omitempty"`
	Files        []string        `json:"files,omitempty"`
	RootCause    string          `json:"root_cause,omitempty"`
	FixApplied   string          `json:"fix_applied,omitempty"`
	Prevention   string          `json:"prevention,omitempty"`
	Occurrences  int             `json:"occurrences"`
	CreatedAt    time.Time       `json:"created_at"`
	ResolvedAt   *time.Time      `json:"resolved_at,omitempty"`
}

type repoRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Languages     []string `json:"languages,omitempty"`
	Frameworks    []string `json:"frameworks,omitempty"`
	Dependencies  []string `json:"dependencies,omitempty"`
	Patterns      []string `json:"patterns,omitempty"`
	TestFramework string   `json:"test_framework,omitempty"`
}

// Bundle is the JSON export payload.
type Bundle struct {
	Solutions  []solutionRecord `json:"solutions"`
	Failures   []failureRecord  `json:"failures"`
	Repos      []repoRecord     `json:"repos"`
	ExportedAt time.Time        `json:"exportedAt"`
	Version    string           `json:"version"`
}

func toSolutionRecord(s *types.Solution) solutionRecord {
	return solutionRecord{
		ID: s.ID, RepoID: s.RepoID, Problem: s.Problem, SolutionText: s.SolutionText,
		Scope: s.Scope, Tags: s.Tags, Context: s.Context, Score: s.Score,
		Uses: s.Uses, Successes: s.Successes, PartialSuccesses: s.PartialSuccesses, Failures: s.Failures,
		Category: s.Category, Complexity: s.Complexity, Prerequisites: s.Prerequisites,
		AntiPatterns: s.AntiPatterns, CodeBlocks: s.CodeBlocks, RelatedSolutions: s.RelatedSolutions,
		Supersedes: s.Supersedes, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
		LastUsedAt: s.LastUsedAt, PromotedToSkill: s.PromotedToSkill,
	}
}

func toFailureRecord(f *types.Failure) failureRecord {
	return failureRecord{
		ID: f.ID, RepoID: f.RepoID, ErrorType: f.ErrorType, ErrorMessage: f.ErrorMessage,
		Signature: f.ErrorSignature, Stack: f.Stack, Files: f.Files, RootCause: f.RootCause,
		FixApplied: f.FixApplied, Prevention: f.Prevention, Occurrences: f.Occurrences,
		CreatedAt: f.CreatedAt, ResolvedAt: f.ResolvedAt,
	}
}

func toRepoRecord(r *types.Repo) repoRecord {
	return repoRecord{
		ID: r.ID, Name: r.Name, Path: r.Path, Languages: r.Languages,
		Frameworks: r.Frameworks, Dependencies: r.Dependencies, Patterns: r.Patterns,
		TestFramework: r.TestFramework,
	}
}

// JSON writes the full {solutions, failures, repos} bundle as JSON.
func JSON(ctx context.Context, db store.Store, w io.Writer, now time.Time) error {
	solutions, err := db.ScanSolutions(ctx, store.RecallFilter{})
	if err != nil {
		return fmt.Errorf("export: scan solutions: %w", err)
	}
	failures, err := db.ScanFailures(ctx)
	if err != nil {
		return fmt.Errorf("export: scan failures: %w", err)
	}
	repos, err := db.ListRepos(ctx)
	if err != nil {
		return fmt.Errorf("export: list repos: %w", err)
	}

	bundle := Bundle{ExportedAt: now, Version: Version}
	for _, s := range solutions {
		bundle.Solutions = append(bundle.Solutions, toSolutionRecord(s))
	}
	for _, f := range failures {
		bundle.Failures = append(bundle.Failures, toFailureRecord(f))
	}
	for _, r := range repos {
		bundle.Repos = append(bundle.Repos, toRepoRecord(r))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}

// CSV writes a single entity type as CSV: one header row plus escaped
// cells (spec.md §6 "CSV export is per-type only").
func CSV(ctx context.Context, db store.Store, w io.Writer, t Type) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	switch t {
	case TypeSolutions:
		solutions, err := db.ScanSolutions(ctx, store.RecallFilter{})
		if err != nil {
			return fmt.Errorf("export: scan solutions: %w", err)
		}
		if err := cw.Write([]string{"id", "repo_id", "problem", "solution", "scope", "tags", "score", "uses", "successes", "category", "created_at"}); err != nil {
			return err
		}
		for _, s := range solutions {
			row := []string{
				s.ID, s.RepoID, s.Problem, s.SolutionText, string(s.Scope),
				strings.Join(s.Tags, ";"), strconv.FormatFloat(s.Score, 'f', 2, 64),
				strconv.Itoa(s.Uses), strconv.Itoa(s.Successes), string(s.Category),
				s.CreatedAt.Format(time.RFC3339),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}

	case TypeFailures:
		failures, err := db.ScanFailures(ctx)
		if err != nil {
			return fmt.Errorf("export: scan failures: %w", err)
		}
		if err := cw.Write([]string{"id", "repo_id", "error_type", "error_message", "signature", "root_cause", "fix_applied", "occurrences", "created_at"}); err != nil {
			return err
		}
		for _, f := range failures {
			row := []string{
				f.ID, f.RepoID, string(f.ErrorType), f.ErrorMessage, f.ErrorSignature,
				f.RootCause, f.FixApplied, strconv.Itoa(f.Occurrences), f.CreatedAt.Format(time.RFC3339),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}

	case TypeRepos:
		repos, err := db.ListRepos(ctx)
		if err != nil {
			return fmt.Errorf("export: list repos: %w", err)
		}
		if err := cw.Write([]string{"id", "name", "path", "languages", "frameworks", "test_framework"}); err != nil {
			return err
		}
		for _, r := range repos {
			row := []string{
				r.ID, r.Name, r.Path, strings.Join(r.Languages, ";"),
				strings.Join(r.Frameworks, ";"), r.TestFramework,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("export: unknown CSV export type %q", t)
	}

	cw.Flush()
	return cw.Error()
}
