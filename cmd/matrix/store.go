package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/memory"
	"github.com/untoldecay/matrix/internal/types"
)

var storeFlags struct {
	problem       string
	solution      string
	scope         string
	repoID        string
	tags          string
	category      string
	complexity    int
	prerequisites string
	antiPatterns  string
	supersedes    string
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Store a problem/solution pair (§4.4)",
	Long: `Persist a new reusable solution.

Examples:
  matrix store --problem "nil pointer in http handler" --solution "check request body for nil before dereferencing" --category bugfix
  matrix store --problem "flaky test" --solution "inject a fake clock" --tags go,testing --scope repo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		engine := memory.New(db)
		sol, err := engine.Store(context.Background(), memory.StoreInput{
			Problem:       storeFlags.problem,
			SolutionText:  storeFlags.solution,
			Scope:         types.Scope(storeFlags.scope),
			RepoID:        storeFlags.repoID,
			Tags:          splitCSV(storeFlags.tags),
			Category:      types.Category(storeFlags.category),
			Complexity:    storeFlags.complexity,
			Prerequisites: splitCSV(storeFlags.prerequisites),
			AntiPatterns:  splitCSV(storeFlags.antiPatterns),
			Supersedes:    storeFlags.supersedes,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sol)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", sol.ID)
		return nil
	},
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	storeCmd.Flags().StringVar(&storeFlags.problem, "problem", "", "problem description (required)")
	storeCmd.Flags().StringVar(&storeFlags.solution, "solution", "", "solution text (required)")
	storeCmd.Flags().StringVar(&storeFlags.scope, "scope", string(types.ScopeGlobal), "global|stack|repo")
	storeCmd.Flags().StringVar(&storeFlags.repoID, "repo", "", "owning repo id, if scope=repo")
	storeCmd.Flags().StringVar(&storeFlags.tags, "tags", "", "comma-separated tags")
	storeCmd.Flags().StringVar(&storeFlags.category, "category", "", "bugfix|feature|refactor|config|pattern|optimization")
	storeCmd.Flags().IntVar(&storeFlags.complexity, "complexity", 0, "1-10, 0 means unset")
	storeCmd.Flags().StringVar(&storeFlags.prerequisites, "prerequisites", "", "comma-separated prerequisites")
	storeCmd.Flags().StringVar(&storeFlags.antiPatterns, "anti-patterns", "", "comma-separated anti-patterns")
	storeCmd.Flags().StringVar(&storeFlags.supersedes, "supersedes", "", "id of the solution this replaces")
	_ = storeCmd.MarkFlagRequired("problem")
	_ = storeCmd.MarkFlagRequired("solution")
	rootCmd.AddCommand(storeCmd)
}
