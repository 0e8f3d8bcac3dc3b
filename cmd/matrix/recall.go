package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/memory"
	"github.com/untoldecay/matrix/internal/types"
	"github.com/untoldecay/matrix/internal/ui"
)

var recallFlags struct {
	dir        string
	limit      int
	minScore   float64
	scope      string
	category   string
	complexity int
}

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Aliases: []string{"recall"},
	Short:   "Recall solutions relevant to a query (§4.3)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		dir := recallFlags.dir
		if dir == "" {
			dir, _ = os.Getwd()
		}

		engine := memory.New(db)
		rows, err := engine.Recall(context.Background(), memory.RecallInput{
			Query:          args[0],
			Dir:            dir,
			Limit:          recallFlags.limit,
			MinScore:       recallFlags.minScore,
			ScopeFilter:    types.Scope(recallFlags.scope),
			CategoryFilter: types.Category(recallFlags.category),
			MaxComplexity:  recallFlags.complexity,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no matching solutions")
			return nil
		}
		uiRows := make([]ui.RecallRow, len(rows))
		for i, r := range rows {
			uiRows[i] = ui.RecallRow{
				ID:         r.Solution.ID,
				Problem:    r.Solution.Problem,
				Similarity: r.Similarity,
				Score:      r.Solution.Score,
				BoostTag:   string(r.Boost),
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderRecallTable(uiRows, ui.GetWidth()))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&recallFlags.dir, "dir", "", "working directory for repo fingerprinting (defaults to cwd)")
	searchCmd.Flags().IntVar(&recallFlags.limit, "limit", 0, "max results (default 5)")
	searchCmd.Flags().Float64Var(&recallFlags.minScore, "min-score", 0, "minimum similarity (default 0.3)")
	searchCmd.Flags().StringVar(&recallFlags.scope, "scope", "", "filter by scope: global|stack|repo")
	searchCmd.Flags().StringVar(&recallFlags.category, "category", "", "filter by category")
	searchCmd.Flags().IntVar(&recallFlags.complexity, "max-complexity", 0, "filter by max complexity")
	rootCmd.AddCommand(searchCmd)
}
