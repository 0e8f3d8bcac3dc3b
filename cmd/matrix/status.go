package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize store contents: solution/failure/repo/task counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		solutions, err := db.ScanSolutions(ctx, store.RecallFilter{})
		if err != nil {
			return err
		}
		failures, err := db.ScanFailures(ctx)
		if err != nil {
			return err
		}
		repos, err := db.ListRepos(ctx)
		if err != nil {
			return err
		}
		tasks, err := db.ListTasks(ctx)
		if err != nil {
			return err
		}

		var promoted int
		for _, s := range solutions {
			if s.PromotedToSkill != "" {
				promoted++
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"solutions":        len(solutions),
				"solutionsPromoted": promoted,
				"failures":         len(failures),
				"repos":            len(repos),
				"scheduledTasks":   len(tasks),
				"dbPath":           db.Path(),
			})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "db:        %s\n", db.Path())
		fmt.Fprintf(cmd.OutOrStdout(), "solutions: %d (%d promoted to skills)\n", len(solutions), promoted)
		fmt.Fprintf(cmd.OutOrStdout(), "failures:  %d\n", len(failures))
		fmt.Fprintf(cmd.OutOrStdout(), "repos:     %d\n", len(repos))
		fmt.Fprintf(cmd.OutOrStdout(), "tasks:     %d\n", len(tasks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
