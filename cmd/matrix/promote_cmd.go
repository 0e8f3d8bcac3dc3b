package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/promote"
)

var promoteFlags struct {
	apiKey string
}

var promoteCmd = &cobra.Command{
	Use:   "promote <solution-id>",
	Short: "Compress a proven solution into a reusable skill document (Expansion D.2)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		sol, err := db.GetSolution(ctx, args[0])
		if err != nil {
			return err
		}

		client, err := promote.NewClient(promoteFlags.apiKey)
		if err != nil {
			return err
		}

		skill, err := client.Promote(ctx, sol)
		if err != nil {
			return err
		}

		if err := db.SetPromotedToSkill(ctx, sol.ID, skill); err != nil {
			return fmt.Errorf("promote: persist skill: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), skill)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteFlags.apiKey, "api-key", "", "Anthropic API key (ANTHROPIC_API_KEY, when set, takes precedence)")
	rootCmd.AddCommand(promoteCmd)
}
