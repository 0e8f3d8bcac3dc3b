package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/memory"
	"github.com/untoldecay/matrix/internal/types"
)

var rewardFlags struct {
	notes string
}

var rewardCmd = &cobra.Command{
	Use:   "reward <solution-id> <success|partial|failure|skipped>",
	Short: "Reinforce or demote a solution by outcome (§4.5)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome := types.Outcome(args[1])
		switch outcome {
		case types.OutcomeSuccess, types.OutcomePartial, types.OutcomeFailure, types.OutcomeSkipped:
		default:
			return fmt.Errorf("reward: unknown outcome %q (want success|partial|failure|skipped)", args[1])
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		engine := memory.New(db)
		result, err := engine.Reward(context.Background(), args[0], outcome, rewardFlags.notes)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "score %.2f -> %.2f\n", result.PreviousScore, result.NewScore)
		return nil
	},
}

func init() {
	rewardCmd.Flags().StringVar(&rewardFlags.notes, "notes", "", "free-text note recorded in the usage log")
	rootCmd.AddCommand(rewardCmd)
}
