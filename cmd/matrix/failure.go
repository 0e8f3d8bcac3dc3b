package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/memory"
	"github.com/untoldecay/matrix/internal/types"
)

var failureFlags struct {
	repoID     string
	errorType  string
	stack      string
	files      string
	rootCause  string
	fixApplied string
	prevention string
}

var failureCmd = &cobra.Command{
	Use:   "failure",
	Short: "Record and search known failures (§4.7)",
}

var failureRecordCmd = &cobra.Command{
	Use:   "record <error-message>",
	Short: "Record a failure, collapsing into an existing signature if seen before",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		engine := memory.New(db)
		f, err := engine.RecordFailure(context.Background(), memory.RecordFailureInput{
			RepoID:       failureFlags.repoID,
			ErrorType:    types.ErrorType(failureFlags.errorType),
			ErrorMessage: args[0],
			Stack:        failureFlags.stack,
			Files:        splitCSV(failureFlags.files),
			RootCause:    failureFlags.rootCause,
			FixApplied:   failureFlags.fixApplied,
			Prevention:   failureFlags.prevention,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(f)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %s (occurrences=%d)\n", f.ID, f.Occurrences)
		return nil
	},
}

var failureSearchCmd = &cobra.Command{
	Use:   "search <error-message>",
	Short: "Find prior fixes for a similar error message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		engine := memory.New(db)
		matches, err := engine.SearchFailures(context.Background(), args[0], 0)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(matches)
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no matching failures with a recorded fix")
			return nil
		}
		for _, m := range matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  sim=%.2f  fix: %s\n", m.Failure.ID, m.Similarity, m.Failure.FixApplied)
		}
		return nil
	},
}

func init() {
	failureRecordCmd.Flags().StringVar(&failureFlags.repoID, "repo", "", "owning repo id")
	failureRecordCmd.Flags().StringVar(&failureFlags.errorType, "type", string(types.ErrorOther), "runtime|build|test|type|other")
	failureRecordCmd.Flags().StringVar(&failureFlags.stack, "stack", "", "stack trace")
	failureRecordCmd.Flags().StringVar(&failureFlags.files, "files", "", "comma-separated affected files")
	failureRecordCmd.Flags().StringVar(&failureFlags.rootCause, "root-cause", "", "root cause")
	failureRecordCmd.Flags().StringVar(&failureFlags.fixApplied, "fix", "", "fix applied")
	failureRecordCmd.Flags().StringVar(&failureFlags.prevention, "prevention", "", "how to prevent recurrence")

	failureCmd.AddCommand(failureRecordCmd)
	failureCmd.AddCommand(failureSearchCmd)
	rootCmd.AddCommand(failureCmd)
}
