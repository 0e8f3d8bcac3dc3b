package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/hooks"
	"github.com/untoldecay/matrix/internal/memory"
)

// hookCmd is the one-shot process boundary spec.md §4.12 describes: an
// assistant session invokes `matrix hook`, pipes one JSON event on
// stdin, and reads one JSON response from stdout, exiting per
// hooks.ExitCode. Only a failure to open the store is returned as an
// error through cobra; once the store is open the exit code itself
// carries the outcome, matching BeadsLog's hook runner
// convention of signaling failure through the process exit status
// rather than CLI error text.
var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Run the stdin/stdout hook dispatcher for an assistant session (§4.12)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		dispatcher := hooks.NewDispatcher()
		hooks.RegisterDefaults(dispatcher, hooks.Deps{DB: db, Engine: memory.New(db)})

		code := dispatcher.Run(cmd.InOrStdin(), cmd.OutOrStdout())
		os.Exit(int(code))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hookCmd)
}
