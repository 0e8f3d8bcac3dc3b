package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/config"
	"github.com/untoldecay/matrix/internal/debug"
	"github.com/untoldecay/matrix/internal/merrors"
	"github.com/untoldecay/matrix/internal/paths"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/store/sqlite"
)

// jsonOutput is the global --json flag, same name and role as
// BeadsLog's rootCmd-level jsonOutput toggle.
var jsonOutput bool

// verbose toggles MATRIX_DEBUG-equivalent logging via -v.
var verbose bool

var rootCmd = &cobra.Command{
	Use:           "matrix",
	Short:         "A persistent developer-memory engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			debug.SetEnabled(true)
		}
		return config.Initialize()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// openStore opens the store at the configured path (MATRIX_DB override,
// else <matrix home>/matrix.db), matching BeadsLog's pattern of
// resolving storage lazily per-command rather than in PersistentPreRunE
// so commands that don't touch the DB (e.g. `matrix version`) never pay
// the cost of opening it.
func openStore() (store.Store, error) {
	dbPath := config.GetString("db")
	if dbPath == "" {
		p, err := paths.DBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		dbPath = p
	}
	return sqlite.New(store.Config{Path: dbPath})
}

// exitCodeFor maps an error to the §6 exit-code contract: 0 success
// (never reached here — this only runs on a non-nil error), 1 user
// error, 2 invariant violation.
func exitCodeFor(err error) int {
	var merr *merrors.Error
	if errors.As(err, &merr) {
		switch merr.Kind {
		case merrors.KindValidation, merrors.KindNotFound, merrors.KindTimeout, merrors.KindTransient:
			return 1
		case merrors.KindSchemaMismatch, merrors.KindFatal:
			return 2
		}
	}
	return 1
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCodeFor(err))
}
