package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/types"
)

var warnFlags struct {
	repoID    string
	ecosystem string
	reason    string
	severity  string
}

var warnCmd = &cobra.Command{
	Use:   "warn",
	Short: "Manage file/package grudges consulted by the PreToolUse hook",
}

var warnAddCmd = &cobra.Command{
	Use:   "add <file|package> <target>",
	Short: "Add a warning against a file glob or package",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wtype := types.WarningType(args[0])
		if wtype != types.WarningFile && wtype != types.WarningPackage {
			return fmt.Errorf("warn: unknown warning type %q (want file|package)", args[0])
		}
		severity := types.Severity(warnFlags.severity)
		switch severity {
		case types.SeverityInfo, types.SeverityWarn, types.SeverityBlock:
		default:
			return fmt.Errorf("warn: unknown severity %q (want info|warn|block)", warnFlags.severity)
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		w := &types.Warning{
			ID:        "warn_" + uuid.NewString()[:8],
			Type:      wtype,
			Target:    args[1],
			Ecosystem: warnFlags.ecosystem,
			Reason:    warnFlags.reason,
			Severity:  severity,
			RepoID:    warnFlags.repoID,
		}
		if err := db.InsertWarning(context.Background(), w); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", w.ID)
		return nil
	},
}

var warnRemoveCmd = &cobra.Command{
	Use:   "remove <warning-id>",
	Short: "Remove a warning",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.DeleteWarning(context.Background(), args[0])
	},
}

var warnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List warnings, optionally scoped to a repo",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		warnings, err := db.ListWarnings(context.Background(), warnFlags.repoID)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(warnings)
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s/%s]  %-6s  %s\n", w.ID, w.Type, w.Target, w.Severity, w.Reason)
		}
		return nil
	},
}

func init() {
	warnAddCmd.Flags().StringVar(&warnFlags.repoID, "repo", "", "scope to a repo id (empty means global)")
	warnAddCmd.Flags().StringVar(&warnFlags.ecosystem, "ecosystem", "", "package ecosystem (npm, pip, ...), for type=package")
	warnAddCmd.Flags().StringVar(&warnFlags.reason, "reason", "", "why this target is warned against")
	warnAddCmd.Flags().StringVar(&warnFlags.severity, "severity", string(types.SeverityWarn), "info|warn|block")

	warnListCmd.Flags().StringVar(&warnFlags.repoID, "repo", "", "scope to a repo id (empty means all)")

	warnCmd.AddCommand(warnAddCmd)
	warnCmd.AddCommand(warnRemoveCmd)
	warnCmd.AddCommand(warnListCmd)
	rootCmd.AddCommand(warnCmd)
}
