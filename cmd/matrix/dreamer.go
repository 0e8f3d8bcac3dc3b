package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/scheduler"
	"github.com/untoldecay/matrix/internal/types"
)

var dreamerFlags struct {
	timezone string
	command  string
	dir      string
	timeout  int
	tags     string
	repoID   string
	worktree bool
	limit    int
}

var dreamerCmd = &cobra.Command{
	Use:   "dreamer",
	Short: "Manage scheduled cron tasks (§4.11)",
}

var dreamerAddCmd = &cobra.Command{
	Use:   "add <name> <schedule>",
	Short: "Schedule a command (cron expression or a recognized phrase like \"every 5 minutes\")",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		s := scheduler.New(db, nil)
		task, err := s.Add(context.Background(), scheduler.AddInput{
			Name:             args[0],
			Schedule:         args[1],
			Timezone:         dreamerFlags.timezone,
			Command:          dreamerFlags.command,
			WorkingDirectory: dreamerFlags.dir,
			TimeoutSeconds:   dreamerFlags.timeout,
			Worktree:         dreamerFlags.worktree,
			Tags:             splitCSV(dreamerFlags.tags),
			RepoID:           dreamerFlags.repoID,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(task)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scheduled %s (%s)\n", task.ID, task.CronExpression)
		return nil
	},
}

var dreamerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		s := scheduler.New(db, nil)
		tasks, err := s.List(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tasks)
		}
		for _, t := range tasks {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  %-15s  %s\n", t.ID, t.Name, t.CronExpression, t.Command)
		}
		return nil
	},
}

var dreamerRemoveCmd = &cobra.Command{
	Use:   "remove <task-id>",
	Short: "Unregister and delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		s := scheduler.New(db, nil)
		return s.Remove(context.Background(), args[0])
	},
}

var dreamerRunCmd = &cobra.Command{
	Use:   "run <task-id>",
	Short: "Run a task immediately, outside its schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		s := scheduler.New(db, nil)
		exec, err := s.Run(context.Background(), args[0], types.TriggeredManual)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(exec)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "status=%s duration=%dms\n", exec.Status, exec.DurationMS)
		return nil
	},
}

var dreamerHistoryCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show recent executions of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		s := scheduler.New(db, nil)
		execs, err := s.History(context.Background(), args[0], dreamerFlags.limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(execs)
		}
		for _, e := range execs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %-8s  %dms\n", e.StartedAt.Format("2006-01-02 15:04:05"), e.Status, e.TriggeredBy, e.DurationMS)
		}
		return nil
	},
}

var dreamerLogsCmd = &cobra.Command{
	Use:   "logs <task-id>",
	Short: "Tail a task's stdout/stderr log files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		s := scheduler.New(db, nil)
		stdout, stderr, err := s.Logs(args[0], 200)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "--- stdout ---")
		for _, line := range stdout {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "--- stderr ---")
		for _, line := range stderr {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	dreamerAddCmd.Flags().StringVar(&dreamerFlags.timezone, "timezone", "local", "IANA timezone name, or \"local\"")
	dreamerAddCmd.Flags().StringVar(&dreamerFlags.command, "command", "", "shell command to run (required)")
	dreamerAddCmd.Flags().StringVar(&dreamerFlags.dir, "dir", ".", "working directory")
	dreamerAddCmd.Flags().IntVar(&dreamerFlags.timeout, "timeout", 0, "timeout in seconds (default 300)")
	dreamerAddCmd.Flags().BoolVar(&dreamerFlags.worktree, "worktree", false, "run in an isolated git worktree")
	dreamerAddCmd.Flags().StringVar(&dreamerFlags.tags, "tags", "", "comma-separated tags")
	dreamerAddCmd.Flags().StringVar(&dreamerFlags.repoID, "repo", "", "owning repo id")
	_ = dreamerAddCmd.MarkFlagRequired("command")

	dreamerHistoryCmd.Flags().IntVar(&dreamerFlags.limit, "limit", 20, "max rows")

	dreamerCmd.AddCommand(dreamerAddCmd)
	dreamerCmd.AddCommand(dreamerListCmd)
	dreamerCmd.AddCommand(dreamerRemoveCmd)
	dreamerCmd.AddCommand(dreamerRunCmd)
	dreamerCmd.AddCommand(dreamerHistoryCmd)
	dreamerCmd.AddCommand(dreamerLogsCmd)
	rootCmd.AddCommand(dreamerCmd)
}
