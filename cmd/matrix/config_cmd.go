package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/config"
	"github.com/untoldecay/matrix/internal/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change matrix configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value and its source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := config.GetString(args[0])
		source := config.GetValueSource(args[0])
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(map[string]string{"key": args[0], "value": value, "source": string(source)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], value, source)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and persist it under <matrix home>/config.yaml",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Set(args[0], args[1])
		root, err := paths.Root()
		if err != nil {
			return err
		}
		return config.WriteConfigFile(filepath.Join(root, "config.yaml"))
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all configuration settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.AllSettings()
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
