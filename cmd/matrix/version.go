package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags, same convention BeadsLog
// uses for its own cmd/bd build-time version string.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the matrix version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
