package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/export"
)

var exportFlags struct {
	out     string
	csvType string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export solutions, failures, and repos (§6)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		w := cmd.OutOrStdout()
		if exportFlags.out != "" {
			f, err := os.Create(exportFlags.out)
			if err != nil {
				return fmt.Errorf("export: create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if exportFlags.csvType != "" {
			return export.CSV(context.Background(), db, w, export.Type(exportFlags.csvType))
		}
		return export.JSON(context.Background(), db, w, time.Now())
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.out, "out", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFlags.csvType, "csv", "", "emit CSV for one type instead of the full JSON bundle: solutions|failures|repos")
	rootCmd.AddCommand(exportCmd)
}
