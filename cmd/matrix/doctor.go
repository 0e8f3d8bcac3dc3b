package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/paths"
)

// doctorCheck is one independent sanity check. It returns an empty
// string when everything is fine, otherwise a human-readable issue
// description — the same "silent on success, describe the problem
// otherwise" contract BeadsLog's doctor quick-checks use.
type doctorCheck struct {
	Name string
	Func func() string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run sanity checks against the store and on-disk caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		sqlDB := db.UnderlyingDB()
		checks := []doctorCheck{
			{"schema", func() string { return checkSchemaVersion(sqlDB) }},
			{"vector-blobs", func() string { return checkVectorBlobs(sqlDB) }},
			{"grammar-cache", checkGrammarCache},
		}

		type result struct {
			Name  string `json:"name"`
			Issue string `json:"issue,omitempty"`
			OK    bool   `json:"ok"`
		}
		var results []result
		var failed bool
		for _, c := range checks {
			issue := c.Func()
			results = append(results, result{Name: c.Name, Issue: issue, OK: issue == ""})
			if issue != "" {
				failed = true
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				if r.OK {
					fmt.Fprintf(cmd.OutOrStdout(), "ok    %s\n", r.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "ISSUE %s: %s\n", r.Name, r.Issue)
				}
			}
		}

		if failed {
			os.Exit(1)
		}
		return nil
	},
}

// checkSchemaVersion confirms the schema_migrations table exists and
// that at least one migration (the base schema) has been recorded —
// an empty table means migrate() never ran to completion.
func checkSchemaVersion(db *sql.DB) string {
	var count int
	err := db.QueryRow(`SELECT count(*) FROM schema_migrations`).Scan(&count)
	if err != nil {
		return fmt.Sprintf("schema_migrations unreadable: %v", err)
	}
	if count == 0 {
		return "schema_migrations is empty — database was never migrated"
	}
	return ""
}

// checkVectorBlobs spot-checks that stored embedding blobs decode to a
// whole number of float32s (§8 invariant 2); a blob whose length isn't
// a multiple of 4 bytes is corrupt.
func checkVectorBlobs(db *sql.DB) string {
	var bad int
	rows, err := db.Query(`SELECT length(problem_embedding) FROM solutions WHERE problem_embedding IS NOT NULL`)
	if err != nil {
		return fmt.Sprintf("scan solution embeddings: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return fmt.Sprintf("scan solution embeddings: %v", err)
		}
		if n%4 != 0 {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Sprintf("%d solution(s) have a corrupt problem_embedding blob", bad)
	}
	return ""
}

func checkGrammarCache() string {
	dir, err := paths.GrammarsDir()
	if err != nil {
		return fmt.Sprintf("resolve grammar cache dir: %v", err)
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return "" // not yet populated, nothing to validate
	}
	if err != nil {
		return fmt.Sprintf("stat grammar cache dir: %v", err)
	}
	if !info.IsDir() {
		return fmt.Sprintf("%s exists but is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("read grammar cache dir: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err == nil && fi.Size() == 0 {
			return fmt.Sprintf("cached grammar %s is empty — delete it", e.Name())
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
