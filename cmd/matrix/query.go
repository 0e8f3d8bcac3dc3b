package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/types"
	"github.com/untoldecay/matrix/internal/utils"
)

var queryFlags struct {
	kind  string
	file  string
	limit int
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show indexed file/symbol/import counts for a repo (§4.10)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		files, symbols, imports, lastIndexed, err := db.GetIndexStatus(context.Background(), repoID)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(map[string]interface{}{
				"files": files, "symbols": symbols, "imports": imports, "lastIndexed": lastIndexed,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "files=%d symbols=%d imports=%d lastIndexed=%s\n", files, symbols, imports, lastIndexed)
		return nil
	},
}

var indexFindCmd = &cobra.Command{
	Use:   "find <symbol-name>",
	Short: "Find where a symbol is defined",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		symbols, err := db.FindDefinitions(ctx, repoID, args[0], types.SymbolKind(queryFlags.kind), queryFlags.file)
		if err != nil {
			return err
		}
		if len(symbols) > 0 {
			return printSymbols(cmd, symbols)
		}

		if suggestion := closestExportedName(ctx, db, repoID, args[0]); suggestion != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "no exact match for %q — did you mean %q?\n", args[0], suggestion)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "no definitions found for %q\n", args[0])
		return nil
	},
}

// closestExportedName suggests a typo-tolerant fallback for a missed
// `matrix index find` lookup, the same "closest candidate by edit
// distance" resolution BeadsLog's query layer uses to recover from a
// near-miss entity name.
func closestExportedName(ctx context.Context, db interface {
	ListExports(ctx context.Context, repoID, pathPrefix string) ([]*types.Symbol, error)
}, repoID, query string) string {
	exports, err := db.ListExports(ctx, repoID, "")
	if err != nil || len(exports) == 0 {
		return ""
	}

	const maxDistance = 3
	best := ""
	bestDist := maxDistance + 1
	lowerQuery := strings.ToLower(query)
	seen := map[string]bool{}
	for _, sym := range exports {
		if seen[sym.Name] {
			continue
		}
		seen[sym.Name] = true
		dist := utils.ComputeDistance(lowerQuery, strings.ToLower(sym.Name))
		if dist < bestDist {
			bestDist = dist
			best = sym.Name
		}
	}
	if bestDist > maxDistance {
		return ""
	}
	return best
}

var indexExportsCmd = &cobra.Command{
	Use:   "exports [path-prefix]",
	Short: "List exported symbols, optionally under a path prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		symbols, err := db.ListExports(context.Background(), repoID, prefix)
		if err != nil {
			return err
		}
		return printSymbols(cmd, symbols)
	},
}

var indexSearchCmd = &cobra.Command{
	Use:   "grep <query>",
	Short: "Fuzzy-search symbol names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		symbols, err := db.SearchSymbols(ctx, repoID, args[0], queryFlags.limit)
		if err != nil {
			return err
		}
		if len(symbols) > 0 {
			return printSymbols(cmd, symbols)
		}

		// SearchSymbols is a substring LIKE match; when that misses,
		// fall back to a genuine subsequence fuzzy match over every
		// exported name so "grep" lives up to its "fuzzy" billing.
		exports, err := db.ListExports(ctx, repoID, "")
		if err != nil {
			return err
		}
		var fuzzy []*types.Symbol
		for _, sym := range exports {
			if utils.FuzzyMatch(args[0], sym.Name) {
				fuzzy = append(fuzzy, sym)
				if len(fuzzy) >= queryFlags.limit {
					break
				}
			}
		}
		return printSymbols(cmd, fuzzy)
	},
}

var indexImportsCmd = &cobra.Command{
	Use:   "imports <file>",
	Short: "List a file's import statements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		imports, err := db.GetFileImports(context.Background(), repoID, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(imports)
		}
		for _, imp := range imports {
			fmt.Fprintf(cmd.OutOrStdout(), "%d  %s -> %s\n", imp.Line, imp.ImportedName, imp.SourcePath)
		}
		return nil
	},
}

func printSymbols(cmd *cobra.Command, symbols []*types.Symbol) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(symbols)
	}
	for _, s := range symbols {
		fmt.Fprintf(cmd.OutOrStdout(), "file#%d:%d  %s %s\n", s.FileID, s.Line, s.Kind, s.Name)
	}
	return nil
}

func init() {
	indexFindCmd.Flags().StringVar(&queryFlags.kind, "kind", "", "restrict to a symbol kind (function, class, ...)")
	indexFindCmd.Flags().StringVar(&queryFlags.file, "file", "", "restrict to a file path")
	indexSearchCmd.Flags().IntVar(&queryFlags.limit, "limit", 20, "max results")

	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexFindCmd)
	indexCmd.AddCommand(indexExportsCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexImportsCmd)
}
