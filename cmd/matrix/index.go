package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/untoldecay/matrix/internal/config"
	"github.com/untoldecay/matrix/internal/fingerprint"
	"github.com/untoldecay/matrix/internal/indexer"
	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/indexer/languages"
	"github.com/untoldecay/matrix/internal/paths"
	"github.com/untoldecay/matrix/internal/store"
)

var indexFlags struct {
	dir          string
	force        bool
	includeTests bool
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a repository's source tree (§4.8)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, pipeline, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := pipeline.Index(context.Background(), repoID, indexFlags.dir, indexer.Options{
			MaxFileBytes: int64(config.GetInt("index.max-file-bytes")),
			IncludeTests: indexFlags.includeTests,
			Force:        indexFlags.force,
			Progress: func(e indexer.ProgressEvent) {
				if e.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "index: %s: %v\n", e.Path, e.Err)
				}
			},
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added=%d modified=%d deleted=%d errors=%d\n",
			result.Added, result.Modified, result.Deleted, result.Errors)
		return nil
	},
}

var indexWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-index on file change, debounced (Expansion D.1)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, pipeline, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("index watch: new watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchRecursive(watcher, indexFlags.dir); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", indexFlags.dir)
		reindex := func() {
			result, err := pipeline.Index(context.Background(), repoID, indexFlags.dir, indexer.Options{
				MaxFileBytes: int64(config.GetInt("index.max-file-bytes")),
				IncludeTests: indexFlags.includeTests,
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "index watch: %v\n", err)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added=%d modified=%d deleted=%d\n", result.Added, result.Modified, result.Deleted)
		}
		debouncer := indexer.NewDebouncer(500*time.Millisecond, reindex)
		defer debouncer.Cancel()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				debouncer.Trigger()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "index watch: %v\n", err)
			}
		}
	},
}

var indexDeadCodeCmd = &cobra.Command{
	Use:   "dead-code",
	Short: "List exported symbols with no observed caller (§4.10 analyze_dead_code)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, repoID, err := openIndexer(indexFlags.dir)
		if err != nil {
			return err
		}
		defer db.Close()

		symbols, err := db.FindUncalledExports(context.Background(), repoID)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(symbols)
		}
		for _, s := range symbols {
			fmt.Fprintf(cmd.OutOrStdout(), "file#%d:%d  %s %s\n", s.FileID, s.Line, s.Kind, s.Name)
		}
		return nil
	},
}

// openIndexer wires a store, a language registry, a pipeline, and the
// fingerprinted repo id for dir, matching the resolution order `matrix
// search` uses for its own Dir-based repo lookup.
func openIndexer(dir string) (store.Store, *indexer.Pipeline, string, error) {
	db, err := openStore()
	if err != nil {
		return nil, nil, "", err
	}

	grammarsDir := config.GetString("index.grammar-cache-dir")
	if grammarsDir == "" {
		if d, err := paths.GrammarsDir(); err == nil {
			grammarsDir = d
		}
	}
	registry, err := languages.NewRegistry(grammar.New(grammarsDir))
	if err != nil {
		db.Close()
		return nil, nil, "", fmt.Errorf("index: build language registry: %w", err)
	}

	repo, err := fingerprint.New(db).DetectAndPersist(context.Background(), dir)
	if err != nil {
		db.Close()
		return nil, nil, "", fmt.Errorf("index: fingerprint repo: %w", err)
	}

	return db, indexer.New(db, registry), repo.ID, nil
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

func init() {
	indexCmd.PersistentFlags().StringVar(&indexFlags.dir, "dir", ".", "repository root to index")
	indexCmd.PersistentFlags().BoolVar(&indexFlags.includeTests, "include-tests", false, "also index test files")
	indexCmd.Flags().BoolVar(&indexFlags.force, "force", false, "reparse every file regardless of mtime")

	indexCmd.AddCommand(indexWatchCmd)
	indexCmd.AddCommand(indexDeadCodeCmd)
	rootCmd.AddCommand(indexCmd)
}
