// Package indexer implements the code-indexing pipeline of spec.md
// §4.8: scan a repo, diff against the store's bookkeeping, parse
// added/modified files through the language registry, and persist
// symbols and imports. The worker/result-channel shape is grounded on
// standardbeagle-lci's indexing.FileProcessor (other_examples),
// simplified down from its multi-stage AST/trigram pipeline to the
// scan→parse→write steps this spec calls for.
package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/untoldecay/matrix/internal/indexer/languages"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

// excludedDirs are skipped outright during the file-system walk, across
// ecosystems (spec.md §4.8 step 1).
var excludedDirs = map[string]bool{
	".git":           true,
	"node_modules":   true,
	"vendor":         true,
	"dist":           true,
	"build":          true,
	"target":         true,
	".venv":          true,
	"venv":           true,
	"__pycache__":    true,
	".mypy_cache":    true,
	".pytest_cache":  true,
	".next":          true,
	".nuxt":          true,
	"bin":            true,
	"obj":            true,
	".gradle":        true,
	".idea":          true,
	".vscode":        true,
	"coverage":       true,
	".tox":           true,
	"_build":         true,
	"deps":           true,
	".zig-cache":     true,
	"zig-out":        true,
	".terraform":     true,
}

// testPathPattern matches common test/mock path conventions skipped
// unless the caller opts in via Options.IncludeTests.
var testPathPattern = regexp.MustCompile(`(?i)(^|/)(__tests__|__mocks__|test|tests|spec|specs)(/|$)|([._](test|spec|mock))\.[A-Za-z0-9]+$`)

// generatedDeclPattern matches generated declaration files that are
// always skipped regardless of IncludeTests.
var generatedDeclPattern = regexp.MustCompile(`\.d\.ts$|_pb2\.py$|\.pb\.go$|\.g\.dart$`)

// Options configures one indexing run.
type Options struct {
	MaxFileBytes int64 // default 1 MiB
	IncludeTests bool
	Force        bool // ignore mtime, reparse everything
	Concurrency  int  // parser worker count, default runtime.GOMAXPROCS(0)
	Progress     func(event ProgressEvent)
}

// ProgressEvent is reported once per file processed (spec.md §4.8
// "progress is reported via a caller-provided callback").
type ProgressEvent struct {
	Path   string
	Action string // "added", "modified", "deleted", "error"
	Err    error
}

// Result summarizes one Index run.
type Result struct {
	Added    int
	Modified int
	Deleted  int
	Errors   int
}

// Pipeline drives the scan/diff/parse/write cycle against one store.
type Pipeline struct {
	db       store.Store
	registry *languages.Registry
}

func New(db store.Store, registry *languages.Registry) *Pipeline {
	return &Pipeline{db: db, registry: registry}
}

type fileTask struct {
	relPath string
	absPath string
	mtimeMS int64
	action  string // "added" or "modified"
}

type parsedFile struct {
	task   fileTask
	result languages.ParseResult
	err    error
}

// Index runs one full scan/diff/parse/write cycle for repoID rooted at
// rootDir.
func (p *Pipeline) Index(ctx context.Context, repoID, rootDir string, opts Options) (*Result, error) {
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = 1 << 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}

	scanned, err := p.scan(rootDir, opts)
	if err != nil {
		return nil, fmt.Errorf("indexer: scan %s: %w", rootDir, err)
	}

	existing, err := p.db.ListRepoFiles(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("indexer: list repo files: %w", err)
	}
	existingByPath := make(map[string]*types.RepoFile, len(existing))
	for _, f := range existing {
		existingByPath[f.FilePath] = f
	}

	var tasks []fileTask
	seen := make(map[string]bool, len(scanned))
	for relPath, info := range scanned {
		seen[relPath] = true
		prior, ok := existingByPath[relPath]
		switch {
		case !ok:
			tasks = append(tasks, fileTask{relPath: relPath, absPath: info.abs, mtimeMS: info.mtimeMS, action: "added"})
		case opts.Force || prior.MTime != info.mtimeMS:
			tasks = append(tasks, fileTask{relPath: relPath, absPath: info.abs, mtimeMS: info.mtimeMS, action: "modified"})
		}
	}

	var deleted []string
	for relPath := range existingByPath {
		if !seen[relPath] {
			deleted = append(deleted, relPath)
		}
	}

	result := &Result{}

	parsedCh := p.parseConcurrently(ctx, tasks, opts)
	for pf := range parsedCh {
		if pf.err != nil {
			result.Errors++
			p.report(opts, pf.task.relPath, "error", pf.err)
			continue
		}
		if err := p.writeParsedFile(ctx, repoID, pf); err != nil {
			result.Errors++
			p.report(opts, pf.task.relPath, "error", err)
			continue
		}
		if pf.task.action == "added" {
			result.Added++
		} else {
			result.Modified++
		}
		p.report(opts, pf.task.relPath, pf.task.action, nil)
	}

	for _, relPath := range deleted {
		if err := p.db.DeleteRepoFile(ctx, repoID, relPath); err != nil {
			result.Errors++
			p.report(opts, relPath, "error", err)
			continue
		}
		result.Deleted++
		p.report(opts, relPath, "deleted", nil)
	}

	return result, nil
}

func (p *Pipeline) report(opts Options, path, action string, err error) {
	if opts.Progress != nil {
		opts.Progress(ProgressEvent{Path: path, Action: action, Err: err})
	}
}

// parseConcurrently fans tasks out across opts.Concurrency worker
// goroutines; every result lands on one channel that the caller drains
// and writes to the store serially (spec.md §4.8: "parsing multiple
// files concurrently across worker threads is permitted; all database
// writes serialize through the store").
func (p *Pipeline) parseConcurrently(ctx context.Context, tasks []fileTask, opts Options) <-chan parsedFile {
	out := make(chan parsedFile, opts.Concurrency)
	taskCh := make(chan fileTask)

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				out <- p.parseOne(t)
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, t := range tasks {
			select {
			case <-ctx.Done():
				return
			case taskCh <- t:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Pipeline) parseOne(t fileTask) parsedFile {
	content, err := os.ReadFile(t.absPath)
	if err != nil {
		return parsedFile{task: t, err: fmt.Errorf("read %s: %w", t.relPath, err)}
	}
	ext := strings.ToLower(filepath.Ext(t.relPath))
	extractor := p.registry.ForExtension(ext)
	if extractor == nil {
		return parsedFile{task: t, err: fmt.Errorf("no extractor for extension %s", ext)}
	}
	return parsedFile{task: t, result: extractor.Parse(t.absPath, content)}
}

func (p *Pipeline) writeParsedFile(ctx context.Context, repoID string, pf parsedFile) error {
	fileID, err := p.db.UpsertRepoFile(ctx, &types.RepoFile{
		RepoID:   repoID,
		FilePath: pf.task.relPath,
		MTime:    pf.task.mtimeMS,
	})
	if err != nil {
		return fmt.Errorf("upsert repo file %s: %w", pf.task.relPath, err)
	}

	symbols := make([]*types.Symbol, 0, len(pf.result.Symbols))
	for _, s := range pf.result.Symbols {
		symbols = append(symbols, &types.Symbol{
			RepoID:    repoID,
			FileID:    fileID,
			Name:      s.Name,
			Kind:      s.Kind,
			Line:      s.Line,
			Column:    s.Column,
			EndLine:   s.EndLine,
			Exported:  s.Exported,
			IsDefault: s.IsDefault,
			Scope:     s.Scope,
			Signature: s.Signature,
		})
	}
	imports := make([]*types.Import, 0, len(pf.result.Imports))
	for _, imp := range pf.result.Imports {
		imports = append(imports, &types.Import{
			FileID:       fileID,
			ImportedName: imp.ImportedName,
			LocalName:    imp.LocalName,
			SourcePath:   imp.SourcePath,
			IsDefault:    imp.IsDefault,
			IsNamespace:  imp.IsNamespace,
			IsType:       imp.IsType,
			Line:         imp.Line,
		})
	}

	// Parser errors are non-fatal (spec.md §4.9): whatever was
	// extracted before the failure is still stored.
	return p.db.ReplaceFileSymbolsAndImports(ctx, fileID, repoID, symbols, imports)
}

type scannedFile struct {
	abs     string
	mtimeMS int64
}

func (p *Pipeline) scan(rootDir string, opts Options) (map[string]scannedFile, error) {
	extSet := make(map[string]bool)
	for _, ext := range p.registry.Extensions() {
		extSet[ext] = true
	}

	out := make(map[string]scannedFile)
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootDir && excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		ext := strings.ToLower(filepath.Ext(path))
		if !extSet[ext] {
			return nil
		}
		if generatedDeclPattern.MatchString(relPath) {
			return nil
		}
		if !opts.IncludeTests && testPathPattern.MatchString(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > opts.MaxFileBytes {
			return nil
		}

		out[relPath] = scannedFile{abs: path, mtimeMS: info.ModTime().UnixMilli()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
