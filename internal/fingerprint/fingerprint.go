// Package fingerprint implements repo fingerprinting (spec.md §4.6):
// walking to the git root, reading project manifests, detecting
// frameworks and patterns, and embedding the resulting text form.
package fingerprint

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/untoldecay/matrix/internal/embedding"
	"github.com/untoldecay/matrix/internal/store"
	"github.com/untoldecay/matrix/internal/types"
)

// Fingerprinter detects and persists a repo's structural fingerprint.
type Fingerprinter struct {
	Store store.Store
}

func New(s store.Store) *Fingerprinter {
	return &Fingerprinter{Store: s}
}

// Fingerprint is the structured result of walking a directory.
type Fingerprint struct {
	Root          string
	Languages     []string
	Frameworks    []string
	Dependencies  []string
	Patterns      []string
	TestFramework string
}

// frameworksByDependency maps a known manifest dependency name to the
// framework it implies. A small static table, not a registry: spec.md
// §4.6 calls for "a static dependency-name map".
var frameworksByDependency = map[string]string{
	"react":        "react",
	"next":         "next.js",
	"vue":          "vue",
	"@angular/core": "angular",
	"express":      "express",
	"fastify":      "fastify",
	"django":       "django",
	"flask":        "flask",
	"fastapi":      "fastapi",
	"rails":        "rails",
	"actix-web":    "actix",
	"axum":         "axum",
	"rocket":       "rocket",
	"gin-gonic/gin": "gin",
	"echo":         "echo",
	"spring-boot":  "spring",
}

var testFrameworksByDependency = map[string]string{
	"jest":       "jest",
	"vitest":     "vitest",
	"mocha":      "mocha",
	"pytest":     "pytest",
	"rspec":      "rspec",
	"testify":    "testify",
	"junit":      "junit",
	"cargo-test": "cargo test",
}

// apiFrameworkDeps is the subset of frameworksByDependency that are
// server-side API frameworks rather than UI frameworks; §4.6 calls
// for "API frameworks" as its own pattern, separate from the
// Frameworks list a dependency also populates.
var apiFrameworkDeps = map[string]bool{
	"express":       true,
	"fastify":       true,
	"django":        true,
	"flask":         true,
	"fastapi":       true,
	"rails":         true,
	"actix-web":     true,
	"axum":          true,
	"rocket":        true,
	"gin-gonic/gin": true,
	"echo":          true,
	"spring-boot":   true,
}

// cliLibsByDependency maps a known manifest dependency to the
// "cli-tool" pattern §4.6 calls for ("CLI libraries").
var cliLibsByDependency = map[string]bool{
	"spf13/cobra": true,
	"urfave/cli":  true,
	"click":       true,
	"typer":       true,
	"commander":   true,
	"yargs":       true,
	"clap":        true,
	"structopt":   true,
	"thor":        true,
}

// patternFiles flags a repo pattern when the named file/dir exists at root.
var patternFiles = map[string]string{
	"pnpm-workspace.yaml": "monorepo",
	"lerna.json":          "monorepo",
	"nx.json":             "monorepo",
	"turbo.json":          "monorepo",
	"Dockerfile":          "containerized",
	"docker-compose.yml":  "containerized",
	".github/workflows":   "ci",
}

// buildConfigFiles flags the "library-build" pattern §4.6 calls for
// ("library-build configs") — bundler/packaging configs that only
// make sense for a repo that builds a library for distribution rather
// than an application.
var buildConfigFiles = map[string]string{
	"rollup.config.js": "library-build",
	"rollup.config.ts": "library-build",
	"tsup.config.ts":   "library-build",
	"vite.config.ts":   "library-build",
	"vite.config.js":   "library-build",
	"setup.py":         "library-build",
	"setup.cfg":        "library-build",
}

// Detect walks from dir to the git root (or dir itself if no .git is
// found), reads the supported manifests, and returns the merged
// Fingerprint. It performs no store I/O.
func Detect(dir string) (*Fingerprint, error) {
	root := findGitRoot(dir)

	fp := &Fingerprint{Root: root}

	if deps, ok := readPackageJSON(root); ok {
		fp.Languages = append(fp.Languages, "javascript")
		fp.Dependencies = append(fp.Dependencies, deps...)
	}
	if deps, ok := readCargoToml(root); ok {
		fp.Languages = append(fp.Languages, "rust")
		fp.Dependencies = append(fp.Dependencies, deps...)
	}
	if deps, ok := readPython(root); ok {
		fp.Languages = append(fp.Languages, "python")
		fp.Dependencies = append(fp.Dependencies, deps...)
	}
	if deps, ok := readGoMod(root); ok {
		fp.Languages = append(fp.Languages, "go")
		fp.Dependencies = append(fp.Dependencies, deps...)
	}

	for _, dep := range fp.Dependencies {
		if fw, ok := frameworksByDependency[dep]; ok {
			fp.Frameworks = appendUnique(fp.Frameworks, fw)
		}
		if apiFrameworkDeps[dep] {
			fp.Patterns = appendUnique(fp.Patterns, "api-framework")
		}
		if cliLibsByDependency[dep] {
			fp.Patterns = appendUnique(fp.Patterns, "cli-tool")
		}
		if tf, ok := testFrameworksByDependency[dep]; ok && fp.TestFramework == "" {
			fp.TestFramework = tf
		}
	}

	for name, pattern := range patternFiles {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			fp.Patterns = appendUnique(fp.Patterns, pattern)
		}
	}
	for name, pattern := range buildConfigFiles {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			fp.Patterns = appendUnique(fp.Patterns, pattern)
		}
	}

	sort.Strings(fp.Languages)
	sort.Strings(fp.Frameworks)
	sort.Strings(fp.Dependencies)
	sort.Strings(fp.Patterns)

	return fp, nil
}

func findGitRoot(dir string) string {
	cur := dir
	for {
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// Text renders the fingerprint's canonical text form for embedding,
// dropping empty sections.
func (fp *Fingerprint) Text() string {
	var parts []string
	if name := filepath.Base(fp.Root); name != "" {
		parts = append(parts, "project: "+name)
	}
	if len(fp.Languages) > 0 {
		parts = append(parts, "languages: "+strings.Join(fp.Languages, ", "))
	}
	if len(fp.Frameworks) > 0 {
		parts = append(parts, "frameworks: "+strings.Join(fp.Frameworks, ", "))
	}
	if len(fp.Patterns) > 0 {
		parts = append(parts, "patterns: "+strings.Join(fp.Patterns, ", "))
	}
	if len(fp.Dependencies) > 0 {
		parts = append(parts, "dependencies: "+strings.Join(fp.Dependencies, ", "))
	}
	return strings.Join(parts, " | ")
}

// DetectAndPersist detects the fingerprint for dir, embeds it, and
// upserts the repos row, only rewriting the row if the structural
// fields actually changed (spec.md §4.6).
func (f *Fingerprinter) DetectAndPersist(ctx context.Context, dir string) (*types.Repo, error) {
	fp, err := Detect(dir)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: detect: %w", err)
	}

	existing, err := f.Store.GetRepoByPath(ctx, fp.Root)
	if err != nil {
		existing = nil
	}

	if existing != nil && structurallyEqual(existing, fp) {
		return existing, nil
	}

	repo := &types.Repo{
		Name:                 filepath.Base(fp.Root),
		Path:                 fp.Root,
		Languages:            fp.Languages,
		Frameworks:           fp.Frameworks,
		Dependencies:         fp.Dependencies,
		Patterns:             fp.Patterns,
		TestFramework:        fp.TestFramework,
		FingerprintEmbedding: embedding.Embed(fp.Text()),
	}
	if existing != nil {
		repo.ID = existing.ID
	}
	if err := f.Store.UpsertRepo(ctx, repo); err != nil {
		return nil, fmt.Errorf("fingerprint: upsert repo: %w", err)
	}
	return repo, nil
}

func structurallyEqual(r *types.Repo, fp *Fingerprint) bool {
	return stringsEqual(r.Languages, fp.Languages) &&
		stringsEqual(r.Frameworks, fp.Frameworks) &&
		stringsEqual(r.Dependencies, fp.Dependencies) &&
		stringsEqual(r.Patterns, fp.Patterns) &&
		r.TestFramework == fp.TestFramework
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// scanLines reads a manifest file line by line. A missing or unreadable
// file is not an error: it returns (nil, false).
func scanLines(path string) ([]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, true
}
