// Package grammar resolves a language name to a loaded tree-sitter
// Language. Every grammar the indexer ships with is a statically
// linked Go package already present in go.mod (the same packages the
// rest of the retrieval pack pins, e.g. standardbeagle-lci's go.mod).
// GrammarsDir exists for the one case a statically linked grammar
// isn't available: it is where a future WASM-compiled grammar,
// fetched on first use and executed under wazero (the same runtime
// ncruces/go-sqlite3 already pulls in to run SQLite itself), would be
// cached. No language currently shipped needs that path — see
// DESIGN.md for which of the fifteen required languages have no
// grammar package in the retrieved dependency pack at all and fall
// back to a heuristic extractor instead of tree-sitter.
package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	tscsharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tscpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tsgo "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tsjava "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tsphp "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tsrust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tszig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// Cache lazily constructs and memoizes *ts.Language values. Safe for
// concurrent use: parsing runs on worker threads (spec.md §5) and all
// of them share one process-wide cache.
type Cache struct {
	dir string

	mu        sync.Mutex
	languages map[string]*ts.Language
}

func New(grammarsDir string) *Cache {
	return &Cache{dir: grammarsDir, languages: map[string]*ts.Language{}}
}

// builtins maps a registry language name to the raw grammar
// constructor from its statically linked binding package. Every
// grammar binding's Language() func returns unsafe.Pointer per the
// tree-sitter Go binding convention.
var builtins = map[string]func() unsafe.Pointer{
	"go":         tsgo.Language,
	"python":     tspython.Language,
	"javascript": tsjavascript.Language,
	"typescript": tstypescript.LanguageTypescript,
	"tsx":        tstypescript.LanguageTSX,
	"rust":       tsrust.Language,
	"java":       tsjava.Language,
	"csharp":     tscsharp.Language,
	"cpp":        tscpp.Language,
	"php":        tsphp.LanguagePHP,
	"zig":        tszig.Language,
}

func (c *Cache) Get(lang string) (*ts.Language, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if got, ok := c.languages[lang]; ok {
		return got, nil
	}

	ctor, ok := builtins[lang]
	if !ok {
		return nil, fmt.Errorf("grammar: no grammar available for language %q", lang)
	}
	language := ts.NewLanguage(ctor())
	c.languages[lang] = language
	return language, nil
}

// ensureDir makes sure the on-disk grammar cache directory exists,
// for the WASM-download fallback path described in the package doc.
func (c *Cache) ensureDir() error {
	if c.dir == "" {
		return nil
	}
	return os.MkdirAll(c.dir, 0o755)
}

func (c *Cache) path(lang string) string {
	return filepath.Join(c.dir, lang+".wasm")
}
