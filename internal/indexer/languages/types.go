// Package languages implements the per-language symbol/import
// extractors of spec.md §4.9 behind a shared template-method base
// (base.go): ten languages parse through tree-sitter grammars already
// present in the retrieved dependency pack
// (github.com/tree-sitter/go-tree-sitter plus the per-grammar
// packages); the remaining five (spec.md §4.9's Kotlin, Swift, Ruby,
// Elixir, C) have no corresponding tree-sitter grammar package
// anywhere in that pack, so they fall back to a line-oriented
// heuristic extractor (heuristic.go) — see DESIGN.md for the
// per-language justification.
package languages

import "github.com/untoldecay/matrix/internal/types"

// ExtractedSymbol is a symbol found during parsing, before it's
// assigned a repo_id/file_id by the indexer pipeline.
type ExtractedSymbol struct {
	Name      string
	Kind      types.SymbolKind
	Line      int
	Column    int
	EndLine   int
	Exported  bool
	IsDefault bool
	Scope     string
	Signature string
}

// ExtractedImport is an import statement found during parsing.
type ExtractedImport struct {
	ImportedName string
	LocalName    string
	SourcePath   string
	IsDefault    bool
	IsNamespace  bool
	IsType       bool
	Line         int
}

// ParseResult is the outcome of parsing one file. Err is set when the
// parse failed partway through; Symbols/Imports retain whatever was
// extracted before the failure (spec.md §4.9: parser errors are
// non-fatal).
type ParseResult struct {
	Symbols []ExtractedSymbol
	Imports []ExtractedImport
	Err     string
}

// Extractor is the per-language contract every parser implements.
type Extractor interface {
	// Language is the registry key (lowercase, e.g. "go", "typescript").
	Language() string
	// Extensions are the file extensions routed to this extractor,
	// including the leading dot (e.g. ".go").
	Extensions() []string
	// Parse extracts symbols and imports from content.
	Parse(filePath string, content []byte) ParseResult
}
