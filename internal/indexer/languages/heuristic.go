package languages

import (
	"bufio"
	"bytes"
	"regexp"

	"github.com/untoldecay/matrix/internal/types"
)

// heuristicExtractor covers the languages spec.md §4.9 requires that
// have no tree-sitter grammar package anywhere in the retrieved
// dependency pack: Kotlin, Swift, Ruby, Elixir, and C (tree-sitter-cpp
// is present but is a distinct grammar from tree-sitter-c, which
// never appears). Rather than fabricate a grammar dependency, these
// five run a line-oriented regex scan. It is deliberately conservative
// (no nested-scope or signature extraction) and documented in
// DESIGN.md as the stdlib-only fallback for this gap in the pack.
type heuristicExtractor struct {
	lang         string
	exts         []string
	symbolPatterns []heuristicSymbolPattern
	importPattern  *regexp.Regexp
}

type heuristicSymbolPattern struct {
	Pattern *regexp.Regexp
	Kind    types.SymbolKind
}

func (e *heuristicExtractor) Language() string     { return e.lang }
func (e *heuristicExtractor) Extensions() []string { return e.exts }

func (e *heuristicExtractor) Parse(filePath string, content []byte) ParseResult {
	var result ParseResult
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		for _, sp := range e.symbolPatterns {
			if m := sp.Pattern.FindStringSubmatch(line); m != nil {
				name := m[len(m)-1]
				result.Symbols = append(result.Symbols, ExtractedSymbol{
					Name:     name,
					Kind:     sp.Kind,
					Line:     lineNo,
					Exported: true,
				})
			}
		}
		if e.importPattern != nil {
			if m := e.importPattern.FindStringSubmatch(line); m != nil {
				source := m[len(m)-1]
				result.Imports = append(result.Imports, ExtractedImport{
					ImportedName: source,
					SourcePath:   source,
					Line:         lineNo,
				})
			}
		}
	}
	if err := sc.Err(); err != nil {
		result.Err = err.Error()
	}
	return result
}

func heuristicExtractors() []Extractor {
	return []Extractor{
		&heuristicExtractor{
			lang: "kotlin",
			exts: []string{".kt", ".kts"},
			symbolPatterns: []heuristicSymbolPattern{
				{Pattern: regexp.MustCompile(`\bfun\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`), Kind: types.SymbolFunction},
				{Pattern: regexp.MustCompile(`\bclass\s+([A-Za-z_][A-Za-z0-9_]*)`), Kind: types.SymbolClass},
				{Pattern: regexp.MustCompile(`\binterface\s+([A-Za-z_][A-Za-z0-9_]*)`), Kind: types.SymbolInterface},
			},
			importPattern: regexp.MustCompile(`^import\s+([A-Za-z0-9_.]+)`),
		},
		&heuristicExtractor{
			lang: "swift",
			exts: []string{".swift"},
			symbolPatterns: []heuristicSymbolPattern{
				{Pattern: regexp.MustCompile(`\bfunc\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`), Kind: types.SymbolFunction},
				{Pattern: regexp.MustCompile(`\bclass\s+([A-Za-z_][A-Za-z0-9_]*)`), Kind: types.SymbolClass},
				{Pattern: regexp.MustCompile(`\bstruct\s+([A-Za-z_][A-Za-z0-9_]*)`), Kind: types.SymbolClass},
				{Pattern: regexp.MustCompile(`\bprotocol\s+([A-Za-z_][A-Za-z0-9_]*)`), Kind: types.SymbolInterface},
			},
			importPattern: regexp.MustCompile(`^import\s+([A-Za-z0-9_.]+)`),
		},
		&heuristicExtractor{
			lang: "ruby",
			exts: []string{".rb"},
			symbolPatterns: []heuristicSymbolPattern{
				{Pattern: regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_?!=]*)`), Kind: types.SymbolMethod},
				{Pattern: regexp.MustCompile(`^\s*class\s+([A-Za-z_][A-Za-z0-9_:]*)`), Kind: types.SymbolClass},
				{Pattern: regexp.MustCompile(`^\s*module\s+([A-Za-z_][A-Za-z0-9_:]*)`), Kind: types.SymbolNamespace},
			},
			importPattern: regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`),
		},
		&heuristicExtractor{
			lang: "elixir",
			exts: []string{".ex", ".exs"},
			symbolPatterns: []heuristicSymbolPattern{
				{Pattern: regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_?!]*)`), Kind: types.SymbolFunction},
				{Pattern: regexp.MustCompile(`^\s*defmodule\s+([A-Za-z_][A-Za-z0-9_.]*)`), Kind: types.SymbolNamespace},
				{Pattern: regexp.MustCompile(`^\s*defp\s+([A-Za-z_][A-Za-z0-9_?!]*)`), Kind: types.SymbolFunction},
			},
			importPattern: regexp.MustCompile(`^\s*(?:import|alias|use)\s+([A-Za-z0-9_.]+)`),
		},
		&heuristicExtractor{
			lang: "c",
			exts: []string{".c", ".h"},
			symbolPatterns: []heuristicSymbolPattern{
				{Pattern: regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ *]*\b([A-Za-z_][A-Za-z0-9_]*)\s*\([^;]*\)\s*\{`), Kind: types.SymbolFunction},
				{Pattern: regexp.MustCompile(`^\s*typedef\s+struct\s*\{?.*?\b([A-Za-z_][A-Za-z0-9_]*)\s*;`), Kind: types.SymbolType},
			},
			importPattern: regexp.MustCompile(`^\s*#include\s+[<"]([^>"]+)[>"]`),
		},
	}
}
