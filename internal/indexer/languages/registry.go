package languages

import (
	"strings"

	"github.com/untoldecay/matrix/internal/indexer/grammar"
)

// Registry maps both language name and file extension to an Extractor.
type Registry struct {
	byLanguage  map[string]Extractor
	byExtension map[string]Extractor
}

// NewRegistry builds the fifteen-language registry required by
// spec.md §4.9. grammarCache resolves the ten tree-sitter-backed
// grammars; the remaining five run a heuristic extractor with no
// grammar dependency at all (see heuristic.go).
func NewRegistry(grammarCache *grammar.Cache) (*Registry, error) {
	r := &Registry{byLanguage: map[string]Extractor{}, byExtension: map[string]Extractor{}}

	treeSitterLangs := []func(*grammar.Cache) (Extractor, error){
		newGoExtractor,
		newPythonExtractor,
		newJavaScriptExtractor,
		newTypeScriptExtractor,
		newRustExtractor,
		newJavaExtractor,
		newCSharpExtractor,
		newCppExtractor,
		newPHPExtractor,
		newZigExtractor,
	}
	for _, build := range treeSitterLangs {
		ext, err := build(grammarCache)
		if err != nil {
			return nil, err
		}
		r.register(ext)
	}

	for _, ext := range heuristicExtractors() {
		r.register(ext)
	}

	return r, nil
}

func (r *Registry) register(ext Extractor) {
	r.byLanguage[ext.Language()] = ext
	for _, e := range ext.Extensions() {
		r.byExtension[strings.ToLower(e)] = ext
	}
}

// ForExtension returns the extractor registered for a file extension
// (including the leading dot), or nil if none is registered.
func (r *Registry) ForExtension(ext string) Extractor {
	return r.byExtension[strings.ToLower(ext)]
}

// Extensions lists every extension this registry recognizes — the
// glob the indexer pipeline scans with (spec.md §4.8 step 1).
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		out = append(out, ext)
	}
	return out
}
