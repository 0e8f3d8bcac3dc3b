package languages

import (
	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func newTypeScriptExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("typescript")
	if err != nil {
		return nil, err
	}
	tsx, err := cache.Get("tsx")
	if err != nil {
		return nil, err
	}
	return &tsxAwareExtractor{
		ts: &treeSitterExtractor{
			lang: "typescript",
			exts: []string{".ts"},
			language: lang,
			symbolRules: typeScriptSymbolRules,
			importRules: typeScriptImportRules,
			exportedFn: allExported,
		},
		tsx: &treeSitterExtractor{
			lang: "typescript",
			exts: []string{".tsx"},
			language: tsx,
			symbolRules: typeScriptSymbolRules,
			importRules: typeScriptImportRules,
			exportedFn: allExported,
		},
	}, nil
}

var typeScriptSymbolRules = []symbolRule{
	{NodeKind: "function_declaration", Kind: types.SymbolFunction, NameField: "name"},
	{NodeKind: "class_declaration", Kind: types.SymbolClass, NameField: "name"},
	{NodeKind: "interface_declaration", Kind: types.SymbolInterface, NameField: "name"},
	{NodeKind: "type_alias_declaration", Kind: types.SymbolType, NameField: "name"},
	{NodeKind: "method_definition", Kind: types.SymbolMethod, NameField: "name"},
	{NodeKind: "enum_declaration", Kind: types.SymbolEnum, NameField: "name"},
}

var typeScriptImportRules = []importRule{
	{NodeKind: "import_statement", SourceField: "source"},
}

// tsxAwareExtractor picks the .ts or .tsx grammar by file extension;
// TypeScript and TSX are two distinct tree-sitter grammars sharing one
// registry entry, matching spec.md §4.9's "TypeScript/TSX" language.
type tsxAwareExtractor struct {
	ts  *treeSitterExtractor
	tsx *treeSitterExtractor
}

func (e *tsxAwareExtractor) Language() string { return "typescript" }
func (e *tsxAwareExtractor) Extensions() []string { return []string{".ts", ".tsx"} }

func (e *tsxAwareExtractor) Parse(filePath string, content []byte) ParseResult {
	if len(filePath) >= 4 && filePath[len(filePath)-4:] == ".tsx" {
		return e.tsx.Parse(filePath, content)
	}
	return e.ts.Parse(filePath, content)
}
