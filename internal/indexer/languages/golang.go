package languages

import (
	"unicode"

	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func goExported(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}

func newGoExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("go")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "go",
		exts: []string{".go"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "function_declaration", Kind: types.SymbolFunction, NameField: "name"},
			{NodeKind: "method_declaration", Kind: types.SymbolMethod, NameField: "name"},
			{NodeKind: "type_spec", Kind: types.SymbolType, NameField: "name"},
			{NodeKind: "const_spec", Kind: types.SymbolConst, NameField: "name"},
			{NodeKind: "var_spec", Kind: types.SymbolVariable, NameField: "name"},
		},
		importRules: []importRule{
			{NodeKind: "import_spec", SourceField: "path"},
		},
		exportedFn: goExported,
	}, nil
}
