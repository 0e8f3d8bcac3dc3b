package languages

import (
	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func allExported(string) bool { return true }

func newJavaScriptExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("javascript")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "javascript",
		exts: []string{".js", ".jsx", ".mjs", ".cjs"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "function_declaration", Kind: types.SymbolFunction, NameField: "name"},
			{NodeKind: "class_declaration", Kind: types.SymbolClass, NameField: "name"},
			{NodeKind: "method_definition", Kind: types.SymbolMethod, NameField: "name"},
		},
		importRules: []importRule{
			{NodeKind: "import_statement", SourceField: "source"},
		},
		exportedFn: allExported,
	}, nil
}
