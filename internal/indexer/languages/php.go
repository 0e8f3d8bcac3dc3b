package languages

import (
	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func newPHPExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("php")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "php",
		exts: []string{".php"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "function_definition", Kind: types.SymbolFunction, NameField: "name"},
			{NodeKind: "class_declaration", Kind: types.SymbolClass, NameField: "name"},
			{NodeKind: "interface_declaration", Kind: types.SymbolInterface, NameField: "name"},
			{NodeKind: "method_declaration", Kind: types.SymbolMethod, NameField: "name"},
		},
		importRules: []importRule{
			{NodeKind: "namespace_use_declaration", SourceField: "namespace"},
		},
		exportedFn: allExported,
	}, nil
}
