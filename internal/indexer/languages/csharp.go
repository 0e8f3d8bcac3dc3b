package languages

import (
	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func newCSharpExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("csharp")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "csharp",
		exts: []string{".cs"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "method_declaration", Kind: types.SymbolMethod, NameField: "name"},
			{NodeKind: "class_declaration", Kind: types.SymbolClass, NameField: "name"},
			{NodeKind: "interface_declaration", Kind: types.SymbolInterface, NameField: "name"},
			{NodeKind: "enum_declaration", Kind: types.SymbolEnum, NameField: "name"},
		},
		importRules: []importRule{
			{NodeKind: "using_directive", SourceField: "name"},
		},
		exportedFn: allExported,
	}, nil
}
