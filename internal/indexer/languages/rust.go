package languages

import (
	"strings"

	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func rustExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func newRustExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("rust")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "rust",
		exts: []string{".rs"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "function_item", Kind: types.SymbolFunction, NameField: "name"},
			{NodeKind: "struct_item", Kind: types.SymbolClass, NameField: "name"},
			{NodeKind: "enum_item", Kind: types.SymbolEnum, NameField: "name"},
			{NodeKind: "trait_item", Kind: types.SymbolInterface, NameField: "name"},
		},
		importRules: []importRule{
			{NodeKind: "use_declaration", SourceField: "argument"},
		},
		exportedFn: rustExported,
	}, nil
}
