package languages

import (
	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func newZigExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("zig")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "zig",
		exts: []string{".zig"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "function_declaration", Kind: types.SymbolFunction, NameField: "name"},
			{NodeKind: "variable_declaration", Kind: types.SymbolVariable, NameField: "name"},
		},
		importRules: []importRule{
			{NodeKind: "builtin_call", SourceField: "arguments"},
		},
		exportedFn: func(name string) bool { return len(name) > 0 && name[0] != '_' },
	}, nil
}
