package languages

import (
	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func newCppExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("cpp")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "cpp",
		exts: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "class_specifier", Kind: types.SymbolClass, NameField: "name"},
			{NodeKind: "struct_specifier", Kind: types.SymbolClass, NameField: "name"},
			{NodeKind: "function_definition", Kind: types.SymbolFunction, NameField: "declarator"},
		},
		importRules: []importRule{
			{NodeKind: "preproc_include", SourceField: "path"},
		},
		exportedFn: allExported,
	}, nil
}
