package languages

import (
	"strings"

	"github.com/untoldecay/matrix/internal/indexer/grammar"
	"github.com/untoldecay/matrix/internal/types"
)

func pythonExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func newPythonExtractor(cache *grammar.Cache) (Extractor, error) {
	lang, err := cache.Get("python")
	if err != nil {
		return nil, err
	}
	return &treeSitterExtractor{
		lang: "python",
		exts: []string{".py"},
		language: lang,
		symbolRules: []symbolRule{
			{NodeKind: "function_definition", Kind: types.SymbolFunction, NameField: "name"},
			{NodeKind: "class_definition", Kind: types.SymbolClass, NameField: "name"},
		},
		importRules: []importRule{
			{NodeKind: "import_from_statement", SourceField: "module_name"},
		},
		exportedFn: pythonExported,
	}, nil
}
