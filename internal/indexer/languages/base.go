package languages

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/untoldecay/matrix/internal/types"
)

// symbolRule maps a tree-sitter node kind to the SymbolKind it
// produces and says which child field carries the symbol's name.
type symbolRule struct {
	NodeKind   string
	Kind       types.SymbolKind
	NameField  string // ChildByFieldName key, e.g. "name"
	ExportedBy func(nodeText string) bool
}

// importRule maps a tree-sitter node kind representing an import/use
// statement to the field holding its source path.
type importRule struct {
	NodeKind    string
	SourceField string
}

// treeSitterExtractor is the shared template-method base: grammar
// loading and tree walking are identical across every tree-sitter
// backed language; only the table of node kinds differs (spec.md
// §4.9's shared base + two abstract extract_* operations).
type treeSitterExtractor struct {
	lang         string
	exts         []string
	language     *ts.Language
	symbolRules  []symbolRule
	importRules  []importRule
	exportedFn   func(name string) bool
}

func (e *treeSitterExtractor) Language() string    { return e.lang }
func (e *treeSitterExtractor) Extensions() []string { return e.exts }

func (e *treeSitterExtractor) Parse(filePath string, content []byte) (result ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Sprintf("panic parsing %s: %v", filePath, r)
		}
	}()

	parser := ts.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(e.language); err != nil {
		return ParseResult{Err: fmt.Sprintf("set language: %v", err)}
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return ParseResult{Err: "parse returned no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()
	result.Symbols = e.extractSymbols(root, content)
	result.Imports = e.extractImports(root, content)
	return result
}

// walk visits node and every descendant depth-first. visit returns
// false to prune the subtree rooted at the node it was called with.
func walk(node *ts.Node, visit func(*ts.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		walk(node.NamedChild(i), visit)
	}
}

func position(node *ts.Node) (line, col, endLine int) {
	start := node.StartPosition()
	end := node.EndPosition()
	return int(start.Row) + 1, int(start.Column), int(end.Row) + 1
}

func nodeText(node *ts.Node, src []byte) string {
	return node.Utf8Text(src)
}

func (e *treeSitterExtractor) extractSymbols(root *ts.Node, src []byte) []ExtractedSymbol {
	var out []ExtractedSymbol
	walk(root, func(n *ts.Node) bool {
		for _, rule := range e.symbolRules {
			if n.Kind() != rule.NodeKind {
				continue
			}
			nameNode := n.ChildByFieldName(rule.NameField)
			if nameNode == nil {
				continue
			}
			name := nodeText(nameNode, src)
			line, col, endLine := position(n)
			exported := e.exportedFn != nil && e.exportedFn(name)
			out = append(out, ExtractedSymbol{
				Name:     name,
				Kind:     rule.Kind,
				Line:     line,
				Column:   col,
				EndLine:  endLine,
				Exported: exported,
			})
		}
		return true
	})
	return out
}

func (e *treeSitterExtractor) extractImports(root *ts.Node, src []byte) []ExtractedImport {
	var out []ExtractedImport
	walk(root, func(n *ts.Node) bool {
		for _, rule := range e.importRules {
			if n.Kind() != rule.NodeKind {
				continue
			}
			line, _, _ := position(n)
			sourceNode := n.ChildByFieldName(rule.SourceField)
			source := ""
			if sourceNode != nil {
				source = trimQuotes(nodeText(sourceNode, src))
			}
			out = append(out, ExtractedImport{
				SourcePath:   source,
				ImportedName: source,
				Line:         line,
			})
		}
		return true
	})
	return out
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
