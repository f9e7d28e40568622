package analyzer

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// goSymbolQuery captures declaration names and import paths from a Go parse
// tree. Used to replace the regex-derived sets for Go files, where a real
// grammar is cheap and strictly more accurate.
const goSymbolQuery = `
	(function_declaration name: (identifier) @func)
	(method_declaration name: (field_identifier) @func)
	(import_spec path: (interpreted_string_literal) @import)
`

// refineGoAnalysis re-extracts Functions and Imports for a Go file with
// tree-sitter. Any parse or query failure leaves the regex results in place.
func refineGoAnalysis(fa *FileAnalysis) {
	source := []byte(fa.Content)

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return
	}

	query, err := sitter.NewQuery([]byte(goSymbolQuery), golang.GetLanguage())
	if err != nil {
		return
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	var funcs, imports []string
	seenFunc := map[string]bool{}
	seenImport := map[string]bool{}
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			name := c.Node.Content(source)
			switch query.CaptureNameForId(c.Index) {
			case "func":
				if !seenFunc[name] {
					seenFunc[name] = true
					funcs = append(funcs, name)
				}
			case "import":
				name = strings.Trim(name, `"`)
				if !seenImport[name] {
					seenImport[name] = true
					imports = append(imports, name)
				}
			}
		}
	}

	if len(funcs) > 0 || len(imports) > 0 {
		fa.Functions = funcs
		fa.Imports = imports
	}
}
