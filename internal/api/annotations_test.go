package api

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"
)

func TestHandlersCarryRouteAnnotations(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "handlers.go", nil, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || !fn.Name.IsExported() {
			continue
		}
		if fn.Doc == nil || !strings.Contains(fn.Doc.Text(), "@Router") {
			t.Errorf("handler %s has no @Router annotation", fn.Name.Name)
		}
	}
}
