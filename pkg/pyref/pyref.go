// Package pyref cross-checks programs against the reference grammar using the
// gpython parser. It answers "is this valid source at all" and "did we see
// the same program shape", independent of the subset this module accepts.
package pyref

import (
	"fmt"
	"strings"

	pyast "github.com/go-python/gpython/ast"
	pyparser "github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"

	"pyjs/pkg/ast"
)

// Summary is the program shape both parsers must agree on.
type Summary struct {
	Statements int      // top-level statements
	Functions  []string // function names in definition order, nested ones included
}

// Check parses src with the reference parser.
func Check(src string) (*Summary, error) {
	mod, err := pyparser.Parse(strings.NewReader(src), "<string>", py.ExecMode)
	if err != nil {
		return nil, fmt.Errorf("reference parse error: %w", err)
	}
	module, ok := mod.(*pyast.Module)
	if !ok {
		return nil, fmt.Errorf("expected *ast.Module, got %T", mod)
	}

	s := &Summary{Statements: len(module.Body)}
	collectFunctions(module.Body, &s.Functions)
	return s, nil
}

func collectFunctions(body []pyast.Stmt, names *[]string) {
	for _, stmt := range body {
		switch st := stmt.(type) {
		case *pyast.FunctionDef:
			*names = append(*names, string(st.Name))
			collectFunctions(st.Body, names)
		case *pyast.If:
			collectFunctions(st.Body, names)
			collectFunctions(st.Orelse, names)
		case *pyast.For:
			collectFunctions(st.Body, names)
			collectFunctions(st.Orelse, names)
		case *pyast.While:
			collectFunctions(st.Body, names)
			collectFunctions(st.Orelse, names)
		}
	}
}

// Summarize computes the same shape from our IR.
func Summarize(program *ast.Program) *Summary {
	s := &Summary{Statements: len(program.Statements)}
	ast.Inspect(program, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FunctionDef); ok {
			s.Functions = append(s.Functions, fn.Name)
		}
		return true
	})
	return s
}

// Compare reports the first disagreement between the reference parse of src
// and program, or nil.
func Compare(src string, program *ast.Program) error {
	ref, err := Check(src)
	if err != nil {
		return err
	}
	ours := Summarize(program)
	if ref.Statements != ours.Statements {
		return fmt.Errorf("top-level statement count differs: reference=%d ours=%d", ref.Statements, ours.Statements)
	}
	if strings.Join(ref.Functions, ",") != strings.Join(ours.Functions, ",") {
		return fmt.Errorf("function definitions differ: reference=%v ours=%v", ref.Functions, ours.Functions)
	}
	return nil
}
