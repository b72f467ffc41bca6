// Package codegen lowers the IR to JavaScript source text.
package codegen

import (
	"fmt"
	"strings"

	"pyjs/pkg/ast"
)

// IndentPolicy controls how nested blocks are indented.
type IndentPolicy int

const (
	// Flat indents every block one unit relative to its opening brace and
	// leaves the continuation lines of nested statements untouched, so depth
	// never accumulates.
	Flat IndentPolicy = iota
	// Nested re-indents every line of a nested block, giving conventional
	// cumulative indentation.
	Nested
)

func (p IndentPolicy) String() string {
	switch p {
	case Flat:
		return "flat"
	case Nested:
		return "nested"
	default:
		return fmt.Sprintf("IndentPolicy(%d)", int(p))
	}
}

func ParsePolicy(s string) (IndentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flat":
		return Flat, nil
	case "nested":
		return Nested, nil
	}
	return Flat, fmt.Errorf("unknown indent policy %q (want flat or nested)", s)
}

type Options struct {
	Policy IndentPolicy
	Indent string // one indentation unit
}

func DefaultOptions() Options {
	return Options{Policy: Flat, Indent: "    "}
}

// GenerationError reports an IR node outside the closed statement and
// expression sets, or one that violates an IR invariant.
type GenerationError struct {
	Msg string
}

func (e *GenerationError) Error() string {
	return "generation error: " + e.Msg
}

func errorf(format string, args ...any) error {
	return &GenerationError{Msg: fmt.Sprintf(format, args...)}
}

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "//": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
}

var compareOps = map[string]string{
	"==":     "===",
	"!=":     "!==",
	"is":     "===",
	"is not": "!==",
	"<":      "<",
	"<=":     "<=",
	">":      ">",
	">=":     ">=",
	"in":     "in",
	"not in": "in",
}

var unaryOps = map[string]string{
	"not": "!",
	"!":   "!",
	"+":   "+",
	"-":   "-",
	"~":   "~",
}

var augmentedOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true,
	"//=": true, "&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Generator is stateless apart from its options; one value may be shared by
// concurrent callers.
type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	if opts.Indent == "" {
		opts.Indent = DefaultOptions().Indent
	}
	return &Generator{opts: opts}
}

// Generate renders program with the given options.
func Generate(program *ast.Program, opts Options) (string, error) {
	return New(opts).Generate(program)
}

func (g *Generator) Generate(program *ast.Program) (string, error) {
	if program == nil {
		return "", errorf("nil program")
	}
	statements := make([]string, 0, len(program.Statements))
	for _, s := range program.Statements {
		code, err := g.Statement(s)
		if err != nil {
			return "", err
		}
		statements = append(statements, code)
	}
	return strings.Join(statements, "\n"), nil
}

func (g *Generator) block(stmts []ast.Statement) (string, error) {
	lines := make([]string, 0, len(stmts))
	for _, s := range stmts {
		code, err := g.Statement(s)
		if err != nil {
			return "", err
		}
		if g.opts.Policy == Nested {
			code = strings.ReplaceAll(code, "\n", "\n"+g.opts.Indent)
		}
		lines = append(lines, g.opts.Indent+code)
	}
	return strings.Join(lines, "\n"), nil
}

// braced renders `header {`, the block body and the closing brace.
func (g *Generator) braced(header string, body []ast.Statement) (string, error) {
	code, err := g.block(body)
	if err != nil {
		return "", err
	}
	return header + " {\n" + code + "\n}", nil
}

func (g *Generator) Statement(stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.VariableAssign:
		value, err := g.Expression(s.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("let %s = %s;", s.Name, value), nil

	case *ast.AugAssign:
		return g.augAssign(s)

	case *ast.FunctionDef:
		return g.braced(fmt.Sprintf("function %s(%s)", s.Name, strings.Join(s.Parameters, ", ")), s.Body)

	case *ast.Return:
		if s.Value == nil {
			return "return;", nil
		}
		value, err := g.Expression(s.Value)
		if err != nil {
			return "", err
		}
		return "return " + value + ";", nil

	case *ast.IfStmt:
		return g.ifStmt(s)

	case *ast.ForStmt:
		return g.forStmt(s)

	case *ast.WhileStmt:
		test, err := g.Expression(s.Test)
		if err != nil {
			return "", err
		}
		return g.braced("while ("+test+")", s.Body)

	case *ast.ExprStmt:
		value, err := g.Expression(s.Value)
		if err != nil {
			return "", err
		}
		return value + ";", nil

	case nil:
		return "", errorf("nil statement")
	}
	return "", errorf("unsupported statement node %T", stmt)
}

func (g *Generator) augAssign(s *ast.AugAssign) (string, error) {
	if !augmentedOps[s.Operator] {
		return "", errorf("unknown augmented assignment operator %q", s.Operator)
	}
	value, err := g.Expression(s.Value)
	if err != nil {
		return "", err
	}
	switch s.Operator {
	case "**=":
		return fmt.Sprintf("%s = Math.pow(%s, %s);", s.Target, s.Target, value), nil
	case "//=":
		return fmt.Sprintf("%s = Math.floor(%s / %s);", s.Target, s.Target, value), nil
	}
	return fmt.Sprintf("%s %s %s;", s.Target, s.Operator, value), nil
}

// ifStmt emits an elif chain as `} else if (...) {` by generating the nested
// conditional directly after the else keyword.
func (g *Generator) ifStmt(s *ast.IfStmt) (string, error) {
	test, err := g.Expression(s.Test)
	if err != nil {
		return "", err
	}
	code, err := g.braced("if ("+test+")", s.Body)
	if err != nil {
		return "", err
	}

	if elif, ok := s.ElseIf(); ok {
		rest, err := g.ifStmt(elif)
		if err != nil {
			return "", err
		}
		return code + " else " + rest, nil
	}
	if len(s.Orelse) == 0 {
		return code, nil
	}
	orelse, err := g.braced(" else", s.Orelse)
	if err != nil {
		return "", err
	}
	return code + orelse, nil
}

// forStmt lowers range() with one to three arguments to a counted loop and
// anything else to for...of.
func (g *Generator) forStmt(s *ast.ForStmt) (string, error) {
	if call, ok := s.Iterable.(*ast.Call); ok {
		if name, ok := call.CalleeName(); ok && name == "range" && len(call.Args) >= 1 && len(call.Args) <= 3 {
			args, err := g.expressions(call.Args)
			if err != nil {
				return "", err
			}
			t := s.Target
			var header string
			switch len(args) {
			case 1:
				header = fmt.Sprintf("for (let %s = 0; %s < %s; %s++)", t, t, args[0], t)
			case 2:
				header = fmt.Sprintf("for (let %s = %s; %s < %s; %s++)", t, args[0], t, args[1], t)
			case 3:
				header = fmt.Sprintf("for (let %s = %s; %s < %s; %s += %s)", t, args[0], t, args[1], t, args[2])
			}
			return g.braced(header, s.Body)
		}
	}

	iterable, err := g.Expression(s.Iterable)
	if err != nil {
		return "", err
	}
	return g.braced(fmt.Sprintf("for (let %s of %s)", s.Target, iterable), s.Body)
}

func (g *Generator) Expression(expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return ast.FormatNumber(e), nil

	case *ast.StringLiteral:
		return `"` + stringEscaper.Replace(e.Value) + `"`, nil

	case *ast.BoolLiteral:
		if e.Value {
			return "true", nil
		}
		return "false", nil

	case *ast.NullLiteral:
		return "null", nil

	case *ast.Name:
		return e.ID, nil

	case *ast.BinaryOp:
		if !binaryOps[e.Operator] {
			return "", errorf("unknown binary operator %q", e.Operator)
		}
		left, err := g.Expression(e.Left)
		if err != nil {
			return "", err
		}
		right, err := g.Expression(e.Right)
		if err != nil {
			return "", err
		}
		switch e.Operator {
		case "**":
			return fmt.Sprintf("Math.pow(%s, %s)", left, right), nil
		case "//":
			return fmt.Sprintf("Math.floor(%s / %s)", left, right), nil
		}
		return fmt.Sprintf("(%s %s %s)", left, e.Operator, right), nil

	case *ast.UnaryOp:
		op, ok := unaryOps[e.Operator]
		if !ok {
			return "", errorf("unknown unary operator %q", e.Operator)
		}
		operand, err := g.Expression(e.Operand)
		if err != nil {
			return "", err
		}
		return op + operand, nil

	case *ast.Subscript:
		value, err := g.Expression(e.Value)
		if err != nil {
			return "", err
		}
		index, err := g.Expression(e.Index)
		if err != nil {
			return "", err
		}
		return value + "[" + index + "]", nil

	case *ast.Call:
		args, err := g.expressions(e.Args)
		if err != nil {
			return "", err
		}
		if name, ok := e.CalleeName(); ok && name == "print" {
			return "console.log(" + strings.Join(args, ", ") + ")", nil
		}
		callee, err := g.Expression(e.Callee)
		if err != nil {
			return "", err
		}
		return callee + "(" + strings.Join(args, ", ") + ")", nil

	case *ast.Compare:
		return g.compare(e)

	case *ast.ListLiteral:
		elements, err := g.expressions(e.Elements)
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(elements, ", ") + "]", nil

	case nil:
		return "", errorf("nil expression")
	}
	return "", errorf("unsupported expression node %T", expr)
}

// compare renders each adjacent pair on its own and joins chains with &&.
func (g *Generator) compare(e *ast.Compare) (string, error) {
	if len(e.Ops) == 0 || len(e.Ops) != len(e.Comparators) {
		return "", errorf("comparison with %d operators and %d comparators", len(e.Ops), len(e.Comparators))
	}

	parts := make([]string, 0, len(e.Ops))
	current := e.Left
	for i, op := range e.Ops {
		jsOp, ok := compareOps[op]
		if !ok {
			return "", errorf("unknown comparison operator %q", op)
		}
		left, err := g.Expression(current)
		if err != nil {
			return "", err
		}
		right, err := g.Expression(e.Comparators[i])
		if err != nil {
			return "", err
		}
		if op == "not in" {
			parts = append(parts, fmt.Sprintf("!(%s in %s)", left, right))
		} else {
			parts = append(parts, fmt.Sprintf("(%s %s %s)", left, jsOp, right))
		}
		current = e.Comparators[i]
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " && ") + ")", nil
}

func (g *Generator) expressions(exprs []ast.Expression) ([]string, error) {
	out := make([]string, 0, len(exprs))
	for _, e := range exprs {
		code, err := g.Expression(e)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}
