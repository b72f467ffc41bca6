package codegen

import (
	"errors"
	"strings"
	"testing"

	"pyjs/pkg/ast"
	"pyjs/pkg/parser"
)

func generate(t *testing.T, input string, opts Options) string {
	t.Helper()
	program, err := parser.ParseSource(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	out, err := Generate(program, opts)
	if err != nil {
		t.Fatalf("generate %q: %v", input, err)
	}
	return out
}

func TestStatementLowering(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = 5", "let x = 5;"},
		{"x += 1", "x += 1;"},
		{"x <<= y", "x <<= y;"},
		{"x **= 2", "x = Math.pow(x, 2);"},
		{"x //= 2", "x = Math.floor(x / 2);"},
		{"print(1, 'a')", `console.log(1, "a");`},
		{"print()", "console.log();"},
		{"f(x)", "f(x);"},
		{"return", "return;"},
		{"return x", "return x;"},
		{"while n > 0: n -= 1", "while ((n > 0)) {\n    n -= 1;\n}"},
		{"def f(a, b): return a", "function f(a, b) {\n    return a;\n}"},
		{"def main(): print(1)", "function main() {\n    console.log(1);\n}"},
	}

	for i, tt := range tests {
		got := generate(t, tt.input, DefaultOptions())
		if got != tt.expected {
			t.Errorf("tests[%d] - %q wrong.\nexpected=%q\ngot=     %q", i, tt.input, tt.expected, got)
		}
	}
}

func TestExpressionLowering(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a ** b", "Math.pow(a, b)"},
		{"a // b", "Math.floor(a / b)"},
		{"a + b * c", "(a + (b * c))"},
		{"a % b - c", "((a % b) - c)"},
		{"a & b | c ^ d", "((a & b) | (c ^ d))"},
		{"a << 2", "(a << 2)"},
		{"-2 ** 2", "-Math.pow(2, 2)"},
		{"not a", "!a"},
		{"not a == b", "!(a === b)"},
		{"-a", "-a"},
		{"~a", "~a"},
		{"a == b", "(a === b)"},
		{"a != b", "(a !== b)"},
		{"a is None", "(a === null)"},
		{"a is not None", "(a !== null)"},
		{"a <= b", "(a <= b)"},
		{"a in b", "(a in b)"},
		{"a not in b", "!(a in b)"},
		{"a < b < c", "((a < b) && (b < c))"},
		{"a < b == c >= d", "((a < b) && (b === c) && (c >= d))"},
		{"[1, 2.0, True, False, None]", "[1, 2.0, true, false, null]"},
		{"[]", "[]"},
		{`"say \"hi\""`, `"say \"hi\""`},
		{`'it\'s'`, `"it's"`},
		{`"back\\slash"`, `"back\\slash"`},
		{"xs[i + 1]", "xs[(i + 1)]"},
		{"f(g(x), [y])", "f(g(x), [y])"},
		{"len(xs)", "len(xs)"},
		{"0.5", "0.5"},
	}

	for i, tt := range tests {
		got := generate(t, tt.input, DefaultOptions())
		want := tt.expected + ";"
		if got != want {
			t.Errorf("tests[%d] - %q wrong.\nexpected=%q\ngot=     %q", i, tt.input, want, got)
		}
	}
}

func TestRangeLowering(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"for i in range(5): print(i)",
			"for (let i = 0; i < 5; i++) {\n    console.log(i);\n}"},
		{"for i in range(1, n): print(i)",
			"for (let i = 1; i < n; i++) {\n    console.log(i);\n}"},
		{"for i in range(0, 10, 2): print(i)",
			"for (let i = 0; i < 10; i += 2) {\n    console.log(i);\n}"},
		{"for v in values: print(v)",
			"for (let v of values) {\n    console.log(v);\n}"},
		{"for v in range(): print(v)",
			"for (let v of range()) {\n    console.log(v);\n}"},
		{"for v in range(1, 2, 3, 4): print(v)",
			"for (let v of range(1, 2, 3, 4)) {\n    console.log(v);\n}"},
		{"for c in [1, 2]: print(c)",
			"for (let c of [1, 2]) {\n    console.log(c);\n}"},
	}

	for i, tt := range tests {
		got := generate(t, tt.input, DefaultOptions())
		if got != tt.expected {
			t.Errorf("tests[%d] - %q wrong.\nexpected=%q\ngot=     %q", i, tt.input, tt.expected, got)
		}
	}
}

func TestElifChain(t *testing.T) {
	input := `
if a:
    x = 1
elif b:
    x = 2
else:
    x = 3
`
	expected := "if (a) {\n    let x = 1;\n} else if (b) {\n    let x = 2;\n} else {\n    let x = 3;\n}"

	if got := generate(t, input, DefaultOptions()); got != expected {
		t.Fatalf("elif chain wrong.\nexpected=%q\ngot=     %q", expected, got)
	}
}

func TestIfWithoutElse(t *testing.T) {
	expected := "if ((x > 0)) {\n    print_it(x);\n}"
	if got := generate(t, "if x > 0:\n    print_it(x)\n", DefaultOptions()); got != expected {
		t.Fatalf("expected=%q\ngot=     %q", expected, got)
	}
}

const nestedInput = `
def f(n):
    for i in range(n):
        if i > 1:
            print(i)
`

func TestIndentPolicies(t *testing.T) {
	tests := []struct {
		policy   IndentPolicy
		expected string
	}{
		{Flat, "function f(n) {\n" +
			"    for (let i = 0; i < n; i++) {\n" +
			"    if ((i > 1)) {\n" +
			"    console.log(i);\n" +
			"}\n" +
			"}\n" +
			"}"},
		{Nested, "function f(n) {\n" +
			"    for (let i = 0; i < n; i++) {\n" +
			"        if ((i > 1)) {\n" +
			"            console.log(i);\n" +
			"        }\n" +
			"    }\n" +
			"}"},
	}

	for _, tt := range tests {
		opts := DefaultOptions()
		opts.Policy = tt.policy
		got := generate(t, nestedInput, opts)
		if got != tt.expected {
			t.Errorf("%s policy wrong.\nexpected=%q\ngot=     %q", tt.policy, tt.expected, got)
		}
	}
}

func TestCustomIndentUnit(t *testing.T) {
	got := generate(t, "while x: x -= 1", Options{Policy: Nested, Indent: "\t"})
	if got != "while (x) {\n\tx -= 1;\n}" {
		t.Fatalf("wrong output: %q", got)
	}

	// An empty unit falls back to four spaces
	got = generate(t, "while x: x -= 1", Options{Policy: Flat})
	if got != "while (x) {\n    x -= 1;\n}" {
		t.Fatalf("wrong output: %q", got)
	}
}

func TestStatementsJoinedByNewline(t *testing.T) {
	got := generate(t, "x = 1\ny = 2\nprint(x + y)\n", DefaultOptions())
	expected := "let x = 1;\nlet y = 2;\nconsole.log((x + y));"
	if got != expected {
		t.Fatalf("expected=%q\ngot=     %q", expected, got)
	}
}

func TestEmptyProgram(t *testing.T) {
	got, err := Generate(&ast.Program{}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestDeterministicOutput(t *testing.T) {
	program, err := parser.ParseSource(nestedInput)
	if err != nil {
		t.Fatal(err)
	}
	gen := New(DefaultOptions())
	first, err := gen.Generate(program)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := gen.Generate(program)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("run %d produced different output", i)
		}
	}
}

func TestGenerationErrors(t *testing.T) {
	name := &ast.Name{ID: "x"}

	tests := []struct {
		name        string
		program     *ast.Program
		expectedMsg string
	}{
		{"nil program", nil, "nil program"},
		{"nil statement", &ast.Program{Statements: []ast.Statement{nil}}, "nil statement"},
		{"nil value", &ast.Program{Statements: []ast.Statement{
			&ast.VariableAssign{Name: "x"},
		}}, "nil expression"},
		{"unknown binary operator", &ast.Program{Statements: []ast.Statement{
			&ast.ExprStmt{Value: &ast.BinaryOp{Left: name, Operator: "@", Right: name}},
		}}, `unknown binary operator "@"`},
		{"unknown unary operator", &ast.Program{Statements: []ast.Statement{
			&ast.ExprStmt{Value: &ast.UnaryOp{Operator: "++", Operand: name}},
		}}, `unknown unary operator "++"`},
		{"unknown augmented operator", &ast.Program{Statements: []ast.Statement{
			&ast.AugAssign{Target: "x", Operator: "@=", Value: name},
		}}, `unknown augmented assignment operator "@="`},
		{"unknown comparison", &ast.Program{Statements: []ast.Statement{
			&ast.ExprStmt{Value: &ast.Compare{Left: name, Ops: []string{"<>"}, Comparators: []ast.Expression{name}}},
		}}, `unknown comparison operator "<>"`},
		{"mismatched comparison", &ast.Program{Statements: []ast.Statement{
			&ast.ExprStmt{Value: &ast.Compare{Left: name, Ops: []string{"<", "<"}, Comparators: []ast.Expression{name}}},
		}}, "comparison with 2 operators and 1 comparators"},
		{"empty comparison", &ast.Program{Statements: []ast.Statement{
			&ast.ExprStmt{Value: &ast.Compare{Left: name}},
		}}, "comparison with 0 operators"},
		{"error inside nested block", &ast.Program{Statements: []ast.Statement{
			&ast.FunctionDef{Name: "f", Body: []ast.Statement{
				&ast.WhileStmt{Test: name, Body: []ast.Statement{nil}},
			}},
		}}, "nil statement"},
	}

	for _, tt := range tests {
		out, err := Generate(tt.program, DefaultOptions())
		if err == nil {
			t.Fatalf("%s: expected error, got %q", tt.name, out)
		}
		if out != "" {
			t.Errorf("%s: output must be empty on error, got %q", tt.name, out)
		}
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			t.Fatalf("%s: error is not *GenerationError. got=%T", tt.name, err)
		}
		if !strings.Contains(genErr.Msg, tt.expectedMsg) {
			t.Errorf("%s: expected message containing %q, got %q", tt.name, tt.expectedMsg, genErr.Msg)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input    string
		expected IndentPolicy
		wantErr  bool
	}{
		{"", Flat, false},
		{"flat", Flat, false},
		{"Nested", Nested, false},
		{" nested ", Nested, false},
		{"deep", Flat, true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParsePolicy(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	if Nested.String() != "nested" || Flat.String() != "flat" {
		t.Errorf("unexpected policy names: %s, %s", Flat, Nested)
	}
}
