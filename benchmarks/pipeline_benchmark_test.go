package benchmarks

import (
	"strings"
	"testing"

	"pyjs/pkg/codegen"
	"pyjs/pkg/lexer"
	"pyjs/pkg/parser"
	"pyjs/pkg/token"
	"pyjs/pkg/transpiler"
)

var (
	tokensResult []token.Token
	result       string
)

const program = `
def fib(n):
    if n < 2:
        return n
    return fib(n - 1) + fib(n - 2)

def classify(x):
    if x < 0:
        return "negative"
    elif x == 0:
        return "zero"
    elif 0 < x < 10:
        return "small"
    else:
        return "large"

total = 0
for i in range(1, 100, 2):
    total += i ** 2
    total //= 3
values = [1, 2, 3, 4.5, "five", None, True]
for v in values:
    if v not in [None, False]:
        print(v, classify(total))
while total > 1:
    total = total // 2
`

func largeProgram(copies int) string {
	return strings.Repeat(program, copies)
}

func BenchmarkLexer(b *testing.B) {
	input := largeProgram(20)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		toks, err := lexer.Tokenize(input)
		if err != nil {
			b.Fatal(err)
		}
		tokensResult = toks
	}
}

func BenchmarkParser(b *testing.B) {
	toks, err := lexer.Tokenize(largeProgram(20))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse(toks); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodegenFlat(b *testing.B) {
	benchmarkCodegen(b, codegen.Flat)
}

func BenchmarkCodegenNested(b *testing.B) {
	benchmarkCodegen(b, codegen.Nested)
}

func benchmarkCodegen(b *testing.B, policy codegen.IndentPolicy) {
	prog, err := parser.ParseSource(largeProgram(20))
	if err != nil {
		b.Fatal(err)
	}
	opts := codegen.DefaultOptions()
	opts.Policy = policy
	gen := codegen.New(opts)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := gen.Generate(prog)
		if err != nil {
			b.Fatal(err)
		}
		result = out
	}
}

func BenchmarkTranspile(b *testing.B) {
	input := largeProgram(20)
	t := transpiler.New(codegen.DefaultOptions())
	b.SetBytes(int64(len(input)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := t.Transpile("bench.py", input)
		if err != nil {
			b.Fatal(err)
		}
		result = out
	}
}

// Concurrent callers share one Transpiler
func BenchmarkTranspileParallel(b *testing.B) {
	t := transpiler.New(codegen.DefaultOptions())
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := t.Transpile("bench.py", program); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
