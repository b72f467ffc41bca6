package main

import (
	"fmt"
	"os"

	"pyjs/pkg/codegen"
	"pyjs/pkg/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/debug_parser '<code>'")
		os.Exit(1)
	}

	input := os.Args[1]
	program, err := parser.ParseSource(input)
	if err != nil {
		fmt.Println("Parser errors:")
		fmt.Printf("  %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("AST:\n%s\n", program.String())

	for _, policy := range []codegen.IndentPolicy{codegen.Flat, codegen.Nested} {
		opts := codegen.DefaultOptions()
		opts.Policy = policy
		js, err := codegen.Generate(program, opts)
		if err != nil {
			fmt.Printf("%s: %s\n", policy, err)
			continue
		}
		fmt.Printf("JavaScript (%s):\n%s\n\n", policy, js)
	}
}
