package main

import (
	"fmt"
	"os"

	"pyjs/pkg/lexer"
	"pyjs/pkg/token"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/debug_tokens '<code>'")
		os.Exit(1)
	}

	input := os.Args[1]
	l := lexer.New(input)

	fmt.Printf("Input: %q\n\n", input)
	fmt.Println("Tokens:")
	fmt.Println("-------")

	depth := 0
	for {
		tok, err := l.NextToken()
		if err != nil {
			fmt.Printf("\n%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-10s %-20s (line %d, col %d-%d, depth %d)\n",
			tok.Type, fmt.Sprintf("'%s'", tok.Literal), tok.Line, tok.Column, tok.EndColumn, depth)

		switch tok.Type {
		case token.INDENT:
			depth++
		case token.DEDENT:
			depth--
		}
		if tok.Type == token.EOF {
			break
		}
	}
}
