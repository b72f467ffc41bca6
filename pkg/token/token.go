package token

import "fmt"

type TokenType string

const (
	// Special
	EOF     = "EOF"
	INDENT  = "INDENT"
	DEDENT  = "DEDENT"
	NEWLINE = "NEWLINE"

	// Identifiers & Literals
	KEYWORD = "KEYWORD"
	IDENT   = "IDENT"
	NUMBER  = "NUMBER"
	STRING  = "STRING"

	// Operators & delimiters
	SYMBOL = "SYMBOL"
)

type Token struct {
	Type      TokenType
	Literal   string
	Line      int
	Column    int // 0-based start offset within the line
	EndColumn int // exclusive
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %d:%d-%d)", t.Type, t.Literal, t.Line, t.Column, t.EndColumn)
}

// Is reports whether t is a KEYWORD or SYMBOL token with the given text.
func (t Token) Is(literal string) bool {
	return (t.Type == KEYWORD || t.Type == SYMBOL) && t.Literal == literal
}

var keywords = map[string]bool{
	"def":      true,
	"for":      true,
	"if":       true,
	"else":     true,
	"elif":     true,
	"return":   true,
	"print":    true,
	"in":       true,
	"while":    true,
	"import":   true,
	"from":     true,
	"as":       true,
	"break":    true,
	"continue": true,
	"class":    true,
	"pass":     true,
	"and":      true,
	"or":       true,
	"not":      true,
	"True":     true,
	"False":    true,
	"None":     true,
	"global":   true,
	"nonlocal": true,
	"lambda":   true,
	"try":      true,
	"except":   true,
	"finally":  true,
	"raise":    true,
	"with":     true,
	"yield":    true,
	"assert":   true,
	"del":      true,
	"is":       true,
}

func LookupIdent(ident string) TokenType {
	if keywords[ident] {
		return KEYWORD
	}
	return IDENT
}

// Symbols lists every operator and delimiter, multi-character forms first so
// a scanner trying them in order always takes the longest match.
var Symbols = []string{
	"**=", "//=", "<<=", ">>=",
	"**", "//", "<<", ">>", "==", "!=", "<=", ">=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"(", ")", "[", "]", "{", "}", ",", ":", ";", "=",
	"+", "-", "*", "/", "%", "<", ">", "|", "&", "^", "~", ".",
}
