package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"pyjs/pkg/token"
)

// TabWidth is the number of columns a tab contributes to indentation.
const TabWidth = 4

type LexError struct {
	Line   int
	Column int // 0-based
	Msg    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Column+1, e.Msg)
}

type Lexer struct {
	input     string
	position  int // current position in input (points to current char)
	line      int
	lineStart int // offset of the first byte of the current line

	indentStack []int // Stack of indentation widths
	tokenQueue  []token.Token

	depth       int  // open (), [] and {} pairs; newlines inside are joined
	atLineStart bool // indentation of the next line has not been measured yet
	lineHasCode bool // a token was emitted since the last NEWLINE
	done        bool
}

func New(input string) *Lexer {
	return &Lexer{
		input:       input,
		line:        1,
		indentStack: []int{0},
		atLineStart: true,
	}
}

// Tokenize scans the whole input. The returned slice always ends with EOF and
// every INDENT in it is matched by a later DEDENT.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) NextToken() (token.Token, error) {
	// Queued INDENT/DEDENT/NEWLINE tokens go out first
	if tok, ok := l.dequeue(); ok {
		return tok, nil
	}
	if l.done {
		return l.makeToken(token.EOF, "", l.position), nil
	}

	for {
		if l.atLineStart && l.depth == 0 {
			if err := l.handleIndentation(); err != nil {
				return token.Token{}, err
			}
			if tok, ok := l.dequeue(); ok {
				return tok, nil
			}
		}

		l.skipWhitespace()

		if l.position >= len(l.input) {
			l.finish()
			tok, _ := l.dequeue()
			return tok, nil
		}

		ch := l.input[l.position]
		switch {
		case ch == '#':
			l.skipComment()
		case ch == '\n':
			tok := l.makeToken(token.NEWLINE, "\n", l.position)
			l.advanceLine(l.position + 1)
			if l.depth > 0 {
				continue
			}
			l.atLineStart = true
			if l.lineHasCode {
				l.lineHasCode = false
				return tok, nil
			}
		case ch == '\\' && l.peekNewline(l.position+1) > 0:
			// Explicit line continuation
			l.advanceLine(l.position + 1 + l.peekNewline(l.position+1))
		case isLetter(ch):
			return l.emit(l.readIdentifier()), nil
		case isDigit(ch):
			tok, err := l.readNumber()
			if err != nil {
				return token.Token{}, err
			}
			return l.emit(tok), nil
		case ch == '"' || ch == '\'':
			tok, err := l.readString()
			if err != nil {
				return token.Token{}, err
			}
			return l.emit(tok), nil
		default:
			tok, err := l.readSymbol()
			if err != nil {
				return token.Token{}, err
			}
			return l.emit(tok), nil
		}
	}
}

func (l *Lexer) dequeue() (token.Token, bool) {
	if len(l.tokenQueue) == 0 {
		return token.Token{}, false
	}
	tok := l.tokenQueue[0]
	l.tokenQueue = l.tokenQueue[1:]
	return tok, true
}

func (l *Lexer) emit(tok token.Token) token.Token {
	l.lineHasCode = true
	return tok
}

func (l *Lexer) makeToken(t token.TokenType, literal string, start int) token.Token {
	return token.Token{
		Type:      t,
		Literal:   literal,
		Line:      l.line,
		Column:    start - l.lineStart,
		EndColumn: start - l.lineStart + len(literal),
	}
}

func (l *Lexer) errorf(offset int, format string, args ...any) error {
	return &LexError{Line: l.line, Column: offset - l.lineStart, Msg: fmt.Sprintf(format, args...)}
}

// handleIndentation measures the leading whitespace of the line that starts at
// the current position and queues INDENT/DEDENT tokens for it. Blank and
// comment-only lines leave the stack untouched.
func (l *Lexer) handleIndentation() error {
	l.atLineStart = false

	start := l.position
	width := 0
	sawSpace, sawTab := false, false
measure:
	for ; l.position < len(l.input); l.position++ {
		switch l.input[l.position] {
		case ' ':
			sawSpace = true
			width++
		case '\t':
			sawTab = true
			width += TabWidth
		case '\f':
		default:
			break measure
		}
	}
	if l.position >= len(l.input) || l.input[l.position] == '#' || l.peekNewline(l.position) > 0 {
		return nil
	}
	if sawSpace && sawTab {
		return l.errorf(start, "inconsistent use of tabs and spaces in indentation")
	}

	current := l.indentStack[len(l.indentStack)-1]
	if width > current {
		l.indentStack = append(l.indentStack, width)
		l.tokenQueue = append(l.tokenQueue, token.Token{Type: token.INDENT, Line: l.line, Column: 0, EndColumn: width})
		return nil
	}
	for width < l.indentStack[len(l.indentStack)-1] {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		l.tokenQueue = append(l.tokenQueue, token.Token{Type: token.DEDENT, Line: l.line, Column: 0, EndColumn: width})
	}
	if width != l.indentStack[len(l.indentStack)-1] {
		l.tokenQueue = nil
		return l.errorf(l.position, "unindent does not match any outer indentation level")
	}
	return nil
}

// finish closes the last logical line and every open indentation level.
func (l *Lexer) finish() {
	l.done = true
	if l.lineHasCode {
		l.lineHasCode = false
		l.tokenQueue = append(l.tokenQueue, l.makeToken(token.NEWLINE, "", l.position))
	}
	for len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		l.tokenQueue = append(l.tokenQueue, l.makeToken(token.DEDENT, "", l.position))
	}
	l.tokenQueue = append(l.tokenQueue, l.makeToken(token.EOF, "", l.position))
}

func (l *Lexer) skipWhitespace() {
	for l.position < len(l.input) {
		switch l.input[l.position] {
		case ' ', '\t', '\r', '\f':
			l.position++
		default:
			return
		}
	}
}

func (l *Lexer) skipComment() {
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.position++
	}
}

// peekNewline returns the length of the line break at offset, or 0.
func (l *Lexer) peekNewline(offset int) int {
	if strings.HasPrefix(l.input[offset:], "\r\n") {
		return 2
	}
	if offset < len(l.input) && l.input[offset] == '\n' {
		return 1
	}
	return 0
}

// advanceLine moves to next, which must be the first byte after a newline.
func (l *Lexer) advanceLine(next int) {
	l.position = next
	l.line++
	l.lineStart = next
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.position
	for l.position < len(l.input) && (isLetter(l.input[l.position]) || isDigit(l.input[l.position])) {
		l.position++
	}
	literal := l.input[start:l.position]
	return l.makeToken(token.LookupIdent(literal), literal, start)
}

// readNumber accepts `\d+` and `\d+\.\d+`. Any other digit-led run of word
// characters and dots is malformed.
func (l *Lexer) readNumber() (token.Token, error) {
	start := l.position
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if !isLetter(ch) && !isDigit(ch) && ch != '.' {
			break
		}
		l.position++
	}
	literal := l.input[start:l.position]

	intPart, fracPart, isFloat := strings.Cut(literal, ".")
	if !allDigits(intPart) || (isFloat && !allDigits(fracPart)) {
		return token.Token{}, l.errorf(start, "malformed number %q", literal)
	}
	if !isFloat {
		if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
			return token.Token{}, l.errorf(start, "integer literal %s out of range", literal)
		}
	}
	return l.makeToken(token.NUMBER, literal, start), nil
}

// readString scans a single, double or triple quoted literal. The token keeps
// the raw source text, quotes and escapes included.
func (l *Lexer) readString() (token.Token, error) {
	start := l.position
	startLine, startCol := l.line, l.position-l.lineStart
	quote := l.input[l.position]
	delim := string(quote)
	if strings.HasPrefix(l.input[l.position:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	l.position += len(delim)

	for {
		if l.position >= len(l.input) {
			return token.Token{}, &LexError{Line: startLine, Column: startCol, Msg: "unterminated string literal"}
		}
		ch := l.input[l.position]
		switch {
		case ch == '\\':
			l.position++
			if n := l.peekNewline(l.position); n > 0 {
				l.advanceLine(l.position + n)
			} else if l.position < len(l.input) {
				l.position++
			}
		case ch == '\n':
			if len(delim) == 1 {
				return token.Token{}, &LexError{Line: startLine, Column: startCol, Msg: "unterminated string literal"}
			}
			l.advanceLine(l.position + 1)
		case strings.HasPrefix(l.input[l.position:], delim):
			l.position += len(delim)
			return token.Token{
				Type:      token.STRING,
				Literal:   l.input[start:l.position],
				Line:      startLine,
				Column:    startCol,
				EndColumn: l.position - l.lineStart,
			}, nil
		default:
			l.position++
		}
	}
}

func (l *Lexer) readSymbol() (token.Token, error) {
	start := l.position
	for _, sym := range token.Symbols {
		if !strings.HasPrefix(l.input[l.position:], sym) {
			continue
		}
		l.position += len(sym)
		switch sym {
		case "(", "[", "{":
			l.depth++
		case ")", "]", "}":
			if l.depth > 0 {
				l.depth--
			}
		}
		return l.makeToken(token.SYMBOL, sym, start), nil
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return token.Token{}, l.errorf(start, "unexpected character %q", r)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
