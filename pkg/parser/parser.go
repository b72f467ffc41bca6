package parser

import (
	"fmt"
	"strconv"
	"strings"

	"pyjs/pkg/ast"
	"pyjs/pkg/lexer"
	"pyjs/pkg/token"
)

const (
	_ int = iota
	LOWEST
	BOOLEAN  // and, or, conditional expressions (rejected)
	NOT      // not X
	COMPARE  // == != < <= > >= in not in is is not
	BITOR    // |
	BITXOR   // ^
	BITAND   // &
	SHIFT    // << >>
	SUM      // + -
	PRODUCT  // * / // %
	PREFIX   // -X +X ~X
	POWER    // **
	CALL     // f(X) a[X]
)

var precedences = map[string]int{
	"and": BOOLEAN,
	"or":  BOOLEAN,
	"if":  BOOLEAN,
	"for": BOOLEAN,
	":=":  BOOLEAN,
	"==":  COMPARE,
	"!=":  COMPARE,
	"<":   COMPARE,
	"<=":  COMPARE,
	">":   COMPARE,
	">=":  COMPARE,
	"in":  COMPARE,
	"is":  COMPARE,
	"|":   BITOR,
	"^":   BITXOR,
	"&":   BITAND,
	"<<":  SHIFT,
	">>":  SHIFT,
	"+":   SUM,
	"-":   SUM,
	"*":   PRODUCT,
	"/":   PRODUCT,
	"//":  PRODUCT,
	"%":   PRODUCT,
	"**":  POWER,
	"(":   CALL,
	"[":   CALL,
	".":   CALL,
}

var augmentedOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true,
	"//=": true, "&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// Statements the grammar deliberately leaves out.
var unsupportedStatements = map[string]string{
	"pass":     "'pass' statement",
	"break":    "'break' statement",
	"continue": "'continue' statement",
	"import":   "'import' statement",
	"from":     "'from' import statement",
	"class":    "class definition",
	"global":   "'global' declaration",
	"nonlocal": "'nonlocal' declaration",
	"try":      "'try' statement",
	"except":   "'except' clause",
	"finally":  "'finally' clause",
	"raise":    "'raise' statement",
	"with":     "'with' statement",
	"assert":   "'assert' statement",
	"del":      "'del' statement",
}

type ParseError struct {
	Line   int
	Column int // 0-based
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column+1, e.Msg)
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens   []token.Token
	position int
	err      *ParseError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[string]prefixParseFn
	infixParseFns  map[string]infixParseFn
}

func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens[:len(tokens):len(tokens)], token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: tokens, position: -1}

	p.prefixParseFns = make(map[string]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseName)
	p.registerPrefix("print", p.parseName)
	p.registerPrefix("True", p.parseName)
	p.registerPrefix("False", p.parseName)
	p.registerPrefix("None", p.parseName)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix("-", p.parseUnaryOp)
	p.registerPrefix("+", p.parseUnaryOp)
	p.registerPrefix("~", p.parseUnaryOp)
	p.registerPrefix("not", p.parseNot)
	p.registerPrefix("(", p.parseGroupedExpression)
	p.registerPrefix("[", p.parseListLiteral)
	p.registerPrefix("{", p.unsupportedPrefix("dictionary or set literal"))
	p.registerPrefix("lambda", p.unsupportedPrefix("lambda expression"))
	p.registerPrefix("yield", p.unsupportedPrefix("yield expression"))
	p.registerPrefix("*", p.unsupportedPrefix("starred expression"))

	p.infixParseFns = make(map[string]infixParseFn)
	for _, op := range []string{"+", "-", "*", "/", "//", "%", "**", "<<", ">>", "&", "|", "^"} {
		p.registerInfix(op, p.parseBinaryOp)
	}
	for _, op := range []string{"==", "!=", "<", "<=", ">", ">=", "in", "not", "is"} {
		p.registerInfix(op, p.parseCompare)
	}
	p.registerInfix("(", p.parseCall)
	p.registerInfix("[", p.parseSubscript)
	p.registerInfix(".", p.unsupportedInfix("attribute access"))
	p.registerInfix("and", p.unsupportedInfix("boolean operator 'and'"))
	p.registerInfix("or", p.unsupportedInfix("boolean operator 'or'"))
	p.registerInfix("if", p.unsupportedInfix("conditional expression"))
	p.registerInfix("for", p.unsupportedInfix("comprehension"))
	p.registerInfix(":=", p.unsupportedInfix("assignment expression"))

	// Sets both curToken and peekToken
	p.nextToken()
	return p
}

// Parse builds the IR for a complete token stream.
func Parse(tokens []token.Token) (*ast.Program, error) {
	p := New(tokens)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

// ParseSource lexes and parses src. Lexing failures are returned unchanged as
// *lexer.LexError.
func ParseSource(src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Err returns the first error encountered, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func (p *Parser) nextToken() {
	if p.position < len(p.tokens)-1 {
		p.position++
	}
	p.curToken = p.tokens[p.position]
	if p.position+1 < len(p.tokens) {
		p.peekToken = p.tokens[p.position+1]
	} else {
		p.peekToken = p.curToken
	}
}

func (p *Parser) peekAhead(n int) token.Token {
	if p.position+n < len(p.tokens) {
		return p.tokens[p.position+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for p.err == nil {
		for p.curTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		if p.curTokenIs(token.EOF) {
			break
		}
		program.Statements = append(program.Statements, p.parseLine()...)
		p.nextToken()
	}

	return program
}

// parseLine parses one compound statement or a ';'-separated run of simple
// statements. It leaves curToken on the statement's final NEWLINE or DEDENT.
func (p *Parser) parseLine() []ast.Statement {
	var stmt ast.Statement
	switch {
	case p.curTokenIs("def"):
		if fn := p.parseFunctionDef(); fn != nil {
			stmt = fn
		}
	case p.curTokenIs("if"):
		if is := p.parseIfStmt(); is != nil {
			stmt = is
		}
	case p.curTokenIs("for"):
		if fs := p.parseForStmt(); fs != nil {
			stmt = fs
		}
	case p.curTokenIs("while"):
		if ws := p.parseWhileStmt(); ws != nil {
			stmt = ws
		}
	case p.curTokenIs("elif"), p.curTokenIs("else"):
		p.errorf(p.curToken, "'%s' without a matching 'if'", p.curToken.Literal)
	case p.curTokenIs(token.INDENT):
		p.errorf(p.curToken, "unexpected indent")
	default:
		return p.parseSimpleStatements()
	}
	if stmt == nil {
		return nil
	}
	return []ast.Statement{stmt}
}

func (p *Parser) parseSimpleStatements() []ast.Statement {
	var stmts []ast.Statement
	for p.err == nil {
		stmt := p.parseSimpleStatement()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)

		if !p.peekTokenIs(";") {
			break
		}
		p.nextToken()
		if p.peekTokenIs(token.NEWLINE) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.NEWLINE) {
		return nil
	}
	return stmts
}

func (p *Parser) parseSimpleStatement() ast.Statement {
	if p.curToken.Type == token.KEYWORD {
		if what, ok := unsupportedStatements[p.curToken.Literal]; ok {
			p.unsupported(p.curToken, what)
			return nil
		}
		switch p.curToken.Literal {
		case "return":
			return p.parseReturn()
		case "def", "if", "for", "while", "elif", "else":
			p.errorf(p.curToken, "'%s' statement must start its own line", p.curToken.Literal)
			return nil
		}
	}

	first := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	switch {
	case p.peekTokenIs("="):
		name, ok := p.assignmentTarget(expr, "assignment")
		if !ok {
			return nil
		}
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		if p.peekTokenIs("=") {
			p.unsupported(p.peekToken, "multiple assignment targets")
			return nil
		}
		return &ast.VariableAssign{Token: first, Name: name, Value: value}

	case p.peekToken.Type == token.SYMBOL && augmentedOps[p.peekToken.Literal]:
		name, ok := p.assignmentTarget(expr, "augmented assignment")
		if !ok {
			return nil
		}
		p.nextToken()
		op := p.curToken.Literal
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		return &ast.AugAssign{Token: first, Target: name, Operator: op, Value: value}

	case p.peekTokenIs(":"):
		p.unsupported(p.peekToken, "annotated assignment")
		return nil

	case p.peekTokenIs(","):
		p.unsupported(p.peekToken, "tuple")
		return nil
	}

	return &ast.ExprStmt{Token: first, Value: expr}
}

func (p *Parser) assignmentTarget(expr ast.Expression, what string) (string, bool) {
	name, ok := expr.(*ast.Name)
	if !ok {
		p.unsupported(p.peekToken, fmt.Sprintf("%s to non-identifier target %s", what, expr.String()))
		return "", false
	}
	return name.ID, true
}

func (p *Parser) parseReturn() ast.Statement {
	stmt := &ast.Return{Token: p.curToken}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(";") {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunctionDef() *ast.FunctionDef {
	stmt := &ast.FunctionDef{Token: p.curToken}

	if !p.expectPeekName() {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek("(") {
		return nil
	}
	stmt.Parameters = p.parseParameters()
	if p.err != nil {
		return nil
	}

	if p.peekTokenIs("->") {
		p.unsupported(p.peekToken, "return annotation")
		return nil
	}
	if !p.expectPeek(":") {
		return nil
	}

	stmt.Body = p.parseSuite()
	if p.err != nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseParameters() []string {
	params := []string{}

	for !p.peekTokenIs(")") {
		if p.peekTokenIs("*") || p.peekTokenIs("**") {
			p.unsupported(p.peekToken, "variadic parameters")
			return nil
		}
		if !p.expectPeekName() {
			return nil
		}
		params = append(params, p.curToken.Literal)

		switch {
		case p.peekTokenIs("="):
			p.unsupported(p.peekToken, "default parameter values")
			return nil
		case p.peekTokenIs(":"):
			p.unsupported(p.peekToken, "parameter annotations")
			return nil
		case p.peekTokenIs(","):
			p.nextToken()
		case !p.peekTokenIs(")"):
			p.peekError(")")
			return nil
		}
	}
	p.nextToken()

	return params
}

// parseSuite parses the body following a ':'. The body is either an indented
// block or simple statements on the same line.
func (p *Parser) parseSuite() []ast.Statement {
	if !p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
		if p.curToken.Type == token.KEYWORD {
			switch p.curToken.Literal {
			case "def", "if", "for", "while":
				p.errorf(p.curToken, "'%s' statement must start its own line", p.curToken.Literal)
				return nil
			}
		}
		return p.parseSimpleStatements()
	}
	p.nextToken()

	if !p.peekTokenIs(token.INDENT) {
		p.errorf(p.peekToken, "expected an indented block")
		return nil
	}
	p.nextToken()
	p.nextToken()

	body := []ast.Statement{}
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) && p.err == nil {
		body = append(body, p.parseLine()...)
		p.nextToken()
	}

	return body
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	stmt := &ast.IfStmt{Token: p.curToken}

	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if stmt.Test == nil || !p.expectPeek(":") {
		return nil
	}
	stmt.Body = p.parseSuite()
	if p.err != nil {
		return nil
	}

	switch {
	case p.peekTokenIs("elif"):
		p.nextToken()
		elif := p.parseIfStmt()
		if elif == nil {
			return nil
		}
		stmt.Orelse = []ast.Statement{elif}
	case p.peekTokenIs("else"):
		p.nextToken()
		if !p.expectPeek(":") {
			return nil
		}
		stmt.Orelse = p.parseSuite()
	}

	if p.err != nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	stmt := &ast.ForStmt{Token: p.curToken}

	if !isName(p.peekToken) || !p.peekAhead(2).Is("in") {
		p.unsupported(p.peekToken, "for-loop target must be a single identifier")
		return nil
	}
	p.nextToken()
	stmt.Target = p.curToken.Literal
	p.nextToken()

	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil || !p.expectPeek(":") {
		return nil
	}
	stmt.Body = p.parseSuite()

	if p.err == nil && p.peekTokenIs("else") {
		p.unsupported(p.peekToken, "'else' clause on a for loop")
	}
	if p.err != nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	stmt := &ast.WhileStmt{Token: p.curToken}

	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if stmt.Test == nil || !p.expectPeek(":") {
		return nil
	}
	stmt.Body = p.parseSuite()

	if p.err == nil && p.peekTokenIs("else") {
		p.unsupported(p.peekToken, "'else' clause on a while loop")
	}
	if p.err != nil {
		return nil
	}
	return stmt
}

// Expressions

func (p *Parser) parseExpression(precedence int) ast.Expression {
	if p.err != nil {
		return nil
	}
	prefix := p.prefixParseFns[tokenKey(p.curToken)]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[tokenKey(p.peekToken)]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

// parseName also canonicalises True, False and None, whether they arrive as
// keywords or as plain identifiers.
func (p *Parser) parseName() ast.Expression {
	switch p.curToken.Literal {
	case "True", "False":
		return &ast.BoolLiteral{Token: p.curToken, Value: p.curToken.Literal == "True"}
	case "None":
		return &ast.NullLiteral{Token: p.curToken}
	}
	return &ast.Name{Token: p.curToken, ID: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	if strings.Contains(p.curToken.Literal, ".") {
		value, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errorf(p.curToken, "could not parse %q as float", p.curToken.Literal)
			return nil
		}
		lit.IsFloat = true
		lit.Float = value
		return lit
	}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	lit.Int = value
	return lit
}

// parseStringLiteral joins adjacent literals, as in "a" "b".
func (p *Parser) parseStringLiteral() ast.Expression {
	lit := &ast.StringLiteral{Token: p.curToken, Value: unquote(p.curToken.Literal)}
	for p.peekTokenIs(token.STRING) {
		p.nextToken()
		lit.Value += unquote(p.curToken.Literal)
	}
	return lit
}

// unquote strips the delimiters of a raw string token and unescapes only
// backslashes and the literal's own quote character.
func unquote(raw string) string {
	delim := raw[:1]
	if len(raw) >= 6 && strings.HasPrefix(raw, strings.Repeat(delim, 3)) {
		delim = raw[:3]
	}
	body := raw[len(delim) : len(raw)-len(delim)]

	var out strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == delim[0]) {
			i++
		}
		out.WriteByte(body[i])
	}
	return out.String()
}

func (p *Parser) parseUnaryOp() ast.Expression {
	expression := &ast.UnaryOp{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Operand = p.parseExpression(PREFIX)
	if expression.Operand == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseNot() ast.Expression {
	expression := &ast.UnaryOp{Token: p.curToken, Operator: "not"}

	p.nextToken()

	expression.Operand = p.parseExpression(NOT)
	if expression.Operand == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	if p.peekTokenIs(")") {
		p.unsupported(p.curToken, "tuple")
		return nil
	}
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if p.peekTokenIs(",") {
		p.unsupported(p.peekToken, "tuple")
		return nil
	}
	if !p.expectPeek(")") {
		return nil
	}

	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseExpressionList("]")
	if list.Elements == nil {
		return nil
	}
	return list
}

// parseExpressionList parses comma-separated expressions up to end, allowing
// a trailing comma. It returns nil on error and an empty slice for "[]".
func (p *Parser) parseExpressionList(end string) []ast.Expression {
	list := []ast.Expression{}

	for !p.peekTokenIs(end) {
		p.nextToken()
		if p.curTokenIs("*") || p.curTokenIs("**") {
			p.unsupported(p.curToken, "starred arguments")
			return nil
		}
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil
		}
		if p.peekTokenIs("=") {
			p.unsupported(p.peekToken, "keyword arguments")
			return nil
		}
		list = append(list, exp)

		if p.peekTokenIs(",") {
			p.nextToken()
		} else if !p.peekTokenIs(end) {
			p.peekError(end)
			return nil
		}
	}
	p.nextToken()

	return list
}

func (p *Parser) parseBinaryOp(left ast.Expression) ast.Expression {
	expression := &ast.BinaryOp{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	if expression.Operator == "**" {
		// right-associative
		precedence--
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseCompare consumes a whole comparison chain such as a < b <= c.
func (p *Parser) parseCompare(left ast.Expression) ast.Expression {
	expression := &ast.Compare{Token: p.curToken, Left: left}

	for {
		op := p.curToken.Literal
		switch {
		case op == "not":
			p.nextToken() // 'in'
			op = "not in"
		case op == "is" && p.peekTokenIs("not"):
			p.nextToken()
			op = "is not"
		}

		p.nextToken()
		right := p.parseExpression(COMPARE)
		if right == nil {
			return nil
		}
		expression.Ops = append(expression.Ops, op)
		expression.Comparators = append(expression.Comparators, right)

		if p.peekPrecedence() != COMPARE {
			return expression
		}
		p.nextToken()
	}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	exp := &ast.Call{Token: p.curToken, Callee: callee}
	exp.Args = p.parseExpressionList(")")
	if exp.Args == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseSubscript(value ast.Expression) ast.Expression {
	expression := &ast.Subscript{Token: p.curToken, Value: value}

	if p.peekTokenIs(":") {
		p.unsupported(p.peekToken, "slice")
		return nil
	}
	p.nextToken()
	expression.Index = p.parseExpression(LOWEST)
	if expression.Index == nil {
		return nil
	}

	switch {
	case p.peekTokenIs(":"):
		p.unsupported(p.peekToken, "slice")
		return nil
	case p.peekTokenIs(","):
		p.unsupported(p.peekToken, "tuple index")
		return nil
	}
	if !p.expectPeek("]") {
		return nil
	}

	return expression
}

func (p *Parser) unsupportedPrefix(what string) prefixParseFn {
	return func() ast.Expression {
		p.unsupported(p.curToken, what)
		return nil
	}
}

func (p *Parser) unsupportedInfix(what string) infixParseFn {
	return func(ast.Expression) ast.Expression {
		p.unsupported(p.curToken, what)
		return nil
	}
}

// Helpers

// tokenKey selects the parse function table entry: operators and keywords by
// their text, everything else by kind.
func tokenKey(t token.Token) string {
	if t.Type == token.SYMBOL || t.Type == token.KEYWORD {
		return t.Literal
	}
	return string(t.Type)
}

func isName(t token.Token) bool {
	return t.Type == token.IDENT || t.Is("print")
}

func (p *Parser) curTokenIs(t string) bool {
	return p.curToken.Is(t) || string(p.curToken.Type) == t
}

func (p *Parser) peekTokenIs(t string) bool {
	return p.peekToken.Is(t) || string(p.peekToken.Type) == t
}

func (p *Parser) expectPeek(t string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) expectPeekName() bool {
	if isName(p.peekToken) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected identifier, got %s", describe(p.peekToken))
	return false
}

func (p *Parser) peekPrecedence() int {
	if p.peekToken.Type != token.SYMBOL && p.peekToken.Type != token.KEYWORD {
		return LOWEST
	}
	if p.peekToken.Literal == "not" {
		// only "not in" continues an expression
		if p.peekAhead(2).Is("in") {
			return COMPARE
		}
		return LOWEST
	}
	if prec, ok := precedences[p.peekToken.Literal]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Literal]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) errorf(at token.Token, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{Line: at.Line, Column: at.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) unsupported(at token.Token, what string) {
	p.errorf(at, "unsupported construct: %s", what)
}

func (p *Parser) peekError(t string) {
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", describeKind(t), describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	switch t.Type {
	case token.NEWLINE, token.EOF:
		p.errorf(t, "unexpected end of line, expected an expression")
	default:
		p.errorf(t, "unexpected %s, expected an expression", describe(t))
	}
}

func describe(t token.Token) string {
	switch t.Type {
	case token.NEWLINE:
		return "end of line"
	case token.EOF:
		return "end of input"
	case token.INDENT, token.DEDENT:
		return string(t.Type)
	}
	return fmt.Sprintf("%s %q", strings.ToLower(string(t.Type)), t.Literal)
}

func describeKind(t string) string {
	switch t {
	case token.NEWLINE:
		return "end of line"
	case token.INDENT, token.DEDENT, token.EOF, token.IDENT:
		return t
	}
	return strconv.Quote(t)
}

func (p *Parser) registerPrefix(key string, fn prefixParseFn) {
	p.prefixParseFns[key] = fn
}

func (p *Parser) registerInfix(key string, fn infixParseFn) {
	p.infixParseFns[key] = fn
}
