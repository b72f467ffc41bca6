package ast

import (
	"bytes"
	"strconv"
	"strings"

	"pyjs/pkg/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Statements

type VariableAssign struct {
	Token token.Token // the identifier token
	Name  string
	Value Expression
}

func (va *VariableAssign) statementNode()       {}
func (va *VariableAssign) TokenLiteral() string { return va.Token.Literal }
func (va *VariableAssign) String() string {
	return va.Name + " = " + va.Value.String()
}

type AugAssign struct {
	Token    token.Token // the identifier token
	Target   string
	Operator string // e.g. "+=", "**="
	Value    Expression
}

func (aa *AugAssign) statementNode()       {}
func (aa *AugAssign) TokenLiteral() string { return aa.Token.Literal }
func (aa *AugAssign) String() string {
	return aa.Target + " " + aa.Operator + " " + aa.Value.String()
}

type FunctionDef struct {
	Token      token.Token // 'def'
	Name       string
	Parameters []string
	Body       []Statement
}

func (fd *FunctionDef) statementNode()       {}
func (fd *FunctionDef) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDef) String() string {
	var out bytes.Buffer
	out.WriteString("def ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(fd.Parameters, ", "))
	out.WriteString("):")
	out.WriteString(blockString(fd.Body))
	return out.String()
}

type Return struct {
	Token token.Token // 'return'
	Value Expression  // nil for a bare return
}

func (r *Return) statementNode()       {}
func (r *Return) TokenLiteral() string { return r.Token.Literal }
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// IfStmt is a two-way conditional. An elif chain is folded into Orelse as a
// single nested IfStmt; see ElseIf.
type IfStmt struct {
	Token  token.Token // 'if' or 'elif'
	Test   Expression
	Body   []Statement
	Orelse []Statement
}

func (is *IfStmt) statementNode()       {}
func (is *IfStmt) TokenLiteral() string { return is.Token.Literal }
func (is *IfStmt) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(is.Test.String())
	out.WriteString(":")
	out.WriteString(blockString(is.Body))
	if elif, ok := is.ElseIf(); ok {
		out.WriteString("\nel")
		out.WriteString(elif.String())
	} else if len(is.Orelse) > 0 {
		out.WriteString("\nelse:")
		out.WriteString(blockString(is.Orelse))
	}
	return out.String()
}

// ElseIf returns the nested conditional when Orelse holds exactly one IfStmt.
func (is *IfStmt) ElseIf() (*IfStmt, bool) {
	if len(is.Orelse) != 1 {
		return nil, false
	}
	elif, ok := is.Orelse[0].(*IfStmt)
	return elif, ok
}

type ForStmt struct {
	Token    token.Token // 'for'
	Target   string
	Iterable Expression
	Body     []Statement
}

func (fs *ForStmt) statementNode()       {}
func (fs *ForStmt) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStmt) String() string {
	var out bytes.Buffer
	out.WriteString("for ")
	out.WriteString(fs.Target)
	out.WriteString(" in ")
	out.WriteString(fs.Iterable.String())
	out.WriteString(":")
	out.WriteString(blockString(fs.Body))
	return out.String()
}

type WhileStmt struct {
	Token token.Token // 'while'
	Test  Expression
	Body  []Statement
}

func (ws *WhileStmt) statementNode()       {}
func (ws *WhileStmt) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStmt) String() string {
	var out bytes.Buffer
	out.WriteString("while ")
	out.WriteString(ws.Test.String())
	out.WriteString(":")
	out.WriteString(blockString(ws.Body))
	return out.String()
}

type ExprStmt struct {
	Token token.Token // the first token of the expression
	Value Expression
}

func (es *ExprStmt) statementNode()       {}
func (es *ExprStmt) TokenLiteral() string { return es.Token.Literal }
func (es *ExprStmt) String() string {
	if es.Value != nil {
		return es.Value.String()
	}
	return ""
}

func blockString(stmts []Statement) string {
	var out bytes.Buffer
	for _, s := range stmts {
		out.WriteString("\n")
		out.WriteString("\t" + strings.ReplaceAll(s.String(), "\n", "\n\t"))
	}
	return out.String()
}

// Expressions

type Name struct {
	Token token.Token
	ID    string
}

func (n *Name) expressionNode()      {}
func (n *Name) TokenLiteral() string { return n.Token.Literal }
func (n *Name) String() string       { return n.ID }

// NumberLiteral holds either an integer or a floating-point value.
type NumberLiteral struct {
	Token   token.Token
	IsFloat bool
	Int     int64
	Float   float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return FormatNumber(nl) }

// FormatNumber renders the value the way the source language prints it:
// integers in decimal, floats in shortest form with a trailing ".0" when
// integral and exponent notation outside [1e-4, 1e16).
func FormatNumber(nl *NumberLiteral) string {
	if !nl.IsFloat {
		return strconv.FormatInt(nl.Int, 10)
	}
	f := nl.Float
	abs := f
	if abs < 0 {
		abs = -abs
	}
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (b *BoolLiteral) expressionNode()      {}
func (b *BoolLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BoolLiteral) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}

type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NullLiteral) String() string       { return "None" }

type BinaryOp struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (bo *BinaryOp) expressionNode()      {}
func (bo *BinaryOp) TokenLiteral() string { return bo.Token.Literal }
func (bo *BinaryOp) String() string {
	return "(" + bo.Left.String() + " " + bo.Operator + " " + bo.Right.String() + ")"
}

type UnaryOp struct {
	Token    token.Token // The prefix token, e.g. not or -
	Operator string      // "not", "+", "-" or "~"
	Operand  Expression
}

func (uo *UnaryOp) expressionNode()      {}
func (uo *UnaryOp) TokenLiteral() string { return uo.Token.Literal }
func (uo *UnaryOp) String() string {
	if uo.Operator == "not" {
		return "(not " + uo.Operand.String() + ")"
	}
	return "(" + uo.Operator + uo.Operand.String() + ")"
}

type Subscript struct {
	Token token.Token // '['
	Value Expression
	Index Expression
}

func (s *Subscript) expressionNode()      {}
func (s *Subscript) TokenLiteral() string { return s.Token.Literal }
func (s *Subscript) String() string {
	return s.Value.String() + "[" + s.Index.String() + "]"
}

type Call struct {
	Token  token.Token // The '(' token
	Callee Expression
	Args   []Expression
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Token.Literal }
func (c *Call) String() string {
	return c.Callee.String() + "(" + joinExpressions(c.Args) + ")"
}

// CalleeName returns the callee identifier when the callee is a bare name.
func (c *Call) CalleeName() (string, bool) {
	n, ok := c.Callee.(*Name)
	if !ok {
		return "", false
	}
	return n.ID, true
}

// Compare is a comparison chain: Left Ops[0] Comparators[0] Ops[1] ...
// Ops hold the source operators, including the two-word "is not" and "not in".
type Compare struct {
	Token       token.Token // the first operator token
	Left        Expression
	Ops         []string
	Comparators []Expression
}

func (c *Compare) expressionNode()      {}
func (c *Compare) TokenLiteral() string { return c.Token.Literal }
func (c *Compare) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(c.Left.String())
	for i, op := range c.Ops {
		out.WriteString(" " + op + " ")
		if i < len(c.Comparators) {
			out.WriteString(c.Comparators[i].String())
		}
	}
	out.WriteString(")")
	return out.String()
}

type ListLiteral struct {
	Token    token.Token // '['
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	return "[" + joinExpressions(ll.Elements) + "]"
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
