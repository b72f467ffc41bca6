// Package transpiler runs the lex, parse and generate stages end to end.
package transpiler

import (
	"errors"
	"fmt"

	"pyjs/pkg/ast"
	"pyjs/pkg/codegen"
	"pyjs/pkg/lexer"
	"pyjs/pkg/logger"
	"pyjs/pkg/parser"
	"pyjs/pkg/token"
)

type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageGenerate Stage = "generate"
)

// Error is the single terminal failure of a transpilation. Line and Column
// are 1-based and zero when the stage has no source position.
type Error struct {
	Stage  Stage
	Msg    string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at %d:%d: %s", e.Stage, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s error: %s", e.Stage, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// wrapError tags a stage failure with its position.
func wrapError(stage Stage, err error) *Error {
	var (
		lexErr   *lexer.LexError
		parseErr *parser.ParseError
		genErr   *codegen.GenerationError
	)
	switch {
	case errors.As(err, &lexErr):
		return &Error{Stage: StageLex, Msg: lexErr.Msg, Line: lexErr.Line, Column: lexErr.Column + 1, Err: err}
	case errors.As(err, &parseErr):
		return &Error{Stage: StageParse, Msg: parseErr.Msg, Line: parseErr.Line, Column: parseErr.Column + 1, Err: err}
	case errors.As(err, &genErr):
		return &Error{Stage: StageGenerate, Msg: genErr.Msg, Err: err}
	}
	return &Error{Stage: stage, Msg: err.Error(), Err: err}
}

// Transpiler holds generation options. It carries no per-run state and is
// safe for concurrent use.
type Transpiler struct {
	gen  *codegen.Generator
	opts codegen.Options
}

func New(opts codegen.Options) *Transpiler {
	if opts.Indent == "" {
		opts.Indent = codegen.DefaultOptions().Indent
	}
	return &Transpiler{gen: codegen.New(opts), opts: opts}
}

func (t *Transpiler) Options() codegen.Options { return t.opts }

// Transpile converts src with the default options.
func Transpile(src string) (string, error) {
	return New(codegen.DefaultOptions()).Transpile("<input>", src)
}

// Transpile converts one program. On failure the output is empty and the
// error is a *Error.
func (t *Transpiler) Transpile(name, src string) (string, error) {
	tokens, err := t.Tokens(name, src)
	if err != nil {
		return "", err
	}

	logger.LogPhase(string(StageParse), name)
	program, err := parser.Parse(tokens)
	if err != nil {
		return "", t.fail(StageParse, name, err)
	}
	logger.LogParsing(name, len(program.Statements))

	return t.Generate(name, program)
}

// Tokens runs the lexer stage only.
func (t *Transpiler) Tokens(name, src string) ([]token.Token, error) {
	logger.LogPhase(string(StageLex), name)
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, t.fail(StageLex, name, err)
	}
	logger.LogLexing(name, len(tokens))
	return tokens, nil
}

// Parse runs the lexer and parser stages.
func (t *Transpiler) Parse(name, src string) (*ast.Program, error) {
	tokens, err := t.Tokens(name, src)
	if err != nil {
		return nil, err
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		return nil, t.fail(StageParse, name, err)
	}
	return program, nil
}

// Generate runs the generator stage on an already built program.
func (t *Transpiler) Generate(name string, program *ast.Program) (string, error) {
	logger.LogPhase(string(StageGenerate), name)
	out, err := t.gen.Generate(program)
	if err != nil {
		return "", t.fail(StageGenerate, name, err)
	}
	logger.LogCodeGen(name, len(out))
	return out, nil
}

func (t *Transpiler) fail(stage Stage, name string, err error) error {
	e := wrapError(stage, err)
	logger.Debug("Transpilation failed", "file", name, "stage", e.Stage, "line", e.Line, "error", e.Msg)
	return e
}
