package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pyjs/pkg/codegen"
	"pyjs/pkg/config"
	"pyjs/pkg/logger"
	"pyjs/pkg/output"
	"pyjs/pkg/pyref"
	"pyjs/pkg/server"
	"pyjs/pkg/transpiler"
	"pyjs/pkg/version"
)

var cfg config.Config

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	command := os.Args[1]
	args := os.Args[2:]

	// Handle flags
	switch command {
	case "--version", "-v", "version":
		printVersion()
		return
	case "--help", "-h", "help":
		printHelp()
		return
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	// A bare .py argument is shorthand for 'transpile'
	if strings.HasSuffix(command, ".py") {
		transpileCmd(os.Args[1:])
		return
	}

	switch command {
	case "transpile":
		transpileCmd(args)
	case "batch":
		batchCmd(args)
	case "eval":
		if len(args) < 1 {
			fmt.Println("Usage: pyjs eval '<code>'")
			os.Exit(1)
		}
		evalCode(args[0])
	case "repl":
		logger.Discard()
		startREPL(transpiler.New(cfg.CodegenOptions()))
	case "tokens":
		requireFile("tokens", args)
		printTokens(args[0])
	case "ast":
		requireFile("ast", args)
		printProgramAST(args[0])
	case "inspect":
		requireFile("inspect", args)
		inspectFile(args[0])
	case "check":
		requireFile("check", args)
		checkFile(args[0])
	case "serve":
		serveCmd(args)
	case "token":
		tokenCmd(args)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("pyjs: Python subset to JavaScript transpiler v" + version.Version)
	fmt.Println("\nUsage:")
	fmt.Println("  pyjs <file.py>           Transpile a file into the output directory")
	fmt.Println("  pyjs repl                Start interactive REPL")
	fmt.Println("  pyjs eval '<code>'       Transpile a snippet and print it")
	fmt.Println("  pyjs version             Show version information")
	fmt.Println("  pyjs help                Show all commands")
}

func printHelp() {
	fmt.Println("pyjs: Python subset to JavaScript transpiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pyjs <file.py>             Shortcut for 'pyjs transpile <file.py>'")
	fmt.Println("  pyjs transpile [flags] <file>")
	fmt.Println("        -nested              Use nested indentation")
	fmt.Println("        -o <dir>             Output directory")
	fmt.Println("        -stdout              Print instead of writing a file")
	fmt.Println("  pyjs batch [flags] <dir>   Transpile every .py file in dir")
	fmt.Println("        -nested, -o <dir>, -workers <n>")
	fmt.Println("  pyjs eval '<code>'         Transpile a snippet and print it")
	fmt.Println("  pyjs repl                  Start the interactive REPL")
	fmt.Println("  pyjs tokens <file>         Print the token stream")
	fmt.Println("  pyjs ast <file>            Print the parsed program")
	fmt.Println("  pyjs inspect <file>        Summarize functions, loops and calls")
	fmt.Println("  pyjs check <file>          Cross-check the parse against the reference grammar")
	fmt.Println("  pyjs serve [-addr :8080]   Run the HTTP/WebSocket service")
	fmt.Println("  pyjs token [-ttl 24h] <subject>")
	fmt.Println("                             Mint a bearer token for the service")
	fmt.Println("  pyjs version               Display build metadata")
	fmt.Println("  pyjs help                  Show this help message")
	fmt.Println()
	fmt.Println("Configuration is read from .env and PYJS_* environment variables.")
}

func printVersion() {
	fmt.Printf("pyjs %s\n", version.Version)
	fmt.Printf("Build Date: %s\n", version.BuildDate)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
}

func requireFile(command string, args []string) {
	if len(args) < 1 {
		fmt.Printf("Usage: pyjs %s <file>\n", command)
		os.Exit(1)
	}
}

// codegenFlags registers the flags shared by transpile and batch.
func codegenFlags(fs *flag.FlagSet) (nested *bool, outDir *string) {
	nested = fs.Bool("nested", cfg.IndentPolicy == codegen.Nested, "use nested indentation")
	outDir = fs.String("o", cfg.OutputDir, "output directory")
	return nested, outDir
}

func optionsFor(nested bool) codegen.Options {
	opts := cfg.CodegenOptions()
	opts.Policy = codegen.Flat
	if nested {
		opts.Policy = codegen.Nested
	}
	return opts
}

func transpileCmd(args []string) {
	fs := flag.NewFlagSet("transpile", flag.ExitOnError)
	nested, outDir := codegenFlags(fs)
	toStdout := fs.Bool("stdout", false, "print instead of writing a file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("Usage: pyjs transpile [-nested] [-o dir] [-stdout] <file>")
		os.Exit(1)
	}
	filename := fs.Arg(0)

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	t := transpiler.New(optionsFor(*nested))
	js, err := t.Transpile(filename, string(src))
	if err != nil {
		fmt.Fprint(os.Stderr, transpiler.FormatError(err, filename, string(src)))
		os.Exit(1)
	}

	if *toStdout {
		fmt.Println(js)
		return
	}

	w := output.NewWriter(*outDir, cfg.Header)
	path, err := w.Write(filename, js, "Transpiled from "+filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	logger.LogFileWritten(filename, path)

	fmt.Printf("✓ %s -> %s\n\n", filename, path)
	fmt.Println(preview(js, 20))
}

// preview returns at most n lines of code.
func preview(code string, n int) string {
	lines := strings.Split(code, "\n")
	if len(lines) <= n {
		return code
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-n)
}

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	nested, outDir := codegenFlags(fs)
	workers := fs.Int("workers", cfg.Workers, "concurrent files")
	fs.Parse(args)
	dir := "examples"
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	files, err := transpiler.FindSources(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing %s: %v\n", dir, err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No .py files found in %s\n", dir)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := transpiler.New(optionsFor(*nested))
	results, err := t.Batch(ctx, files, *workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch aborted: %v\n", err)
		os.Exit(1)
	}

	w := output.NewWriter(*outDir, cfg.Header)
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s\n%s\n", r.Path, transpiler.FormatError(r.Err, r.Path, r.Source))
			continue
		}
		path, err := w.Write(r.Path, r.Output, "Transpiled from "+r.Path)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, err)
			continue
		}
		logger.LogFileWritten(r.Path, path)
		fmt.Printf("✓ %s -> %s\n", r.Path, path)
	}

	fmt.Printf("\n%d of %d files transpiled\n", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}

func evalCode(code string) {
	t := transpiler.New(cfg.CodegenOptions())
	js, err := t.Transpile("<eval>", code)
	if err != nil {
		fmt.Fprint(os.Stderr, transpiler.FormatError(err, "", code))
		os.Exit(1)
	}
	fmt.Println(js)
}

func readSource(filename string) string {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	return string(data)
}

func printTokens(filename string) {
	src := readSource(filename)
	tokens, err := transpiler.New(cfg.CodegenOptions()).Tokens(filename, src)
	if err != nil {
		fmt.Fprint(os.Stderr, transpiler.FormatError(err, filename, src))
		os.Exit(1)
	}
	for _, tok := range tokens {
		fmt.Printf("%4d:%-4d %-8s %q\n", tok.Line, tok.Column+1, tok.Type, tok.Literal)
	}
}

func printProgramAST(filename string) {
	src := readSource(filename)
	program, err := transpiler.New(cfg.CodegenOptions()).Parse(filename, src)
	if err != nil {
		fmt.Fprint(os.Stderr, transpiler.FormatError(err, filename, src))
		os.Exit(1)
	}
	fmt.Print(program.String())
}

func inspectFile(filename string) {
	src := readSource(filename)
	program, err := transpiler.New(cfg.CodegenOptions()).Parse(filename, src)
	if err != nil {
		fmt.Fprint(os.Stderr, transpiler.FormatError(err, filename, src))
		os.Exit(1)
	}
	printInsights(analyzeProgram(program))
}

func checkFile(filename string) {
	src := readSource(filename)
	if _, err := pyref.Check(src); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s is not valid Python: %v\n", filename, err)
		os.Exit(1)
	}
	program, err := transpiler.New(cfg.CodegenOptions()).Parse(filename, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s is valid Python but outside the supported subset\n", filename)
		fmt.Fprint(os.Stderr, transpiler.FormatError(err, filename, src))
		os.Exit(1)
	}
	if err := pyref.Compare(src, program); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filename, err)
		os.Exit(1)
	}
	fmt.Printf("✓ %s: %d top-level statements, parse agrees with the reference grammar\n", filename, len(program.Statements))
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:      *addr,
		JWTSecret: cfg.JWTSecret,
		CacheSize: cfg.CacheSize,
		Codegen:   cfg.CodegenOptions(),
	})
	fmt.Printf("📡 Server listening on http://localhost%s\n", *addr)
	fmt.Println("   POST /transpile   GET /ws   GET /healthz")
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func tokenCmd(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("Usage: pyjs token [-ttl 24h] <subject>")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "PYJS_JWT_SECRET is not set")
		os.Exit(1)
	}
	tok, err := server.SignToken(cfg.JWTSecret, fs.Arg(0), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
