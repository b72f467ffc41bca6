package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"pyjs/pkg/transpiler"
	"pyjs/pkg/version"
)

const (
	historyFile = ".pyjs_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

func startREPL(t *transpiler.Transpiler) {
	fmt.Printf("pyjs %s REPL\n", version.Version)
	fmt.Println("Enter Python; a blank line ends a block. Ctrl+D or :quit exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readBlock(ln)
		if !ok {
			fmt.Println()
			return
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		out, err := t.Transpile("<stdin>", src)
		if err != nil {
			fmt.Fprint(os.Stderr, transpiler.FormatError(err, "", src))
			continue
		}
		fmt.Println(out)
	}
}

// readBlock collects one statement. A line ending in ':' opens a block that
// is closed by the first blank line. Ctrl+C discards the pending input.
func readBlock(ln *liner.State) (string, bool) {
	var b strings.Builder
	open := false

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			open = false
			continue
		}
		if err != nil {
			return "", false
		}

		if open && strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if strings.HasSuffix(strings.TrimSpace(line), ":") {
			open = true
		}
		if !open {
			return b.String(), true
		}
	}
}
