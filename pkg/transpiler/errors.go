package transpiler

import (
	"errors"
	"fmt"
	"strings"
)

var stageHeaders = map[Stage]string{
	StageLex:      "LEXICAL ERROR",
	StageParse:    "PARSE ERROR",
	StageGenerate: "GENERATION ERROR",
}

// FormatError renders err with a caret under the offending column of src.
// Errors without a position, or that are not a *Error, render as a single
// line. name may be empty.
func FormatError(err error, name, src string) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	header := stageHeaders[e.Stage]
	if header == "" {
		header = strings.ToUpper(string(e.Stage)) + " ERROR"
	}
	if e.Line <= 0 {
		if name != "" {
			return fmt.Sprintf("%s in %s: %s\n", header, name, e.Msg)
		}
		return fmt.Sprintf("%s: %s\n", header, e.Msg)
	}
	return caretSnippet(src, header, name, e.Line, e.Column, e.Msg)
}

// caretSnippet shows at most one line of context on either side of the
// error. Coordinates are 1-based and clamped to the source.
func caretSnippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", caretPadding(lineTxt, col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// caretPadding keeps tabs so the caret lines up under tab-indented code.
func caretPadding(lineTxt string, n int) string {
	var pad strings.Builder
	for i := 0; i < n; i++ {
		if i < len(lineTxt) && lineTxt[i] == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	return pad.String()
}
