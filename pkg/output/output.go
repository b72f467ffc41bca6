// Package output writes generated JavaScript to timestamped files.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	fileStamp   = "20060102_150405"
	headerStamp = "2006-01-02 15:04:05"
)

type Writer struct {
	Dir    string
	Header bool
	// Now is the clock used for file names and headers.
	Now func() time.Time
}

func NewWriter(dir string, header bool) *Writer {
	return &Writer{Dir: dir, Header: header, Now: time.Now}
}

// FileName returns <base>_<YYYYmmdd_HHMMSS>.js for source, dropping a
// trailing .py extension.
func FileName(source string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(source), ".py")
	return fmt.Sprintf("%s_%s.js", base, at.Format(fileStamp))
}

// Header is the comment block placed above the generated code.
func Header(source, description string, at time.Time) string {
	return fmt.Sprintf("// Generated JavaScript from %s\n// Transpiled on: %s\n// Description: %s\n\n",
		filepath.Base(source), at.Format(headerStamp), description)
}

// Write stores code for source in w.Dir, creating the directory if needed,
// and returns the path written.
func (w *Writer) Write(source, code, description string) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	at := now()

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	content := code
	if w.Header {
		content = Header(source, description, at) + code
	}

	path := filepath.Join(w.Dir, FileName(source, at))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
