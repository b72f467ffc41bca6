package transpiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"pyjs/pkg/logger"
)

// SourceExt is the extension FindSources looks for.
const SourceExt = ".py"

// Result is the outcome for one file of a batch.
type Result struct {
	Path   string
	Source string
	Output string
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// FindSources lists the source files directly inside dir, sorted by name.
func FindSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SourceExt) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Batch transpiles every file with at most workers running at once. Results
// are returned in input order. A failing file does not stop the others; only
// cancellation of ctx aborts the batch.
func (t *Transpiler) Batch(ctx context.Context, files []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = t.transpileFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failures := 0
	for _, r := range results {
		if !r.OK() {
			failures++
		}
	}
	logger.LogBatch(len(files), failures)
	return results, nil
}

func (t *Transpiler) transpileFile(path string) Result {
	logger.LogFileProcessing(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	src := string(data)
	out, err := t.Transpile(filepath.Base(path), src)
	return Result{Path: path, Source: src, Output: out, Err: err}
}
