// Package linecount totals the lines of source files below a directory.
package linecount

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/aftercare/internal/fs"
)

// FileCount is the line count of one file.
type FileCount struct {
	Path  string
	Lines int
}

// Result is the outcome of a Count.
type Result struct {
	Root      string
	Extension string
	Files     []FileCount // in walk order
	Total     int
}

// Counter counts lines using a bounded number of workers.
type Counter struct {
	numWorkers int
}

// NewCounter returns a Counter using one worker per CPU.
func NewCounter() *Counter {
	return &Counter{numWorkers: runtime.NumCPU()}
}

// SetNumWorkers sets the number of files read concurrently. Values below one
// select one worker per CPU.
func (c *Counter) SetNumWorkers(n int) {
	if n < 1 {
		n = runtime.NumCPU()
	}
	c.numWorkers = n
}

// Count sums the lines of every file below root whose name ends with ext.
// Any unreadable file fails the whole count; no partial result is returned.
func Count(ctx context.Context, root, ext string) (int, error) {
	res, err := NewCounter().Count(ctx, root, ext)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

// Count walks root and counts each matching file.
func (c *Counter) Count(ctx context.Context, root, ext string) (*Result, error) {
	var paths []string
	err := fs.WalkFiles(ctx, root, ext, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	files := make([]FileCount, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.numWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if cErr := gctx.Err(); cErr != nil {
				return cErr
			}
			n, fErr := countFile(p)
			if fErr != nil {
				return fErr
			}
			files[i] = FileCount{Path: p, Lines: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Root: root, Extension: ext, Files: files}
	for _, f := range files {
		res.Total += f.Lines
	}
	return res, nil
}

func countFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := CountLines(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return n, nil
}

// CountLines returns the number of lines in r: every newline-terminated line
// plus a final unterminated fragment, if any.
func CountLines(r io.Reader) (int, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, 32*1024)
	lines := 0
	partial := false
	for {
		n, err := br.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			partial = buf[n-1] != '\n'
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if partial {
		lines++
	}
	return lines, nil
}
