package rewrite

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/diff"
)

// Rewriter applies the import and class rules to files on disk.
type Rewriter struct {
	opts   Options
	logger *slog.Logger
	diffW  io.Writer
}

// New creates a Rewriter with the given options.
func New(opts Options, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Rewriter{
		opts:   opts,
		logger: logger.With("component", "rewriter"),
	}
}

// Options returns the options the Rewriter was created with.
func (r *Rewriter) Options() Options {
	return r.opts
}

// SetDiffWriter switches the Rewriter to dry-run mode: instead of overwriting
// files, a unified diff of every change is written to w. Pass nil to write
// files again.
func (r *Rewriter) SetDiffWriter(w io.Writer) {
	r.diffW = w
}

// RewriteLines applies RewriteLine to every line. The result always has the
// same number of lines as the input.
func (r *Rewriter) RewriteLines(lines []string, depth int) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		nl, err := r.RewriteLine(line, depth)
		if err != nil {
			return nil, locate(err, "", i+1)
		}
		out[i] = nl
	}
	return out, nil
}

// RewriteFile rewrites the import lines of the file at path. The file is only
// written when it is non-empty and its content changes. It reports whether a
// change was made.
func (r *Rewriter) RewriteFile(path string, depth int) (bool, error) {
	return r.process(path, func(lines []string) ([]string, error) {
		return r.RewriteLines(lines, depth)
	})
}

// InjectDefaultMethods adds any missing accessor stubs to the classes in the
// file at path. It reports whether a change was made.
func (r *Rewriter) InjectDefaultMethods(path string) (bool, error) {
	return r.process(path, r.InjectMethods)
}

// ProcessFile runs RewriteFile and, when enabled, InjectDefaultMethods over
// the file at path, writing the combined result at most once.
func (r *Rewriter) ProcessFile(path string, depth int) (bool, error) {
	return r.process(path, func(lines []string) ([]string, error) {
		out, err := r.RewriteLines(lines, depth)
		if err != nil || !r.opts.InjectMethods {
			return out, err
		}
		return r.InjectMethods(out)
	})
}

func (r *Rewriter) process(path string, transform func([]string) ([]string, error)) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	before := string(data)
	lines := splitLines(before)
	if len(lines) == 0 {
		return false, nil
	}

	out, err := transform(lines)
	if err != nil {
		return false, locate(err, path, 0)
	}

	after := strings.Join(out, "")
	if len(out) == 0 || after == before {
		return false, nil
	}

	if r.diffW != nil {
		if dErr := diff.Text(path, path, before, after, r.diffW); dErr != nil {
			return false, fmt.Errorf("failed to write diff for %s: %w", path, dErr)
		}
		return true, nil
	}

	if wErr := os.WriteFile(path, []byte(after), info.Mode().Perm()); wErr != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, wErr)
	}
	r.logger.Debug("rewrote file", "path", path)
	return true, nil
}

// splitLines splits s into lines, each keeping its terminator. A final line
// without a terminator is kept as is.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
