package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// WalkFiles calls fn for every regular file below root whose name ends with
// suffix, in lexical order. The walk stops at the first error returned by fn
// or by the filesystem, and when ctx is cancelled.
func WalkFiles(ctx context.Context, root, suffix string, fn func(path string) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if cErr := ctx.Err(); cErr != nil {
			return cErr
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !strings.HasSuffix(info.Name(), suffix) {
			return nil
		}
		return fn(path)
	})
}

// Depth returns the number of directories between root and path, so a file
// directly inside root has depth 0.
func Depth(root, path string) (int, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0, err
	}
	return strings.Count(filepath.ToSlash(rel), "/"), nil
}
