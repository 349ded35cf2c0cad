package rewrite

import (
	"context"

	"github.com/andyballingall/aftercare/internal/fs"
)

// Summary describes a completed Traverse.
type Summary struct {
	Visited int // matching files read
	Changed int // files written, or diffed in dry-run mode
}

// Depth returns the depth used for the file at path when traversing from
// root: the directory count between them less the configured offset, never
// negative.
func (r *Rewriter) Depth(root, path string) (int, error) {
	d, err := fs.Depth(root, path)
	if err != nil {
		return 0, err
	}
	d -= r.opts.DepthOffset
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Traverse processes every file below root whose name ends with the
// configured extension. Files are handled one at a time and the walk halts on
// the first error, so files already visited keep their new content.
func (r *Rewriter) Traverse(ctx context.Context, root string) (*Summary, error) {
	s := &Summary{}
	err := fs.WalkFiles(ctx, root, r.opts.Extension, func(path string) error {
		depth, err := r.Depth(root, path)
		if err != nil {
			return err
		}
		s.Visited++
		changed, err := r.ProcessFile(path, depth)
		if err != nil {
			return err
		}
		if changed {
			s.Changed++
		}
		return nil
	})
	if err != nil {
		return s, err
	}

	r.logger.Debug("traversal complete", "root", root, "visited", s.Visited, "changed", s.Changed)
	return s, nil
}
