package rewrite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDuration = 100 * time.Millisecond

// Watcher re-runs the Rewriter over files below a root as they are created
// or written, for use alongside a compiler running in watch mode.
type Watcher struct {
	rewriter *Rewriter
	root     string
	logger   *slog.Logger
	Ready    chan struct{}

	// OnProcessed, if set, is called after each debounced batch with the
	// files that were rewritten.
	OnProcessed func(changed []string)

	newWatcher func() (*fsnotify.Watcher, error)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool

	flushMu sync.Mutex // serialises batches
}

// NewWatcher creates a Watcher for the tree below root.
func NewWatcher(r *Rewriter, root string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = r.logger
	}
	return &Watcher{
		rewriter:   r,
		root:       root,
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		newWatcher: fsnotify.NewWatcher,
		pending:    make(map[string]struct{}),
	}
}

// Watch blocks until ctx is cancelled, rewriting matching files shortly after
// they change. Rewrite failures are logged and do not stop the watch; our own
// writes trigger one further event which finds nothing left to change.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, w.root); err != nil {
		return err
	}

	w.logger.Info("Watching for changes", "root", w.root)
	if w.Ready != nil {
		close(w.Ready)
	}

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors:
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if path := w.handleEvent(watcher, event); path != "" {
				w.schedule(path)
			}
		}
	}
}

// handleEvent adds newly created directories to the watcher and returns the
// path of a matching file that changed, or "".
func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) string {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return ""
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(watcher, event.Name); err != nil {
				w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
			}
		}
		return ""
	}

	if !strings.HasSuffix(event.Name, w.rewriter.opts.Extension) {
		return ""
	}
	return event.Name
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDuration, w.flush)
}

// stop cancels any scheduled batch and waits for a running one to finish.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.flushMu.Lock()
	defer w.flushMu.Unlock()
}

// flush processes every pending path in lexical order. It does nothing once
// the watch has stopped.
func (w *Watcher) flush() {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	w.mu.Unlock()

	slices.Sort(paths)

	var changed []string
	for _, p := range paths {
		depth, err := w.rewriter.Depth(w.root, p)
		if err != nil {
			w.logger.Error("Failed to compute depth", "path", p, "error", err)
			continue
		}
		ok, err := w.rewriter.ProcessFile(p, depth)
		if err != nil {
			w.logger.Error("Rewrite failed", "path", p, "error", err)
			continue
		}
		if ok {
			w.logger.Info("Rewrote", "path", p)
			changed = append(changed, p)
		}
	}

	if w.OnProcessed != nil {
		w.OnProcessed(changed)
	}
}

// addRecursive adds the given path and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
