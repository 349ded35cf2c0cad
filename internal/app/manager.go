package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/andyballingall/aftercare/internal/config"
	"github.com/andyballingall/aftercare/internal/fs"
	"github.com/andyballingall/aftercare/internal/linecount"
	"github.com/andyballingall/aftercare/internal/report"
	"github.com/andyballingall/aftercare/internal/rewrite"
)

// Manager defines the business logic behind the aftercare commands.
type Manager interface {
	Config() *config.Config
	Rewrite(ctx context.Context, root string, opts rewrite.Options, dryRun bool) (*rewrite.Summary, error)
	WatchRewrite(ctx context.Context, root string, opts rewrite.Options, readyChan chan<- struct{}) error
	Count(ctx context.Context, root string, opts CountOptions) error
}

// CountOptions selects what the count command counts and how it reports.
type CountOptions struct {
	Extension string
	Workers   int
	Format    string
	Verbose   bool
	UseColour bool
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation, allowing
// for deferred initialization of dependencies.
type LazyManager struct {
	inner Manager
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
// This is used by PersistentPreRunE to skip initialization if already configured (e.g., in tests).
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) Config() *config.Config {
	return l.check().Config()
}

func (l *LazyManager) Rewrite(ctx context.Context, root string, opts rewrite.Options,
	dryRun bool,
) (*rewrite.Summary, error) {
	return l.check().Rewrite(ctx, root, opts, dryRun)
}

func (l *LazyManager) WatchRewrite(ctx context.Context, root string, opts rewrite.Options,
	readyChan chan<- struct{},
) error {
	return l.check().WatchRewrite(ctx, root, opts, readyChan)
}

func (l *LazyManager) Count(ctx context.Context, root string, opts CountOptions) error {
	return l.check().Count(ctx, root, opts)
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	logger         *slog.Logger
	config         *config.Config
	reporterWriter io.Writer
}

func NewCLIManager(l *slog.Logger, cfg *config.Config, w io.Writer) *CLIManager {
	return &CLIManager{
		logger:         l,
		config:         cfg,
		reporterWriter: w,
	}
}

func (m *CLIManager) Config() *config.Config {
	return m.config
}

// Rewrite processes every matching file below root. In dry-run mode nothing is
// written and a unified diff of each would-be change goes to the report writer.
func (m *CLIManager) Rewrite(ctx context.Context, root string, opts rewrite.Options,
	dryRun bool,
) (*rewrite.Summary, error) {
	m.logger.Debug("rewriting", "root", root, "extension", opts.Extension, "aliases", opts.Aliases,
		"depthOffset", opts.DepthOffset, "injectMethods", opts.InjectMethods, "dryRun", dryRun)

	r := rewrite.New(opts, m.logger)
	if dryRun {
		r.SetDiffWriter(m.reporterWriter)
	}

	s, err := r.Traverse(ctx, root)
	if err != nil {
		return s, fmt.Errorf("rewrite of %s stopped after %d files: %w", root, s.Visited, err)
	}
	return s, nil
}

// WatchRewrite rewrites the tree once, then keeps rewriting files as they
// change until ctx is cancelled, when it returns ctx.Err(). If you want to
// know when the watcher is ready to start listening to changes, pass a
// non-nil readyChan to be notified.
func (m *CLIManager) WatchRewrite(ctx context.Context, root string, opts rewrite.Options,
	readyChan chan<- struct{},
) error {
	// Resolve symlinks so event paths and depths share one root.
	root, err := fs.CanonicalPath(root)
	if err != nil {
		return err
	}

	s, err := m.Rewrite(ctx, root, opts, false)
	if err != nil {
		return err
	}
	m.logger.Info(fmt.Sprintf("Rewrote %d of %d files", s.Changed, s.Visited))

	watcher := rewrite.NewWatcher(rewrite.New(opts, m.logger), root, m.logger)

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			select {
			case <-watcher.Ready:
				readyChan <- struct{}{}
			case <-ctx.Done():
			}
		}()
	}

	return watcher.Watch(ctx)
}

func (m *CLIManager) Count(ctx context.Context, root string, opts CountOptions) error {
	m.logger.Debug("counting lines", "root", root, "extension", opts.Extension, "workers", opts.Workers,
		"format", opts.Format, "verbose", opts.Verbose)

	counter := linecount.NewCounter()
	counter.SetNumWorkers(opts.Workers)

	res, err := counter.Count(ctx, root, opts.Extension)
	if err != nil {
		return err
	}

	var reporter linecount.Reporter
	switch opts.Format {
	case "json":
		reporter = &report.JSONReporter{}
	default:
		reporter = &report.TextReporter{Verbose: opts.Verbose, UseColour: opts.UseColour}
	}

	return reporter.Write(m.reporterWriter, res)
}
