package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andyballingall/aftercare/internal/config"
	"github.com/andyballingall/aftercare/internal/rewrite"
)

// rewriteOptions converts the rewrite section of a configuration.
func rewriteOptions(cfg *config.Config) rewrite.Options {
	rc := cfg.Rewrite
	return rewrite.Options{
		Extension:     rc.Extension,
		Aliases:       append([]string(nil), rc.Aliases...),
		DepthOffset:   rc.DepthOffset,
		ImportKeyword: rc.ImportKeyword,
		ClassPrefix:   rc.ClassPrefix,
		Methods:       append([]string(nil), rc.Methods...),
		Indent:        rc.Indent,
		InjectMethods: rc.InjectMethods,
	}
}

func NewRewriteCmd(mgr Manager) *cobra.Command {
	var ext extValue
	var aliases []string
	var depthOffset int
	var noMethods bool
	var dryRun bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "rewrite [dir]",
		Short: "Rewrite import paths and add default methods in compiled JavaScript",
		Long: `Walk the output directory and, in every file with the configured extension:
- append the extension to import specifiers which lack it
- turn aliased top-level directories into paths relative to the importing file
- add empty defaults() and mutabilities() methods to exported classes

Files are changed in place and only when their content changes, so running
rewrite twice is the same as running it once.`,
		Args: cobra.MaximumNArgs(1),
		Example: `
aftercare rewrite lib
aftercare rewrite --ext .mjs --alias core --alias shared lib
aftercare rewrite --dry-run
aftercare rewrite --watch lib`,
	}

	cmd.Flags().VarP(&ext, "ext", "e", "File extension to process and append (default from config, '.js')")
	cmd.Flags().StringSliceVarP(&aliases, "alias", "a", nil,
		"Top-level directory imported without a relative prefix (repeatable, replaces configured aliases)")
	cmd.Flags().IntVar(&depthOffset, "depth-offset", 0, "Subtract from every file's depth below the root")
	cmd.Flags().BoolVar(&noMethods, "no-methods", false, "Do not add default methods to exported classes")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print a diff of each change instead of writing it")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep rewriting files as they change")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := mgr.Config()
		opts := rewriteOptions(cfg)

		if cmd.Flags().Changed("ext") {
			opts.Extension = string(ext)
		}
		if cmd.Flags().Changed("alias") {
			if err := config.ValidateAliases(aliases); err != nil {
				return err
			}
			opts.Aliases = aliases
		}
		if cmd.Flags().Changed("depth-offset") {
			if depthOffset < 0 {
				return fmt.Errorf("--depth-offset must not be negative")
			}
			opts.DepthOffset = depthOffset
		}
		if noMethods {
			opts.InjectMethods = false
		}

		if watch {
			if dryRun {
				return fmt.Errorf("--watch cannot be combined with --dry-run")
			}
			return mgr.WatchRewrite(cmd.Context(), cfg.Root, opts, nil)
		}

		s, err := mgr.Rewrite(cmd.Context(), cfg.Root, opts, dryRun)
		if err != nil {
			return err
		}

		if dryRun {
			cmd.PrintErrf("%d of %d files would change\n", s.Changed, s.Visited)
		} else {
			cmd.PrintErrf("Rewrote %d of %d files\n", s.Changed, s.Visited)
		}
		return nil
	}

	return cmd
}
