package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCountCmd(mgr Manager) *cobra.Command {
	var ext extValue
	var workers int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "count [dir]",
		Short: "Count the lines of source files",
		Long: `Count the lines of every file below the directory whose name ends with the
extension. The total alone is printed unless --verbose or --output json is used.`,
		Args: cobra.MaximumNArgs(1),
		Example: `
aftercare count
aftercare count --ext .js lib
aftercare count -v src
aftercare count -o json src`,
	}

	cmd.Flags().VarP(&ext, "ext", "e", "File extension to count (default from config, '.ts')")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Files read concurrently (default from config, one per CPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the count of each file")
	outputVal := formatValue("text")
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := mgr.Config()
		opts := CountOptions{
			Extension: cfg.Count.Extension,
			Workers:   cfg.Count.Workers,
			Format:    string(outputVal),
			Verbose:   verbose,
		}

		if cmd.Flags().Changed("ext") {
			opts.Extension = string(ext)
		}
		if cmd.Flags().Changed("workers") {
			if workers < 0 {
				return fmt.Errorf("--workers must not be negative")
			}
			opts.Workers = workers
		}

		noColour, _ := cmd.Flags().GetBool("nocolour")
		opts.UseColour = !noColour

		return mgr.Count(cmd.Context(), cfg.Root, opts)
	}

	return cmd
}
