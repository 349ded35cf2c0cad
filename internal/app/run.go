package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andyballingall/aftercare/internal/fs"
)

func Run(ctx context.Context, args []string, stdout, stderr io.Writer, envProvider fs.EnvProvider) error {
	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelInfo)

	// Local lazy instance ensures t.Parallel() safety
	lazy := &LazyManager{}

	if envProvider == nil {
		envProvider = fs.NewEnvProvider()
	}

	logs := &logFile{}
	rootCmd := NewRootCmd(lazy, logLevel, stderr, envProvider, logs)
	rootCmd.SetArgs(args[1:]) // Skip the program name
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return execute(ctx, rootCmd, logs, stderr)
}

// execute runs the command and then closes the log file, so a failing
// command still releases it.
func execute(ctx context.Context, rootCmd *cobra.Command, logs *logFile, stderr io.Writer) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := logs.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "Interrupted by user")
			return nil
		}
		// Print error to stderr for script tests and CLI users (SilenceErrors is set)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	return nil
}
