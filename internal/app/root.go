package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andyballingall/aftercare/internal/config"
	"github.com/andyballingall/aftercare/internal/fs"
	"github.com/andyballingall/aftercare/internal/validator"
)

// Version is the current version of aftercare, set at build time.
var Version = "dev"

const InitCmdName = "init"

var LongDescription = `
aftercare tidies the JavaScript emitted by a TypeScript build so that it runs
as native ES modules: import specifiers gain their file extension, aliased
top-level directories become relative paths, and exported classes gain the
default methods the runtime expects. It can also count the source lines of
a project.
`

// NewRootCmd creates the root command and wires up dependencies.
// The log file, if one is opened, is handed to logs for the caller to close.
func NewRootCmd(
	lazy *LazyManager, ll *slog.LevelVar, stderr io.Writer, envProvider fs.EnvProvider, logs *logFile,
) *cobra.Command {
	var debug bool
	var noColour bool
	configPath := pathValue("")

	rootCmd := &cobra.Command{
		Use:           "aftercare",
		Short:         "Post-process compiled TypeScript output",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          LongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help, completion and init commands
			if cmd.Name() == "help" || isCompletionCommand(cmd) || cmd.Name() == InitCmdName {
				return nil
			}

			// 1. Setup Logging
			if debug {
				ll.Set(slog.LevelDebug)
			}

			// Skip if already initialised (e.g., in tests)
			if lazy.HasInner() {
				return nil
			}

			// 2. Load configuration
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			v, err := validator.NewConfigValidator()
			if err != nil {
				return fmt.Errorf("configuration schema failed to compile: %w", err)
			}

			cfg, err := config.Load(dir, string(configPath), envProvider, v)
			if err != nil {
				return err
			}

			logger, closer, err := setupLogger(stderr, ll, logPathFor(envProvider, cfg))
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			}
			logs.closer = closer
			if cfg.Path != "" {
				logger.Debug("loaded configuration", "path", cfg.Path, "root", cfg.Root)
			}

			// 3. Hydrate the Lazy Wrapper
			lazy.SetInner(NewCLIManager(logger, cfg, cmd.OutOrStdout()))

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().VarP(&configPath, "config", "f",
		fmt.Sprintf("path to config file (overrides %s and %s)", config.ConfigEnvVar, config.ConfigFile))
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVarP(&noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	rootCmd.PersistentFlags().BoolVar(&noColour, "nocolor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColour", false, "")
	_ = rootCmd.PersistentFlags().MarkHidden("nocolor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColour")

	// Subcommands
	rootCmd.AddCommand(NewInitCmd(fs.NewPathResolver()))
	rootCmd.AddCommand(NewRewriteCmd(lazy))
	rootCmd.AddCommand(NewCountCmd(lazy))

	return rootCmd
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
