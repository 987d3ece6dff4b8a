package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/mediathek/internal/cmd/output"
)

// Execute runs the mediathek CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "mediathek",
		Short:   "Broadcast show catalog CLI",
		Version: a.build.Version,
		Long: `Mediathek keeps a local catalog of the shows published by public
broadcasters. It downloads the full and the partial show lists, stores
them in a compact database, and answers substring queries over channel,
topic and title.

The catalog can also be served over HTTP with live update streams.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.mediathek.yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml, wide")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVar(&a.config.DataDir, "data-dir", a.config.DataDir, "directory holding the database and settings")

	rootCmd.SetVersionTemplate("mediathek {{.Version}}\n")
	if a.out != nil {
		rootCmd.SetOut(a.out)
		rootCmd.SetErr(a.out)
	}

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// flags write straight into a.config; only the logger needs rebuilding
	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}
	logger := NewLogger(a.config)
	a.logger = &logger

	a.logger.Debug().
		Str("command", cmd.CommandPath()).
		Str("data_dir", a.config.DataDir).
		Msg("Command starting")
	return nil
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
