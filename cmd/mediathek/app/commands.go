package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/mediathek/cmd/mediathek/cmd/catalog"
	"github.com/agentstation/mediathek/cmd/mediathek/cmd/query"
	"github.com/agentstation/mediathek/cmd/mediathek/cmd/serve"
	"github.com/agentstation/mediathek/cmd/mediathek/cmd/show"
	"github.com/agentstation/mediathek/cmd/mediathek/cmd/update"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(query.NewCommand(a))
	rootCmd.AddCommand(show.NewCommand(a))
	rootCmd.AddCommand(catalog.NewChannelsCommand(a))
	rootCmd.AddCommand(catalog.NewTopicsCommand(a))

	// Management commands
	rootCmd.AddCommand(update.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a, serve.Defaults{
		APIKey:  a.config.APIKey,
		AMQPURL: a.config.AMQPURL,
	}))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("mediathek %s\n", a.build.Version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.build.Commit)
				cmd.Printf("  built:    %s\n", a.build.Date)
				cmd.Printf("  built by: %s\n", a.build.BuiltBy)
			}
		},
	}
}
