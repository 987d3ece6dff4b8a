// Package catalog provides the channels and topics commands.
package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/mediathek/cmd/application"
	"github.com/agentstation/mediathek/internal/cmd/output"
	"github.com/agentstation/mediathek/internal/cmd/table"
)

// NewChannelsCommand creates the channels command.
func NewChannelsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "channels",
		GroupID: "core",
		Short:   "List the channels in the catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			return printValues(cmd, app, "Channel", client.Channels())
		},
	}
}

// NewTopicsCommand creates the topics command.
func NewTopicsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "topics [channel]",
		GroupID: "core",
		Short:   "List the topics of a channel, or of every channel",
		Example: `  mediathek topics
  mediathek topics zdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			var channel string
			if len(args) == 1 {
				channel = args[0]
			}
			return printValues(cmd, app, "Topic", client.Topics(channel))
		},
	}
}

func printValues(cmd *cobra.Command, app application.Application, header string, values []string) error {
	format := output.Format(app.OutputFormat())
	return output.Print(cmd.OutOrStdout(), format, table.ValuesToTableData(header, values), values)
}
