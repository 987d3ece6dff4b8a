// Package query provides the query command.
package query

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/mediathek/cmd/application"
	"github.com/agentstation/mediathek/internal/cmd/output"
	"github.com/agentstation/mediathek/internal/cmd/table"
	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

type options struct {
	channel    string
	topic      string
	title      string
	sort       string
	order      string
	precedence string
	limit      int
	offset     int
}

// NewCommand creates the query command.
func NewCommand(app application.Application) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"search", "q"},
		GroupID: "core",
		Short:   "Search shows by channel, topic and title",
		Long: `Query searches the catalog with case-insensitive substring filters.
Every filter that is set must match. Results are sorted by channel unless
--sort names another column; ties are broken newest first.`,
		Example: `  # Every show of one channel
  mediathek query --channel ard

  # Newest first across all channels
  mediathek query --title tagesschau --sort date --order desc

  # As JSON for scripting
  mediathek query --topic sport -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.channel, "channel", "", "channel substring")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "topic substring")
	cmd.Flags().StringVar(&opts.title, "title", "", "title substring")
	cmd.Flags().StringVar(&opts.sort, "sort", "channel", "sort column: channel, topic, title, date, time, duration")
	cmd.Flags().StringVar(&opts.order, "order", "asc", "sort order: asc, desc")
	cmd.Flags().StringVar(&opts.precedence, "precedence", "", "criterion order: channel-first, title-first (default from config)")
	cmd.Flags().IntVar(&opts.limit, "limit", constants.DefaultPageSize, "maximum number of results (0 for all)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "number of results to skip")

	return cmd
}

func (o *options) query() (snapshot.Query, error) {
	column, err := snapshot.ParseSortColumn(o.sort)
	if err != nil {
		return snapshot.Query{}, err
	}
	order, err := snapshot.ParseSortOrder(o.order)
	if err != nil {
		return snapshot.Query{}, err
	}
	precedence, err := snapshot.ParsePrecedence(o.precedence)
	if err != nil {
		return snapshot.Query{}, err
	}
	if o.limit < 0 {
		return snapshot.Query{}, errors.NewValidationError("limit", o.limit, "must not be negative")
	}
	if o.offset < 0 {
		return snapshot.Query{}, errors.NewValidationError("offset", o.offset, "must not be negative")
	}

	return snapshot.Query{
		Channel:    o.channel,
		Topic:      o.topic,
		Title:      o.title,
		SortColumn: column,
		SortOrder:  order,
		Precedence: precedence,
	}, nil
}

func run(cmd *cobra.Command, app application.Application, opts *options) error {
	q, err := opts.query()
	if err != nil {
		return err
	}

	client, err := app.Client()
	if err != nil {
		return err
	}

	// one snapshot for both the query and the lookups
	snap := client.Snapshot()
	ids := snap.Query(q)
	app.Logger().Debug().Int("matches", len(ids)).Msg("Query complete")

	ids = ids[min(opts.offset, len(ids)):]
	if opts.limit > 0 && len(ids) > opts.limit {
		ids = ids[:opts.limit]
	}

	kind := client.Settings().PreferredURL()
	rows := make([]table.ShowRow, 0, len(ids))
	for _, id := range ids {
		s, err := snap.Show(id)
		if err != nil {
			return err
		}
		rows = append(rows, table.NewShowRow(id, s, kind))
	}

	format := output.Format(app.OutputFormat())
	return output.Print(cmd.OutOrStdout(), format, table.ShowsToTableData(rows, output.IsWide(format)), rows)
}
