// Package show provides the show command.
package show

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/mediathek/cmd/application"
	"github.com/agentstation/mediathek/internal/cmd/output"
	"github.com/agentstation/mediathek/internal/cmd/table"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
)

// NewCommand creates the show command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		GroupID: "core",
		Short:   "Show every field of one show",
		Long: `Show prints one show by the id reported by query.
Ids are positions in the current catalog and change after an update.`,
		Example: `  mediathek show 42
  mediathek show 42 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.NewValidationError("id", args[0], "must be an integer")
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			s, err := client.Show(id)
			if err != nil {
				return err
			}

			kind := client.Settings().PreferredURL()
			format := output.Format(app.OutputFormat())
			return output.Print(cmd.OutOrStdout(), format, table.ShowToTableData(id, s, kind), detail{
				ID:           id,
				Show:         s,
				URLSmall:     s.URLSmall(),
				URLLarge:     s.URLLarge(),
				PreferredURL: s.PreferredURL(kind),
			})
		},
	}
}

// detail is the structured form, resolving the alternate URLs.
type detail struct {
	shows.Show `yaml:",inline"`

	ID           int    `json:"id" yaml:"id"`
	URLSmall     string `json:"url_small,omitempty" yaml:"url_small,omitempty"`
	URLLarge     string `json:"url_large,omitempty" yaml:"url_large,omitempty"`
	PreferredURL string `json:"preferred_url" yaml:"preferred_url"`
}
