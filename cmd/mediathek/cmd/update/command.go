// Package update provides the update command.
package update

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/mediathek"
	"github.com/agentstation/mediathek/cmd/application"
	"github.com/agentstation/mediathek/internal/cmd/emoji"
	"github.com/agentstation/mediathek/internal/cmd/output"
	"github.com/agentstation/mediathek/pkg/errors"
)

// Result is what the update command prints.
type Result struct {
	Kind      mediathek.UpdateKind `json:"kind" yaml:"kind"`
	Source    string               `json:"source" yaml:"source"`
	Shows     int                  `json:"shows" yaml:"shows"`
	Previous  int                  `json:"previous" yaml:"previous"`
	Rows      int                  `json:"rows" yaml:"rows"`
	Skipped   int                  `json:"skipped" yaml:"skipped"`
	UpdatedOn time.Time            `json:"updated_on" yaml:"updated_on"`
	Took      string               `json:"took" yaml:"took"`
}

// NewCommand creates the update command.
func NewCommand(app application.Application) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "update [full|partial]",
		GroupID: "management",
		Short:   "Refresh the catalog from the full or the partial show list",
		Long: `Update rebuilds the catalog from the full show list, or merges the
partial list into it. Without an argument a full update runs when the
catalog is empty and a partial one otherwise.

The list is downloaded from the configured URLs and mirrors unless --file
names a local list, which may be xz compressed.`,
		Example: `  mediathek update
  mediathek update full
  mediathek update partial --file Filmliste-diff.xz`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(mediathek.UpdateFull), string(mediathek.UpdatePartial)},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			kind, err := resolveKind(client, args)
			if err != nil {
				return err
			}

			result, err := run(cmd, client, kind, file)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s Update failed\n", emoji.Error)
				return err
			}

			app.Logger().Info().
				Str("update_kind", string(kind)).
				Int("shows", result.Shows).
				Msg("Catalog updated")

			format := output.Format(app.OutputFormat())
			if format == output.FormatTable || format == output.FormatWide {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s update: %d shows (was %d, %d rows read, %d skipped) in %s\n",
					emoji.Success, result.Kind, result.Shows, result.Previous, result.Rows, result.Skipped, result.Took)
				return nil
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the list from a local file instead of downloading it")

	return cmd
}

func resolveKind(client mediathek.Client, args []string) (mediathek.UpdateKind, error) {
	if len(args) == 1 {
		return mediathek.ParseUpdateKind(args[0])
	}
	if client.Snapshot().Len() == 0 {
		return mediathek.UpdateFull, nil
	}
	return mediathek.UpdatePartial, nil
}

func run(cmd *cobra.Command, client mediathek.Client, kind mediathek.UpdateKind, file string) (*Result, error) {
	var (
		mu      sync.Mutex
		info    mediathek.UpdateInfo
		updated bool
		failure error
	)
	client.OnUpdated(func(i mediathek.UpdateInfo) {
		mu.Lock()
		defer mu.Unlock()
		info, updated = i, true
	})
	client.OnUpdateFailed(func(_ string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failure = err
	})

	source := file
	if file == "" {
		source = "download"
		if err := client.UpdateNow(cmd.Context(), kind); err != nil {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.WrapIO("read", file, err)
		}

		accepted := client.RequestFullUpdate
		if kind == mediathek.UpdatePartial {
			accepted = client.RequestPartialUpdate
		}
		if !accepted(data) {
			return nil, errors.ErrBusy
		}
		client.WaitForFinished()
	}

	mu.Lock()
	defer mu.Unlock()
	if failure != nil {
		return nil, failure
	}
	if !updated {
		return nil, errors.NewUpdateError(string(kind), "no snapshot published", nil)
	}

	return &Result{
		Kind:      info.Kind,
		Source:    source,
		Shows:     info.Shows,
		Previous:  info.Previous,
		Rows:      info.Rows,
		Skipped:   info.Skipped,
		UpdatedOn: info.UpdatedOn,
		Took:      info.Took.Round(time.Millisecond).String(),
	}, nil
}
