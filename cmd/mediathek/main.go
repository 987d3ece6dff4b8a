// Command mediathek queries and updates a local catalog of public
// broadcaster shows and serves it over HTTP.
package main

import (
	"context"
	"os"

	"github.com/agentstation/mediathek/cmd/mediathek/app"
	"github.com/agentstation/mediathek/pkg/constants"
)

// Set by the release build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}

func run(args []string) error {
	a, err := app.New(version, commit, date, builtBy)
	if err != nil {
		return err
	}

	ctx, stop := app.ContextWithSignals(context.Background())
	runErr := a.Execute(ctx, args)
	stop()

	// the signal context may already be done; closing the catalog gets its own budget
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
