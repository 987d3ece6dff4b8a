// Package application declares what subcommands and the API server need
// from the running program. Commands depend on this interface rather than
// on the CLI's App so they can be exercised against a Mock.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/mediathek"
)

// Application is implemented by the CLI's App and by Mock.
// Implementations must be safe for concurrent use.
type Application interface {
	// Client opens the catalog on first use and returns the same client
	// afterwards.
	Client() (mediathek.Client, error)

	Logger() *zerolog.Logger

	// OutputFormat is table, wide, json or yaml.
	OutputFormat() string

	Version() string
}
