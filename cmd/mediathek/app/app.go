// Package app wires configuration, logging and the catalog client into
// the mediathek command tree.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/mediathek"
	"github.com/agentstation/mediathek/cmd/application"
	"github.com/agentstation/mediathek/internal/cmd/output"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

var _ application.Application = (*App)(nil)

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

// App is the running CLI. The catalog client is opened on first use and
// closed by Shutdown.
type App struct {
	build  BuildInfo
	config *Config
	logger *zerolog.Logger
	out    io.Writer

	clientOpts []mediathek.Option

	clientMu sync.Mutex
	client   mediathek.Client
}

// Option customizes an App.
type Option func(*App)

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(config *Config) Option {
	return func(a *App) { a.config = config }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithClient supplies an already open catalog.
func WithClient(c mediathek.Client) Option {
	return func(a *App) { a.client = c }
}

// WithClientOptions appends options applied when the catalog is opened.
func WithClientOptions(opts ...mediathek.Option) Option {
	return func(a *App) { a.clientOpts = append(a.clientOpts, opts...) }
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// New loads the configuration and builds the logger. opts apply last.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	logger := NewLogger(config)

	a := &App{
		build:  BuildInfo{Version: version, Commit: commit, Date: date, BuiltBy: builtBy},
		config: config,
		logger: &logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Build returns the version stamp of the binary.
func (a *App) Build() BuildInfo { return a.build }

// Version returns the release version.
func (a *App) Version() string { return a.build.Version }

// Config returns the effective configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the CLI logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value or the terminal default.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Client opens the catalog in the configured data directory once and
// returns the same client on every later call.
func (a *App) Client() (mediathek.Client, error) {
	a.clientMu.Lock()
	defer a.clientMu.Unlock()
	if a.client != nil {
		return a.client, nil
	}

	precedence, err := snapshot.ParsePrecedence(a.config.QueryPrecedence)
	if err != nil {
		return nil, err
	}
	opts := []mediathek.Option{
		mediathek.WithLogger(a.logger),
		mediathek.WithQueryPrecedence(precedence),
		mediathek.WithCompression(a.config.Compression),
		mediathek.WithAutoUpdates(a.config.AutoUpdatesEnabled),
		mediathek.WithAutoUpdateInterval(a.config.AutoUpdateInterval),
	}
	if a.config.DataDir != "" {
		opts = append(opts, mediathek.WithDataDir(a.config.DataDir))
	}
	if a.config.DatabasePath != "" {
		opts = append(opts, mediathek.WithDatabasePath(a.config.DatabasePath))
	}

	c, err := mediathek.New(append(opts, a.clientOpts...)...)
	if err != nil {
		return nil, errors.WrapResource("open", "catalog", a.config.DataDir, err)
	}
	a.client = c
	return c, nil
}

// Shutdown closes the catalog if it was opened.
func (a *App) Shutdown(_ context.Context) error {
	a.clientMu.Lock()
	c := a.client
	a.clientMu.Unlock()
	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Catalog close failed")
		return err
	}
	return nil
}
