package mediathek

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/mediathek/internal/download"
	"github.com/agentstation/mediathek/internal/settings"
	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// Option is a function that configures a Client
type Option func(*options) error

// options holds the configuration of a Client.
type options struct {
	dataDir    string
	dbPath     string
	fs         afero.Fs
	settings   *settings.Settings
	fetcher    download.Fetcher
	precedence snapshot.Precedence
	compress   bool
	logger     *zerolog.Logger
	now        func() time.Time

	autoUpdatesEnabled bool
	autoUpdateInterval time.Duration
}

func defaults() *options {
	return &options{
		dataDir:            constants.DefaultDataPath,
		fs:                 afero.NewOsFs(),
		compress:           true,
		now:                time.Now,
		autoUpdatesEnabled: false,
		autoUpdateInterval: constants.DefaultUpdateInterval,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.dataDir = expandHome(o.dataDir)
	o.dbPath = expandHome(o.dbPath)
	return o, nil
}

func (o *options) databasePath() string {
	if o.dbPath != "" {
		return o.dbPath
	}
	return filepath.Join(o.dataDir, constants.DatabaseFileName)
}

func (o *options) settingsPath() string {
	return filepath.Join(o.dataDir, constants.SettingsFileName)
}

func (o *options) newFetcher(userAgent string) download.Fetcher {
	return download.New(download.WithUserAgent(userAgent))
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// WithDataDir configures the directory holding the database and the settings
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.NewValidationError("dataDir", dir, "must not be empty")
		}
		o.dataDir = dir
		return nil
	}
}

// WithDatabasePath overrides the database file location
func WithDatabasePath(path string) Option {
	return func(o *options) error {
		o.dbPath = path
		return nil
	}
}

// WithFs configures the filesystem used for the database and the settings
func WithFs(fs afero.Fs) Option {
	return func(o *options) error {
		if fs == nil {
			return errors.NewValidationError("fs", nil, "must not be nil")
		}
		o.fs = fs
		return nil
	}
}

// WithSettings supplies settings instead of loading them from the data directory
func WithSettings(s *settings.Settings) Option {
	return func(o *options) error {
		o.settings = s
		return nil
	}
}

// WithFetcher replaces the list downloader
func WithFetcher(f download.Fetcher) Option {
	return func(o *options) error {
		o.fetcher = f
		return nil
	}
}

// WithQueryPrecedence configures which filter drives the initial query scan
func WithQueryPrecedence(p snapshot.Precedence) Option {
	return func(o *options) error {
		if p != snapshot.ChannelFirst && p != snapshot.TitleFirst {
			return errors.NewValidationError("precedence", p, "unknown precedence")
		}
		o.precedence = p
		return nil
	}
}

// WithCompression configures whether the database file is zstd compressed
func WithCompression(enabled bool) Option {
	return func(o *options) error {
		o.compress = enabled
		return nil
	}
}

// WithLogger configures the logger used when a context carries none
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithClock configures the time source for update bookkeeping
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "must not be nil")
		}
		o.now = now
		return nil
	}
}

// WithAutoUpdates configures whether automatic updates are enabled
func WithAutoUpdates(enabled bool) Option {
	return func(o *options) error {
		o.autoUpdatesEnabled = enabled
		return nil
	}
}

// WithAutoUpdateInterval configures how often staleness is checked
func WithAutoUpdateInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return errors.NewValidationError("autoUpdateInterval", interval, "update interval must be positive")
		}
		o.autoUpdateInterval = interval
		return nil
	}
}
