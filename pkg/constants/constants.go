// Package constants provides shared constants used throughout the mediathek codebase.
// This includes timeouts, limits, file permissions, feed locations and other
// values that should be consistent across the library, the server and the CLI.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single feed download
	DefaultHTTPTimeout = 2 * time.Minute

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// UpdateContextTimeout is the timeout for each automatic catalog update
	UpdateContextTimeout = 10 * time.Minute

	// DefaultUpdateInterval is how often the auto updater checks for staleness
	DefaultUpdateInterval = 15 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the CLI and server
	ShutdownTimeout = 5 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of attempts per download URL
	MaxRetries = 3

	// DefaultPageSize is the default number of items per page for paginated results
	DefaultPageSize = 100

	// MaxPageSize is the maximum allowed page size for paginated results
	MaxPageSize = 1000

	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 256

	// MaxFeedSize caps a downloaded feed body (uncompressed lists are ~1 GiB)
	MaxFeedSize = 2 << 30
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached API responses
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// Logging constants
const (
	// LogRotationSize is the maximum size of a log file before rotation (10 MB)
	LogRotationSize = 10 * 1024 * 1024

	// LogRotationAge is the maximum age of log files before deletion
	LogRotationAge = 7 * 24 * time.Hour

	// LogRotationBackups is the maximum number of old log files to retain
	LogRotationBackups = 5
)

// Feed constants
const (
	// DefaultUserAgent identifies the client to feed servers
	DefaultUserAgent = "mediathek/1.0"

	// DefaultFullListURL serves the complete show list
	DefaultFullListURL = "https://liste.mediathekview.de/Filmliste-akt.xz"

	// DefaultPartialListURL serves the shows changed since the last full list
	DefaultPartialListURL = "https://liste.mediathekview.de/Filmliste-diff.xz"

	// DefaultDatabaseUpdateAfter is how old the catalog may get before a refresh
	DefaultDatabaseUpdateAfter = 3 * time.Hour
)

// Path constants
const (
	// DefaultDataPath is the default directory for the database and settings
	DefaultDataPath = "~/.mediathek"

	// DatabaseFileName is the file name of the persisted catalog
	DatabaseFileName = "database"

	// SettingsFileName is the file name of the persisted settings
	SettingsFileName = "settings.yaml"
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"

	// DateFormat is how show dates are printed
	DateFormat = "2006-01-02"
)
