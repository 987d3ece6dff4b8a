package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mediathek/pkg/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultDataPath, config.DataDir)
	assert.True(t, config.Compression)
	assert.Equal(t, constants.DefaultUpdateInterval, config.AutoUpdateInterval)
	assert.Equal(t, "auto", config.LogFormat)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDIATHEK_DATA_DIR", "/srv/mediathek")
	t.Setenv("MEDIATHEK_AUTO_UPDATES_ENABLED", "true")
	t.Setenv("MEDIATHEK_AUTO_UPDATE_INTERVAL", "1h")
	t.Setenv("MEDIATHEK_COMPRESSION", "false")
	t.Setenv("MEDIATHEK_QUERY_PRECEDENCE", "title-first")
	t.Setenv("MEDIATHEK_FORMAT", "yaml")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/srv/mediathek", config.DataDir)
	assert.True(t, config.AutoUpdatesEnabled)
	assert.Equal(t, time.Hour, config.AutoUpdateInterval)
	assert.False(t, config.Compression)
	assert.Equal(t, "title-first", config.QueryPrecedence)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestUpdateFromFlags(t *testing.T) {
	c := &Config{Format: "json", LogLevel: "info"}

	c.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, c.Verbose)
	assert.True(t, c.NoColor)
	assert.Equal(t, "json", c.Format, "empty flag keeps the configured format")
	assert.Equal(t, "info", c.LogLevel)

	c.UpdateFromFlags(false, true, false, "yaml", "warn")
	assert.Equal(t, "yaml", c.Format)
	assert.Equal(t, "warn", c.LogLevel)
}
