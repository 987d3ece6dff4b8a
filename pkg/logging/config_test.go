package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mediathek/pkg/logging"
)

func TestConfigFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	defer func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	t.Run("DefaultConfig returns sensible defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		require.NotNil(t, cfg)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.False(t, cfg.AddCaller)
		assert.Equal(t, "stderr", cfg.Output)
	})

	t.Run("file output is written through the rotating writer", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mediathek.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
		})
		logger.Info().Int("shows", 3).Msg("catalog loaded")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "catalog loaded")
		assert.Contains(t, string(content), `"shows":3`)
	})

	t.Run("Configure sets global logger from config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warn.log")

		logging.Configure(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
		})

		logging.Debug().Msg("debug message")
		logging.Info().Msg("info message")
		logging.Warn().Msg("warn message")
		logging.Error().Msg("error message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		output := string(content)
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("console format to a file uses short level names", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "console.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "info",
			Format: "console",
			Output: path,
		})
		logger.Info().Str("channel", "ARD").Msg("console test")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "console test")
		assert.Contains(t, string(content), "INF")
	})

	t.Run("default fields are attached", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "info",
			Output: "discard",
			Fields: map[string]any{"service": "mediathek"},
		}).Output(&buf)

		logger.Info().Msg("hello")
		assert.Contains(t, buf.String(), `"service":"mediathek"`)
	})

	t.Run("different log levels", func(t *testing.T) {
		testCases := []struct {
			level     string
			logFunc   func() *zerolog.Event
			shouldLog bool
		}{
			{"debug", logging.Debug, true},
			{"info", logging.Info, true},
			{"info", logging.Debug, false},
			{"warn", logging.Warn, true},
			{"warn", logging.Info, false},
			{"error", logging.Error, true},
			{"error", logging.Warn, false},
		}

		for _, tc := range testCases {
			t.Run(tc.level, func(t *testing.T) {
				var buf bytes.Buffer
				logging.Configure(&logging.Config{Level: tc.level, Format: "json", Output: "discard"})
				logging.SetDefault(logging.Default().Output(&buf))

				tc.logFunc().Msg("test")

				if tc.shouldLog {
					assert.Contains(t, buf.String(), "test")
				} else {
					assert.Empty(t, buf.String())
				}
			})
		}
	})
}
