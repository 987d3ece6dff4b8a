package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{"default level when no flags set", &Config{}, "info"},
		{"verbose flag sets debug", &Config{Verbose: true}, "debug"},
		{"quiet flag sets warn", &Config{Quiet: true}, "warn"},
		{"both verbose and quiet prefers quiet", &Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit log-level overrides flags", &Config{LogLevel: "error", Verbose: true, Quiet: true}, "error"},
		{"trace level supported", &Config{LogLevel: "trace"}, "trace"},
		{"invalid log level falls back to info", &Config{LogLevel: "loud"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(tt.config))
		})
	}
}

func TestNewLoggerDiscard(t *testing.T) {
	logger := NewLogger(&Config{LogLevel: "warn", LogFormat: "json", LogOutput: "discard"})
	assert.NotPanics(t, func() { logger.Warn().Msg("dropped") })
}
