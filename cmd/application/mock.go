package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/mediathek"
)

// Compile-time interface check.
var _ Application = (*Mock)(nil)

// Mock is an Application for tests. Nil funcs return zero values.
type Mock struct {
	ClientFunc func() (mediathek.Client, error)
	LoggerFunc func() *zerolog.Logger
	Format     string
}

// Client calls ClientFunc.
func (m *Mock) Client() (mediathek.Client, error) {
	if m.ClientFunc == nil {
		return nil, nil
	}
	return m.ClientFunc()
}

// Logger calls LoggerFunc or returns a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format, or "table" when unset.
func (m *Mock) OutputFormat() string {
	if m.Format == "" {
		return "table"
	}
	return m.Format
}

// Version returns "test".
func (m *Mock) Version() string { return "test" }
