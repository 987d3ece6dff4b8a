package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger is a trace level JSON logger that records into memory.
// It is safe to log from background goroutines while a test inspects it.
type TestLogger struct {
	*zerolog.Logger

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewTestLogger returns a capturing logger and lowers the global level to
// trace until the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	tl := &TestLogger{}
	l := New(tl).Level(zerolog.TraceLevel)
	tl.Logger = &l
	return tl
}

// Write implements io.Writer.
func (tl *TestLogger) Write(p []byte) (int, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buf.Write(p)
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buf.String()
}

// Count returns the number of recorded events.
func (tl *TestLogger) Count() int {
	out := strings.TrimSpace(tl.Output())
	if out == "" {
		return 0
	}
	return strings.Count(out, "\n") + 1
}

// Contains reports whether the output contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// ContainsAll reports whether the output contains every substring.
func (tl *TestLogger) ContainsAll(substrs ...string) bool {
	out := tl.Output()
	for _, s := range substrs {
		if !strings.Contains(out, s) {
			return false
		}
	}
	return true
}

// Clear drops the recorded output.
func (tl *TestLogger) Clear() {
	tl.mu.Lock()
	tl.buf.Reset()
	tl.mu.Unlock()
}

// AssertContains fails t unless the output contains substr.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("log output lacks %q:\n%s", substr, tl.Output())
	}
}

// AssertCount fails t unless exactly n events were recorded.
func (tl *TestLogger) AssertCount(t testing.TB, n int) {
	t.Helper()
	if got := tl.Count(); got != n {
		t.Errorf("got %d log events, want %d:\n%s", got, n, tl.Output())
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// DisableLoggingForTest silences the default logger until the test ends.
func DisableLoggingForTest(t testing.TB) {
	t.Helper()
	swapDefault(t, zerolog.Nop())
}

// CaptureLoggingForTest routes the default logger into a TestLogger until
// the test ends.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()
	tl := NewTestLogger(t)
	swapDefault(t, *tl.Logger)
	return tl
}

func swapDefault(t testing.TB, l zerolog.Logger) {
	prev := *Default()
	SetDefault(l)
	t.Cleanup(func() { SetDefault(prev) })
}
