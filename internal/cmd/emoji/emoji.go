// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols printed before user-facing messages.
const (
	// Success marks a completed refresh or save.
	Success = "✓"

	// Error marks a failed refresh, download or parse.
	Error = "✗"

	// Stop marks a shutdown.
	Stop = "✗"

	// Warning marks a non-fatal condition, like a dropped request.
	Warning = "!"

	// Info marks informational lines.
	Info = "i"

	// Launch marks a server that started listening.
	Launch = "🚀"
)
