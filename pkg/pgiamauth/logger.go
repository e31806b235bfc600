package pgiamauth

// Logger is the pluggable logging interface used across the module.
// Implementations must be safe for concurrent use by multiple goroutines.
//
// Log lines may carry identity fields (user, host, port, region) and
// timings; they must never carry token material.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only emitted when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operation.
	Info(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}
