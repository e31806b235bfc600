package logging

import "github.com/camholmes12/pgiamauth/pkg/pgiamauth"

var _ pgiamauth.Logger = (*NullLogger)(nil)

// NullLogger discards all log messages.
// It is the default logger for library components so that embedding the
// provider never produces output the host application did not ask for.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Verbose is a no-op.
func (l *NullLogger) Verbose(format string, args ...interface{}) {}

// Info is a no-op.
func (l *NullLogger) Info(format string, args ...interface{}) {}

// Error is a no-op.
func (l *NullLogger) Error(format string, args ...interface{}) {}
