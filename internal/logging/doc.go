// Package logging provides concrete implementations of the pgiamauth.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes formatted messages to stderr (or a supplied writer)
//   - NullLogger: discards all messages (the default for library components)
//
// All logger implementations are safe for concurrent use by multiple
// goroutines, and none of them ever receive token material: callers log
// connection identities and timings only.
package logging
