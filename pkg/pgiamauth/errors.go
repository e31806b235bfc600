package pgiamauth

import (
	"errors"
	"fmt"
	"strings"
)

// The four error kinds a provider can return. Each is a distinct type so
// callers can branch with errors.As (or the IsX helpers below) and decide
// whether to fail fast, retry at their own layer, or escalate:
//
//	conn, err := provider.GetConnection(ctx, driver, opts)
//	switch {
//	case pgiamauth.IsConfigError(err), pgiamauth.IsURLParseError(err):
//	    // misconfiguration: fix the options, do not retry
//	case pgiamauth.IsAuthError(err):
//	    // credentials or identity service trouble: surface it
//	case pgiamauth.IsConnectionError(err):
//	    // database rejected us after a token was issued: the cause
//	    // decides whether waiting can help
//	}

// Sentinel errors for conditions outside the four provider error kinds.
var (
	// ErrInvalidConfig indicates configuration that is present but
	// unusable, such as an unknown token provider name or a malformed
	// duration. Wrap it with fmt.Errorf("%w: ...", ErrInvalidConfig).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUsage indicates misuse of the command line.
	ErrUsage = errors.New("usage error")
)

// ConfigError reports a required connection option that is absent.
// It is raised before any network I/O and has no side effects.
type ConfigError struct {
	// Option is the missing key ("url", "user" or "region").
	Option string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required connection option %q", e.Option)
}

// URLParseError reports a database URL that does not match the
// jdbc:postgresql://host[:port]/... grammar. Raised before any network I/O.
type URLParseError struct {
	URL    string
	Reason string
}

func (e *URLParseError) Error() string {
	return fmt.Sprintf("cannot parse database url %q: %s", e.URL, e.Reason)
}

// AuthError reports that the identity service failed to issue a token for an
// identity. The underlying cause is preserved for errors.Is/As chains. There
// is no fallback to password authentication.
type AuthError struct {
	Identity ConnectionIdentity
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token generation failed for %s: %v", e.Identity, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ConnectionError reports that the database rejected or failed the connection
// attempt after a token was successfully obtained. The driver-level cause is
// preserved.
type ConnectionError struct {
	Host string
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s:%s failed: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsURLParseError reports whether err is or wraps a *URLParseError.
func IsURLParseError(err error) bool {
	var target *URLParseError
	return errors.As(err, &target)
}

// IsAuthError reports whether err is or wraps an *AuthError.
func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsConnectionError reports whether err is or wraps a *ConnectionError.
func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// ExitCodeForError returns the process exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for the typed
// errors above, and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case IsConfigError(err), IsURLParseError(err):
		return ExitConfigError
	case IsAuthError(err):
		return ExitAuthError
	case IsConnectionError(err):
		return ExitConnectionError
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	}

	// Errors surfaced from below the taxonomy (flag parsing, pool
	// plumbing, drivers) still deserve a semantic exit code when they
	// read like one.
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "missing required argument") ||
		strings.Contains(errStr, "invalid argument") {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
