package pgiamauth

import "context"

// Connection is an established database connection as seen by provider
// callers. *pgx.Conn satisfies it; test doubles implement it directly.
type Connection interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close terminates the connection.
	Close(ctx context.Context) error
}

// ConnectionProvider supplies authenticated database connections for a
// particular driver kind and option shape. A driver-level registry probes
// providers with CanHandle and calls GetConnection on the first match, once
// per new physical connection; providers must therefore be safe for
// concurrent use and hold no per-call state.
type ConnectionProvider interface {
	// Identifier returns a stable name used for registration and diagnostics.
	Identifier() string

	// CanHandle reports whether this provider serves the given driver kind
	// and options. It must be side-effect free: returning false leaves the
	// request to other providers.
	CanHandle(driver Driver, options ConnectionOptions) bool

	// GetConnection validates the options, obtains credentials, and opens a
	// new connection. Failures are reported as one of the typed errors in
	// this package so callers can distinguish misconfiguration from
	// credential issuance and database failures. Providers never retry
	// internally; retry policy belongs to the caller.
	GetConnection(ctx context.Context, driver Driver, options ConnectionOptions) (Connection, error)

	// ModifiesSecurityContext reports whether obtaining a connection mutates
	// ambient process security state (credentials files, signal handlers,
	// global auth configuration). Providers that merely present a credential
	// on the wire return false.
	ModifiesSecurityContext(driver Driver, options ConnectionOptions) bool
}
