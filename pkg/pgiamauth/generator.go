package pgiamauth

import "context"

// TokenGenerator mints a short-lived authentication token for a database
// endpoint. Generators are stateless with respect to tokens: no caching and
// no retries happen at this layer. Caching is owned by the token cache that
// wraps a generator; retry policy, if any, belongs to callers.
//
// Implementations exist for AWS RDS, Azure Database for PostgreSQL, and
// Google Cloud SQL, plus a static generator for tests and local development.
type TokenGenerator interface {
	// GenerateToken calls the identity service and returns a token usable as
	// the connection password for the given identity. The returned token is
	// never logged or persisted by this module.
	GenerateToken(ctx context.Context, identity ConnectionIdentity) (string, error)

	// String describes the generator for diagnostics.
	// Must not include secrets.
	String() string
}
