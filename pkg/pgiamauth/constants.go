package pgiamauth

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Missing option or malformed database URL
	ExitAuthError       = 11 // Identity service failed to issue a token
	ExitConnectionError = 12 // Database rejected or failed the connection
)

const (
	// PostgresURLPrefix is the accepted database URL prefix. URLs not
	// starting with this exact prefix are rejected, including the bare
	// "postgresql://" scheme.
	PostgresURLPrefix = "jdbc:postgresql://"

	// DefaultPostgresPort is assumed when the database URL omits a port.
	DefaultPostgresPort = "5432"

	// DefaultTokenTTL is how long a minted token is served from cache.
	// RDS and Azure database tokens are valid for roughly 15 minutes;
	// serving them for 11 leaves headroom so a cached token is never
	// presented close enough to expiry to die mid-handshake.
	DefaultTokenTTL = 11 * time.Minute
)
