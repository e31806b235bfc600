package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// ErrorClassifier decides which errors are transient (retryable) versus
// fatal (non-retryable).
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// PostgreSQL error codes for transient conditions
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 40 - Transaction Rollback
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"

	// Class 55 - Object Not In Prerequisite State
	pgCodeLockNotAvailable = "55P03"
)

// ConnectClassifier classifies failures of the connection path.
//
// The provider's typed errors decide the coarse outcome: configuration
// and URL mistakes never heal on their own and are fatal, token
// acquisition failures are fatal (retrying them hammers the credential
// endpoint without new information), and connection failures are judged
// by their cause using PostgreSQL error codes and network heuristics.
type ConnectClassifier struct{}

// NewErrorClassifier creates the classifier used by the check command.
func NewErrorClassifier() *ConnectClassifier {
	return &ConnectClassifier{}
}

// IsTransient reports whether the error is worth retrying.
func (c *ConnectClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if pgiamauth.IsConfigError(err) || pgiamauth.IsURLParseError(err) || pgiamauth.IsAuthError(err) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgError(pgErr)
	}

	if isNetworkError(err) {
		return true
	}

	return matchesTransientPattern(err)
}

// isTransientPgError checks PostgreSQL error codes for transient
// conditions.
func isTransientPgError(pgErr *pgconn.PgError) bool {
	code := pgErr.Code

	// Class 08 - Connection Exception
	if strings.HasPrefix(code, "08") {
		return true
	}

	// Class 53 - Insufficient Resources
	if strings.HasPrefix(code, "53") {
		return true
	}

	// Class 57 - Operator Intervention (admin shutdown, cannot connect
	// now during startup, etc.)
	if strings.HasPrefix(code, "57") {
		return true
	}

	switch code {
	case pgCodeSerializationFailure,
		pgCodeDeadlockDetected,
		pgCodeLockNotAvailable:
		return true
	}

	return false
}

// isNetworkError checks for retryable network-level errors.
func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}
		if opErr.Err != nil {
			if errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
				errors.Is(opErr.Err, syscall.ECONNRESET) ||
				errors.Is(opErr.Err, syscall.ENETUNREACH) ||
				errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
				return true
			}
		}
	}

	return false
}

// matchesTransientPattern falls back to message matching for wrapped
// errors that lost their type on the way up.
func matchesTransientPattern(err error) bool {
	msg := strings.ToLower(err.Error())

	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"connection failure",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"too many connections",
		"server closed the connection",
		"unexpected eof",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

var _ ErrorClassifier = (*ConnectClassifier)(nil)
