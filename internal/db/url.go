package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// ServerURL is the destination portion of a JDBC-style PostgreSQL URL.
type ServerURL struct {
	Host string
	Port string

	// Rest is everything after the first slash, usually the database name
	// plus optional query parameters. It is carried through to the driver
	// without interpretation.
	Rest string
}

// ConnString renders the target as a URL the pgx driver understands.
// Rest is appended verbatim so pre-encoded query parameters survive.
// Credentials are deliberately absent; they are applied to the parsed
// config afterwards and never travel inside a URL.
func (u ServerURL) ConnString() string {
	return "postgres://" + u.Host + ":" + u.Port + "/" + u.Rest
}

// ParseServerURL extracts host and port from a URL of the form
//
//	jdbc:postgresql://<host>[:<port>]/<rest>
//
// The prefix must match exactly. The section between the prefix and the
// first '/' is split on ':' into a host and an optional port; a missing
// port defaults to 5432. Anything else, including bracketed IPv6
// literals, an empty host, or a port that is not a number between 1 and
// 65535, yields a *pgiamauth.URLParseError. No network access and no
// credential material is involved at this stage.
func ParseServerURL(rawURL string) (ServerURL, error) {
	if !strings.HasPrefix(rawURL, pgiamauth.PostgresURLPrefix) {
		return ServerURL{}, parseError(rawURL, fmt.Sprintf("url must start with %q", pgiamauth.PostgresURLPrefix))
	}

	remainder := rawURL[len(pgiamauth.PostgresURLPrefix):]
	slash := strings.Index(remainder, "/")
	if slash < 0 {
		return ServerURL{}, parseError(rawURL, "missing '/' after the host section")
	}

	authority := remainder[:slash]
	rest := remainder[slash+1:]

	host := authority
	port := pgiamauth.DefaultPostgresPort

	parts := strings.Split(authority, ":")
	switch len(parts) {
	case 1:
		host = parts[0]
	case 2:
		host, port = parts[0], parts[1]
		if port == "" {
			return ServerURL{}, parseError(rawURL, "port must not be empty")
		}
		if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
			return ServerURL{}, parseError(rawURL, fmt.Sprintf("invalid port %q", port))
		}
	default:
		return ServerURL{}, parseError(rawURL, "host section must be host or host:port")
	}

	if host == "" {
		return ServerURL{}, parseError(rawURL, "host must not be empty")
	}

	return ServerURL{Host: host, Port: port, Rest: rest}, nil
}

func parseError(rawURL, reason string) *pgiamauth.URLParseError {
	return &pgiamauth.URLParseError{URL: rawURL, Reason: reason}
}
