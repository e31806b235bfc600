package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/camholmes12/pgiamauth/internal/logging"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// ProviderIdentifier is the stable name under which the Postgres provider
// registers itself.
const ProviderIdentifier = "PostgresIamAuthConnectionProvider"

// TokenSource is the slice of the token cache the provider depends on.
// It is satisfied by *token.Cache.
type TokenSource interface {
	Get(ctx context.Context, identity pgiamauth.ConnectionIdentity) (string, error)
}

// dialFunc performs the terminal connection attempt. Tests swap it out to
// observe the fully assembled config without a live server.
type dialFunc func(ctx context.Context, cfg *pgx.ConnConfig) (pgiamauth.Connection, error)

// PostgresProvider hands out PostgreSQL connections authenticated with
// short-lived IAM tokens instead of static passwords.
//
// Thread-Safety: safe for concurrent use. All mutable state lives in the
// token source, which synchronizes internally.
type PostgresProvider struct {
	tokens TokenSource
	logger pgiamauth.Logger
	dial   dialFunc
}

// ProviderOption configures a PostgresProvider.
type ProviderOption func(*PostgresProvider)

// WithLogger routes the provider's diagnostics to the given logger.
func WithLogger(logger pgiamauth.Logger) ProviderOption {
	return func(p *PostgresProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPostgresProvider creates a provider that resolves tokens through the
// given source, typically a *token.Cache so that concurrent requests for
// the same identity share one generation.
func NewPostgresProvider(tokens TokenSource, opts ...ProviderOption) *PostgresProvider {
	p := &PostgresProvider{
		tokens: tokens,
		logger: logging.NewNullLogger(),
		dial:   defaultDial,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func defaultDial(ctx context.Context, cfg *pgx.ConnConfig) (pgiamauth.Connection, error) {
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Identifier returns the provider's registration name.
func (p *PostgresProvider) Identifier() string {
	return ProviderIdentifier
}

// CanHandle reports whether this provider serves the request: the driver
// must be postgres and the options must ask for IAM authentication. Only
// the iamAuth option is inspected here; full validation happens in
// GetConnection.
func (p *PostgresProvider) CanHandle(driver pgiamauth.Driver, options pgiamauth.ConnectionOptions) bool {
	return driver == pgiamauth.DriverPostgres && options.IAMAuthRequested()
}

// ModifiesSecurityContext reports false. The token is presented as an
// ordinary password during the handshake and the session's security
// context is left untouched.
func (p *PostgresProvider) ModifiesSecurityContext(driver pgiamauth.Driver, options pgiamauth.ConnectionOptions) bool {
	return false
}

// request carries the validated pieces of a connection request.
type request struct {
	target   ServerURL
	identity pgiamauth.ConnectionIdentity
	rawURL   string
}

// ResolveIdentity validates the options and derives the connection
// identity without opening a connection or minting a token. The token
// command uses it to address the cache.
func ResolveIdentity(options pgiamauth.ConnectionOptions) (pgiamauth.ConnectionIdentity, error) {
	req, err := resolveRequest(options)
	if err != nil {
		return pgiamauth.ConnectionIdentity{}, err
	}
	return req.identity, nil
}

// resolveRequest validates the options and parses the URL. It performs no
// network access and never touches the token source, so configuration
// mistakes surface before any credentials are minted.
func resolveRequest(options pgiamauth.ConnectionOptions) (request, error) {
	for _, key := range []string{pgiamauth.OptionURL, pgiamauth.OptionUser, pgiamauth.OptionRegion} {
		if options[key] == "" {
			return request{}, &pgiamauth.ConfigError{Option: key}
		}
	}

	rawURL := options[pgiamauth.OptionURL]
	target, err := ParseServerURL(rawURL)
	if err != nil {
		return request{}, err
	}

	return request{
		target: target,
		identity: pgiamauth.ConnectionIdentity{
			Region:   options[pgiamauth.OptionRegion],
			Host:     target.Host,
			Port:     target.Port,
			Username: options[pgiamauth.OptionUser],
		},
		rawURL: rawURL,
	}, nil
}

// GetConnection opens a single authenticated connection.
//
// The sequence is strict: options are validated and the URL parsed before
// a token is requested, and the token is requested before any dialing, so
// every failure maps to exactly one error kind (ConfigError,
// URLParseError, AuthError, ConnectionError). The method performs no
// retries; retry policy belongs to the caller.
func (p *PostgresProvider) GetConnection(ctx context.Context, driver pgiamauth.Driver, options pgiamauth.ConnectionOptions) (pgiamauth.Connection, error) {
	req, err := resolveRequest(options)
	if err != nil {
		return nil, err
	}

	connCfg, err := pgx.ParseConfig(req.target.ConnString())
	if err != nil {
		return nil, &pgiamauth.URLParseError{URL: req.rawURL, Reason: fmt.Sprintf("driver rejected url: %v", err)}
	}

	token, err := p.tokens.Get(ctx, req.identity)
	if err != nil {
		return nil, err
	}

	connCfg.User = req.identity.Username
	connCfg.Password = token

	p.logger.Verbose("opening connection to %s", req.identity)
	conn, err := p.dial(ctx, connCfg)
	if err != nil {
		return nil, &pgiamauth.ConnectionError{Host: req.target.Host, Port: req.target.Port, Err: err}
	}
	return conn, nil
}

// Compile-time interface check.
var _ pgiamauth.ConnectionProvider = (*PostgresProvider)(nil)
