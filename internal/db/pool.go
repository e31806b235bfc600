package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// PoolConfig builds a pgxpool configuration for the given options. The
// returned config carries a BeforeConnect hook that fetches a token from
// the cache each time the pool opens a physical connection, so pools
// outlive any single token. Sizing is left to the caller.
//
// Validation and parse failures return the same error kinds as
// GetConnection.
func (p *PostgresProvider) PoolConfig(driver pgiamauth.Driver, options pgiamauth.ConnectionOptions) (*pgxpool.Config, error) {
	req, err := resolveRequest(options)
	if err != nil {
		return nil, err
	}
	return p.poolConfig(req)
}

func (p *PostgresProvider) poolConfig(req request) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(req.target.ConnString())
	if err != nil {
		return nil, &pgiamauth.URLParseError{URL: req.rawURL, Reason: fmt.Sprintf("driver rejected url: %v", err)}
	}

	poolCfg.ConnConfig.User = req.identity.Username
	poolCfg.BeforeConnect = func(ctx context.Context, cfg *pgx.ConnConfig) error {
		token, err := p.tokens.Get(ctx, req.identity)
		if err != nil {
			return err
		}
		cfg.Password = token
		return nil
	}
	return poolCfg, nil
}

// NewPool opens a connection pool and verifies it with a ping so that
// authentication and network problems surface immediately rather than on
// first use.
func (p *PostgresProvider) NewPool(ctx context.Context, driver pgiamauth.Driver, options pgiamauth.ConnectionOptions) (*pgxpool.Pool, error) {
	req, err := resolveRequest(options)
	if err != nil {
		return nil, err
	}

	poolCfg, err := p.poolConfig(req)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &pgiamauth.ConnectionError{Host: req.target.Host, Port: req.target.Port, Err: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		if pgiamauth.IsAuthError(err) {
			return nil, err
		}
		return nil, &pgiamauth.ConnectionError{Host: req.target.Host, Port: req.target.Port, Err: err}
	}

	p.logger.Verbose("connection pool ready for %s", req.identity)
	return pool, nil
}
