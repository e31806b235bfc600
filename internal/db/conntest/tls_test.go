//go:build conntest

package conntest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camholmes12/pgiamauth/internal/testinfra"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

func TestTLS_Require(t *testing.T) {
	ctx := context.Background()
	provider := newStaticProvider(t, testinfra.PostgresPassword)
	options := connectionOptions(serverURL(t, tlsContainer, "sslmode=require"))

	conn, err := provider.GetConnection(ctx, pgiamauth.DriverPostgres, options)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(ctx) }) //nolint:errcheck

	require.NoError(t, conn.Ping(ctx))
}

func TestTLS_VerifyFull(t *testing.T) {
	ctx := context.Background()
	provider := newStaticProvider(t, testinfra.PostgresPassword)
	options := connectionOptions(serverURL(t, tlsContainer,
		"sslmode=verify-full&sslrootcert="+certPaths.CACert))

	pool, err := provider.NewPool(ctx, pgiamauth.DriverPostgres, options)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	var ssl bool
	err = pool.QueryRow(ctx, "SELECT ssl FROM pg_stat_ssl WHERE pid = pg_backend_pid()").Scan(&ssl)
	if err != nil {
		t.Skipf("pg_stat_ssl not available: %v", err)
	}
	assert.True(t, ssl, "connection should use SSL")
}

func TestTLS_VerifyFullRejectsUnknownCA(t *testing.T) {
	ctx := context.Background()
	provider := newStaticProvider(t, testinfra.PostgresPassword)

	// No sslrootcert, so the throwaway CA cannot be trusted.
	options := connectionOptions(serverURL(t, tlsContainer, "sslmode=verify-full"))

	_, err := provider.GetConnection(ctx, pgiamauth.DriverPostgres, options)
	require.Error(t, err)

	var connErr *pgiamauth.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, err.Error(), "certificate")
}
