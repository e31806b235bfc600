package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camholmes12/pgiamauth/internal/db"
	testhelpers "github.com/camholmes12/pgiamauth/internal/testing"
	"github.com/camholmes12/pgiamauth/internal/token"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// TestNewPool_AgainstLiveDatabase runs the pool path end to end against a
// real server, using the server password as the issued token.
func TestNewPool_AgainstLiveDatabase(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	ctx := context.Background()

	cfg, err := pgx.ParseConfig(connString)
	require.NoError(t, err)
	if cfg.Password == "" {
		t.Skip("connection string carries no password; the token path needs one")
	}

	dbName := testhelpers.ScratchDBName("pgiamauth_pool")
	cleanup := testhelpers.CreateTestDB(t, connString, dbName)
	t.Cleanup(cleanup)

	gen, err := token.NewStaticGenerator(cfg.Password)
	require.NoError(t, err)
	provider := db.NewPostgresProvider(token.NewCache(gen))

	options := pgiamauth.ConnectionOptions{
		pgiamauth.OptionURL:     fmt.Sprintf("jdbc:postgresql://%s:%d/%s", cfg.Host, cfg.Port, dbName),
		pgiamauth.OptionUser:    cfg.User,
		pgiamauth.OptionRegion:  "us-east-1",
		pgiamauth.OptionIAMAuth: "true",
	}

	pool, err := provider.NewPool(ctx, pgiamauth.DriverPostgres, options)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "CREATE TABLE pool_check (n int)")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "INSERT INTO pool_check SELECT generate_series(1, 5)")
	require.NoError(t, err)

	// Read back through an independent pool so the data provably landed in
	// the scratch database rather than a session-local artifact.
	verify := testhelpers.GetTestPool(t, connString, dbName)
	var count int
	require.NoError(t, verify.QueryRow(ctx, "SELECT count(*) FROM pool_check").Scan(&count))
	assert.Equal(t, 5, count)
}
