//go:build conntest

package conntest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/camholmes12/pgiamauth/internal/db"
	"github.com/camholmes12/pgiamauth/internal/testinfra"
	"github.com/camholmes12/pgiamauth/internal/token"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

var (
	plainContainer *testinfra.PostgresContainer
	tlsContainer   *testinfra.PostgresContainer
	certPaths      *testinfra.CertPaths
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	bundle, err := testinfra.GenerateCertBundle([]string{"localhost", "127.0.0.1"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate certs: %v\n", err)
		os.Exit(1)
	}

	dir, err := os.MkdirTemp("", "pgiamauth-conntest-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	paths, err := bundle.WriteToDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write certs: %v\n", err)
		os.Exit(1)
	}
	certPaths = paths

	plain, err := testinfra.StartPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres: %v\n", err)
		os.Exit(1)
	}
	plainContainer = plain

	tls, err := testinfra.StartTLSPostgres(ctx, certPaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start TLS postgres: %v\n", err)
		plainContainer.Terminate(ctx) //nolint:errcheck
		os.Exit(1)
	}
	tlsContainer = tls

	code := m.Run()

	plainContainer.Terminate(ctx) //nolint:errcheck
	tlsContainer.Terminate(ctx)   //nolint:errcheck
	os.RemoveAll(dir)
	os.Exit(code)
}

// serverURL renders a container's address in the url option format, with an
// optional query string appended.
func serverURL(t *testing.T, ctr *testinfra.PostgresContainer, query string) string {
	t.Helper()

	cfg, err := pgx.ParseConfig(ctr.ConnString)
	if err != nil {
		t.Fatalf("parse container conn string: %v", err)
	}

	url := fmt.Sprintf("jdbc:postgresql://%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	if query != "" {
		url += "?" + query
	}
	return url
}

func connectionOptions(url string) pgiamauth.ConnectionOptions {
	return pgiamauth.ConnectionOptions{
		pgiamauth.OptionURL:     url,
		pgiamauth.OptionUser:    testinfra.PostgresUser,
		pgiamauth.OptionRegion:  "us-east-1",
		pgiamauth.OptionIAMAuth: "true",
	}
}

// newStaticProvider builds a provider whose generator always returns tok.
// With tok set to the container password, the full token path runs against a
// password-auth server.
func newStaticProvider(t *testing.T, tok string) *db.PostgresProvider {
	t.Helper()

	gen, err := token.NewStaticGenerator(tok)
	if err != nil {
		t.Fatalf("static generator: %v", err)
	}
	return db.NewPostgresProvider(token.NewCache(gen))
}
