package token

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// CloudSQLLoginScope is the OAuth scope for Cloud SQL IAM database login.
// An access token carrying it is accepted as the password for a Cloud SQL
// IAM database user when the instance has IAM authentication enabled.
const CloudSQLLoginScope = "https://www.googleapis.com/auth/sqlservice.login"

var _ pgiamauth.TokenGenerator = (*GoogleGenerator)(nil)

// GoogleGenerator mints OAuth access tokens for Cloud SQL for PostgreSQL.
// The token source caches and refreshes underneath, so GenerateToken stays
// cheap between refresh boundaries.
type GoogleGenerator struct {
	source oauth2.TokenSource
}

// NewGoogleGenerator creates a generator around an arbitrary token source.
func NewGoogleGenerator(source oauth2.TokenSource) *GoogleGenerator {
	return &GoogleGenerator{source: source}
}

// NewDefaultGoogleGenerator creates a generator using Application Default
// Credentials (GOOGLE_APPLICATION_CREDENTIALS, gcloud config, or the GCE
// metadata server), requesting the Cloud SQL login scope.
//
// The context is captured by the underlying token source and governs later
// refresh calls; pass one that outlives the generator.
func NewDefaultGoogleGenerator(ctx context.Context) (*GoogleGenerator, error) {
	source, err := google.DefaultTokenSource(ctx, CloudSQLLoginScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load Google application default credentials: %w", err)
	}
	return NewGoogleGenerator(source), nil
}

// GenerateToken returns an access token usable as the connection password.
func (g *GoogleGenerator) GenerateToken(ctx context.Context, identity pgiamauth.ConnectionIdentity) (string, error) {
	if identity.Username == "" {
		return "", fmt.Errorf("cloud SQL IAM auth requires a database username")
	}

	tok, err := g.source.Token()
	if err != nil {
		return "", fmt.Errorf("google token acquisition failed: %w", err)
	}
	return tok.AccessToken, nil
}

// String returns a human-readable description of the generator.
func (g *GoogleGenerator) String() string {
	return "GoogleGenerator(application default credentials)"
}
