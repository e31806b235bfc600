package token

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// AzurePostgresScope is the OAuth scope Entra ID issues database tokens for.
// Azure Database for PostgreSQL accepts tokens with this scope as passwords
// for Entra-enabled database users.
const AzurePostgresScope = "https://ossrdbms-aad.database.windows.net/.default"

var _ pgiamauth.TokenGenerator = (*AzureGenerator)(nil)

// AzureGenerator mints Entra ID access tokens for Azure Database for
// PostgreSQL. The connection identity's region plays no role here: Entra
// tokens are tenant-scoped, not endpoint-scoped.
type AzureGenerator struct {
	credential  azcore.TokenCredential
	description string
}

// NewAzureGenerator creates a generator around an arbitrary Entra credential.
func NewAzureGenerator(credential azcore.TokenCredential, description string) *AzureGenerator {
	return &AzureGenerator{credential: credential, description: description}
}

// NewAzureServicePrincipalGenerator creates a generator authenticating as a
// service principal. This is the usual choice for CI/CD pipelines.
func NewAzureServicePrincipalGenerator(tenantID, clientID, clientSecret string) (*AzureGenerator, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("azure service principal requires tenantID, clientID, and clientSecret")
	}

	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return &AzureGenerator{
		credential:  cred,
		description: fmt.Sprintf("AzureGenerator(service principal, tenant=%s, client=%s)", tenantID, clientID),
	}, nil
}

// NewAzureDefaultGenerator creates a generator using the DefaultAzureCredential
// chain: environment variables, workload identity, managed identity, then the
// Azure CLI for local development.
func NewAzureDefaultGenerator() (*AzureGenerator, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}

	return &AzureGenerator{
		credential:  cred,
		description: "AzureGenerator(default credential chain)",
	}, nil
}

// GenerateToken acquires an Entra ID token usable as the connection password.
func (g *AzureGenerator) GenerateToken(ctx context.Context, identity pgiamauth.ConnectionIdentity) (string, error) {
	if identity.Username == "" {
		return "", fmt.Errorf("azure IAM auth requires a database username")
	}

	accessToken, err := g.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgresScope},
	})
	if err != nil {
		return "", fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return accessToken.Token, nil
}

// String returns a human-readable description of the generator.
// It never includes the client secret.
func (g *AzureGenerator) String() string {
	return g.description
}
