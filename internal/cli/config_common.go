package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/camholmes12/pgiamauth/internal/config"
	"github.com/camholmes12/pgiamauth/internal/db"
	"github.com/camholmes12/pgiamauth/internal/logging"
	"github.com/camholmes12/pgiamauth/internal/token"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// connectionFlags holds the connection-related flag values shared by the
// token and check commands.
type connectionFlags struct {
	url           string
	user          string
	region        string
	provider      string
	azureTenantID string
	azureClientID string
	ttl           time.Duration
}

// registerConnectionFlags wires the shared connection flags onto a command.
func registerConnectionFlags(cmd *cobra.Command, flags *connectionFlags) {
	cmd.Flags().StringVar(&flags.url, "url", "",
		"Database URL in JDBC form (or $PGIAMAUTH_URL).\n"+
			"Example: jdbc:postgresql://mydb.cluster-ro.us-east-1.rds.amazonaws.com:5432/app")
	cmd.Flags().StringVarP(&flags.user, "user", "U", "",
		"Database user the token is minted for (or $PGIAMAUTH_USER)")
	cmd.Flags().StringVar(&flags.region, "region", "",
		"Cloud region hosting the database (or $PGIAMAUTH_REGION, $AWS_REGION)")
	cmd.Flags().StringVar(&flags.provider, "provider", "",
		"Token provider: rds|azure|google (default: rds, or $PGIAMAUTH_PROVIDER)")
	cmd.Flags().StringVar(&flags.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&flags.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	cmd.Flags().DurationVar(&flags.ttl, "ttl", 0,
		"Token cache TTL (default 11m, or cache.ttl in pgiamauth.yaml)")
}

// loadFileConfig loads .env into the environment and reads pgiamauth.yaml
// from the working directory. A missing file is not an error.
func loadFileConfig() (*config.FileConfig, error) {
	_ = godotenv.Load()

	fileCfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return fileCfg, nil
}

// firstNonEmpty returns the first value that is not the empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveOptions merges flags, environment and pgiamauth.yaml into the
// option map the provider consumes. Precedence: flags > environment >
// pgiamauth.yaml. iamAuth is always requested; this tool has no password
// path. Missing values stay absent so the provider reports them as
// ConfigErrors with the exact option name.
func resolveOptions(flags *connectionFlags, fileCfg *config.FileConfig) pgiamauth.ConnectionOptions {
	options := pgiamauth.ConnectionOptions{pgiamauth.OptionIAMAuth: "true"}

	url := firstNonEmpty(flags.url, os.Getenv("PGIAMAUTH_URL"))
	user := firstNonEmpty(flags.user, os.Getenv("PGIAMAUTH_USER"))
	region := firstNonEmpty(flags.region, os.Getenv("PGIAMAUTH_REGION"), os.Getenv("AWS_REGION"))

	if fileCfg != nil {
		url = firstNonEmpty(url, fileCfg.Connection.URL)
		user = firstNonEmpty(user, fileCfg.Connection.User)
		region = firstNonEmpty(region, fileCfg.Connection.Region)
	}

	if url != "" {
		options[pgiamauth.OptionURL] = url
	}
	if user != "" {
		options[pgiamauth.OptionUser] = user
	}
	if region != "" {
		options[pgiamauth.OptionRegion] = region
	}
	return options
}

// resolveProviderName picks the token provider, defaulting to rds.
func resolveProviderName(flags *connectionFlags, fileCfg *config.FileConfig) string {
	name := firstNonEmpty(flags.provider, os.Getenv("PGIAMAUTH_PROVIDER"))
	if fileCfg != nil {
		name = firstNonEmpty(name, fileCfg.Provider)
	}
	return firstNonEmpty(name, "rds")
}

// buildGenerator constructs the token generator for the named provider.
//
// For azure, a service principal is used when tenant ID, client ID and
// AZURE_CLIENT_SECRET are all available; otherwise the default Azure
// credential chain (managed identity, az login, workload identity) takes
// over.
func buildGenerator(ctx context.Context, name string, flags *connectionFlags, fileCfg *config.FileConfig) (pgiamauth.TokenGenerator, error) {
	switch name {
	case "rds":
		return token.NewDefaultRDSGenerator(ctx)
	case "azure":
		tenantID := firstNonEmpty(flags.azureTenantID, os.Getenv("AZURE_TENANT_ID"))
		clientID := firstNonEmpty(flags.azureClientID, os.Getenv("AZURE_CLIENT_ID"))
		if fileCfg != nil {
			tenantID = firstNonEmpty(tenantID, fileCfg.Azure.TenantID)
			clientID = firstNonEmpty(clientID, fileCfg.Azure.ClientID)
		}
		if secret := os.Getenv("AZURE_CLIENT_SECRET"); secret != "" && tenantID != "" && clientID != "" {
			return token.NewAzureServicePrincipalGenerator(tenantID, clientID, secret)
		}
		return token.NewAzureDefaultGenerator()
	case "google":
		return token.NewDefaultGoogleGenerator(ctx)
	default:
		return nil, fmt.Errorf("%w: unsupported token provider %q (expected rds, azure or google)", pgiamauth.ErrInvalidConfig, name)
	}
}

// resolveTTL returns the cache TTL: flag, then pgiamauth.yaml, then the
// default.
func resolveTTL(flags *connectionFlags, fileCfg *config.FileConfig) (time.Duration, error) {
	if flags.ttl > 0 {
		return flags.ttl, nil
	}
	if fileCfg != nil && fileCfg.Cache.TTL != "" {
		ttl, err := time.ParseDuration(fileCfg.Cache.TTL)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid cache.ttl in %s: %v", pgiamauth.ErrInvalidConfig, config.ConfigFileName, err)
		}
		if ttl <= 0 {
			return 0, fmt.Errorf("%w: cache.ttl in %s must be positive", pgiamauth.ErrInvalidConfig, config.ConfigFileName)
		}
		return ttl, nil
	}
	return pgiamauth.DefaultTokenTTL, nil
}

// resolveTimeout returns the effective timeout, preferring pgiamauth.yaml
// when the flag was not set explicitly.
func resolveTimeout(cmd *cobra.Command, fileCfg *config.FileConfig, flagTimeout time.Duration) (time.Duration, error) {
	if fileCfg != nil && fileCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid timeout in %s: %v", pgiamauth.ErrInvalidConfig, config.ConfigFileName, err)
		}
		return parsed, nil
	}
	return flagTimeout, nil
}

// stack bundles the wired pieces a command works with.
type stack struct {
	options  pgiamauth.ConnectionOptions
	cache    *token.Cache
	provider *db.PostgresProvider
	logger   pgiamauth.Logger
}

// buildStack resolves configuration and wires generator, cache and
// provider together. It performs no network access; the first token is
// minted lazily on use.
func buildStack(ctx context.Context, cmd *cobra.Command, flags *connectionFlags, fileCfg *config.FileConfig) (*stack, error) {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	options := resolveOptions(flags, fileCfg)

	providerName := resolveProviderName(flags, fileCfg)
	generator, err := buildGenerator(ctx, providerName, flags, fileCfg)
	if err != nil {
		return nil, err
	}

	ttl, err := resolveTTL(flags, fileCfg)
	if err != nil {
		return nil, err
	}

	logger.Verbose("token provider: %s, cache ttl: %s", generator, ttl)

	cache := token.NewCache(generator, token.WithTTL(ttl), token.WithLogger(logger))
	provider := db.NewPostgresProvider(cache, db.WithLogger(logger))

	return &stack{
		options:  options,
		cache:    cache,
		provider: provider,
		logger:   logger,
	}, nil
}
