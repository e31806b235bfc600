package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/camholmes12/pgiamauth/internal/config"
	"github.com/camholmes12/pgiamauth/internal/scaffold"
	"github.com/camholmes12/pgiamauth/internal/tui"
	"github.com/camholmes12/pgiamauth/internal/tui/wizards"
	"github.com/camholmes12/pgiamauth/internal/ui"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold pgiamauth configuration files",
	Long: `Init writes starter configuration into a project directory:
- pgiamauth.yaml with the connection values and token provider
- .env.example documenting the credential environment variables

On an interactive terminal a wizard collects the values and can test
the connection with a freshly minted token before anything is written.
With --no-input (or when stdin is not a terminal) the values come from
flags and environment variables instead; missing values are left empty
in the generated file for you to fill in.

Existing configuration files are never overwritten silently: pass
--force or confirm the prompt.

Examples:
  # Interactive setup in the current directory
  pgiamauth init

  # Non-interactive RDS setup
  pgiamauth init ./svc --no-input \
    --url jdbc:postgresql://db.example.com:5432/app -U app --region us-east-1

  # Azure with service principal IDs
  pgiamauth init --no-input --provider azure \
    --url jdbc:postgresql://srv.postgres.database.azure.com:5432/app \
    -U alice@example.com --azure-tenant-id 11111111-2222-3333-4444-555555555555`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initFlags   connectionFlags
	initForce   bool
	initNoInput bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initFlags.provider, "provider", "",
		"Token provider: rds|azure|google (default: rds, or $PGIAMAUTH_PROVIDER)")
	initCmd.Flags().StringVar(&initFlags.url, "url", "",
		"Database URL in JDBC form (or $PGIAMAUTH_URL)")
	initCmd.Flags().StringVarP(&initFlags.user, "user", "U", "",
		"Database user the token is minted for (or $PGIAMAUTH_USER)")
	initCmd.Flags().StringVar(&initFlags.region, "region", "",
		"Cloud region hosting the database (or $PGIAMAUTH_REGION, $AWS_REGION)")
	initCmd.Flags().StringVar(&initFlags.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	initCmd.Flags().StringVar(&initFlags.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	initCmd.Flags().BoolVar(&initForce, "force", false,
		"Overwrite existing configuration files without prompting")
	initCmd.Flags().BoolVar(&initNoInput, "no-input", false,
		"Skip the interactive wizard and take values from flags and environment")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}
	verbose := getVerboseFlag(cmd)

	available, err := scaffold.ListProviders()
	if err != nil {
		return fmt.Errorf("failed to list providers: %w", err)
	}

	var (
		providerName string
		values       map[string]string
		tested       bool
	)

	if tui.IsInteractive() && !initNoInput {
		result, err := wizards.RunSetupWizard()
		if err != nil {
			return fmt.Errorf("setup wizard failed: %w", err)
		}
		if result.Cancelled {
			fmt.Println("Cancelled.")
			return nil
		}
		providerName = result.Values.Provider
		tested = result.Tested
		values = map[string]string{
			"URL":       result.Values.URL(),
			"USER":      result.Values.User,
			"REGION":    result.Values.Region,
			"TENANT_ID": result.Values.TenantID,
			"CLIENT_ID": result.Values.ClientID,
		}
	} else {
		providerName = resolveProviderName(&initFlags, nil)
		options := resolveOptions(&initFlags, nil)
		values = map[string]string{
			"URL":       options[pgiamauth.OptionURL],
			"USER":      options[pgiamauth.OptionUser],
			"REGION":    options[pgiamauth.OptionRegion],
			"TENANT_ID": firstNonEmpty(initFlags.azureTenantID, os.Getenv("AZURE_TENANT_ID")),
			"CLIENT_ID": firstNonEmpty(initFlags.azureClientID, os.Getenv("AZURE_CLIENT_ID")),
		}
	}

	valid := false
	for _, p := range available {
		if p == providerName {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: unsupported token provider %q (expected %s)",
			pgiamauth.ErrInvalidConfig, providerName, strings.Join(available, ", "))
	}

	scaffolder := scaffold.NewScaffolder(verbose)

	overwrite := false
	existing, err := scaffolder.ExistingFiles(providerName, targetDir)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		var approver ui.Approver
		switch {
		case initForce:
			approver = ui.NewForceApprover()
		case tui.IsInteractive() && !initNoInput:
			approver = ui.NewInteractiveApprover()
		default:
			return fmt.Errorf("refusing to overwrite %s in %s; use --force",
				strings.Join(existing, ", "), targetDir)
		}

		approved, err := approver.RequestApproval(cmd.Context(), targetDir)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Println("Cancelled.")
			return nil
		}
		overwrite = true
	}

	written, err := scaffolder.WriteFiles(providerName, targetDir, values, overwrite)
	if err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n✓ Configuration initialized for %s in '%s'\n\n", providerName, targetDir)
	fmt.Fprintln(os.Stderr, "Created:")
	for _, f := range written {
		fmt.Fprintf(os.Stderr, "  %s\n", f)
	}
	if tested {
		fmt.Fprintln(os.Stderr, "\nConnection verified with a freshly minted IAM token.")
	}

	fmt.Fprintln(os.Stderr, "\nNext steps:")
	if targetDir != "." {
		fmt.Fprintf(os.Stderr, "  cd %s\n", targetDir)
	}
	if values["URL"] == "" || values["USER"] == "" {
		fmt.Fprintf(os.Stderr, "  # Fill in the connection values in %s\n", config.ConfigFileName)
	}
	fmt.Fprintln(os.Stderr, "  pgiamauth check")

	return nil
}
