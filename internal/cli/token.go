package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/camholmes12/pgiamauth/internal/db"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an IAM authentication token",
	Long: `Token resolves the connection options, asks the configured cloud
provider for a short-lived IAM token and reports the result.

By default the token itself is withheld: a summary goes to stderr and
nothing secret leaves the process. Pass --show to write the raw token to
stdout for piping into another tool:

  PGPASSWORD=$(pgiamauth token --show) psql -h myhost -U app postgres

Connection options resolve from flags, then environment variables
($PGIAMAUTH_URL, $PGIAMAUTH_USER, $PGIAMAUTH_REGION/$AWS_REGION), then
pgiamauth.yaml in the working directory. A .env file is loaded first if
present.

Examples:
  # Summarize without revealing the token
  pgiamauth token --url jdbc:postgresql://db.example.com:5432/app -U app --region us-east-1

  # Pipe the token into psql
  PGPASSWORD=$(pgiamauth token --show) psql -h db.example.com -U app app

  # Azure Entra ID service principal (secret via $AZURE_CLIENT_SECRET)
  pgiamauth token --provider azure --azure-tenant-id <tenant> --azure-client-id <client> --show`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

var (
	tokenFlags connectionFlags
	tokenShow  bool
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	registerConnectionFlags(tokenCmd, &tokenFlags)
	tokenCmd.Flags().BoolVar(&tokenShow, "show", false,
		"Write the raw token to stdout (required for piping; off by default so credentials\n"+
			"do not land in terminals or CI logs by accident)")
}

func runToken(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	st, err := buildStack(ctx, cmd, &tokenFlags, fileCfg)
	if err != nil {
		return err
	}

	identity, err := db.ResolveIdentity(st.options)
	if err != nil {
		return err
	}

	tok, err := st.cache.Get(ctx, identity)
	if err != nil {
		return err
	}

	if !tokenShow {
		fmt.Fprintf(os.Stderr, "token minted for %s (%d bytes); re-run with --show to print it\n", identity, len(tok))
		return nil
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Warning: writing a credential to an interactive terminal; prefer piping this output")
	}
	fmt.Fprintln(os.Stdout, tok)
	return nil
}
