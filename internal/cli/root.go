package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgiamauth",
	Short: "IAM authentication for PostgreSQL connections",
	Long: `pgiamauth connects to PostgreSQL with short-lived cloud IAM tokens
instead of static passwords. It parses JDBC-style database URLs, mints
tokens through AWS RDS, Azure Entra ID or Google Cloud IAM, caches them
so concurrent workers share one generation per identity, and presents
them as the connection password.

Tokens are credentials. Nothing in this tool writes a token to disk,
and stdout receives one only when you ask for it with --show.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or database URL
  11 - Token acquisition failed
  12 - Database connection failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
