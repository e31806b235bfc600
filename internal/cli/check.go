package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/camholmes12/pgiamauth/internal/retry"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify IAM authentication against the database",
	Long: `Check opens a pooled connection using a freshly minted token and runs
a probe query, proving that the whole chain works: URL parsing, token
acquisition, and the database accepting the token as a password.

Transient connection failures (server still starting up, connection
refused, too many connections) are retried with exponential backoff
inside the --timeout budget. Configuration mistakes and token
acquisition failures fail immediately; retrying them cannot help.

Examples:
  # Probe an RDS instance
  pgiamauth check --url jdbc:postgresql://db.example.com:5432/app -U app --region us-east-1

  # Wait up to 5 minutes for a database that is still provisioning
  pgiamauth check --timeout 5m --retries -1`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var (
	checkFlags   connectionFlags
	checkTimeout time.Duration
	checkRetries int
)

func init() {
	rootCmd.AddCommand(checkCmd)
	registerConnectionFlags(checkCmd, &checkFlags)
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 60*time.Second,
		"Overall budget for the check, including retries (or timeout in pgiamauth.yaml)")
	checkCmd.Flags().IntVar(&checkRetries, "retries", 3,
		"Retry budget for transient connection failures (-1 retries until the timeout)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	st, err := buildStack(cmd.Context(), cmd, &checkFlags, fileCfg)
	if err != nil {
		return err
	}

	timeout, err := resolveTimeout(cmd, fileCfg, checkTimeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	executor := retry.NewExecutor(
		retry.NewErrorClassifier(),
		retry.NewExponentialBackoff(checkRetries,
			retry.WithInitialDelay(500*time.Millisecond),
			retry.WithMaxDelay(5*time.Second),
		),
	).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		st.logger.Info("attempt %d failed (%v), retrying in %s", attempt+1, err, delay.Round(time.Millisecond))
	})

	var currentUser, serverVersion string
	err = executor.Execute(ctx, func(ctx context.Context) error {
		pool, err := st.provider.NewPool(ctx, pgiamauth.DriverPostgres, st.options)
		if err != nil {
			return err
		}
		defer pool.Close()
		return pool.QueryRow(ctx, "select current_user, version()").Scan(&currentUser, &serverVersion)
	})
	if err != nil {
		return err
	}

	fmt.Printf("connection ok: authenticated as %s\n", currentUser)
	st.logger.Verbose("server: %s", serverVersion)
	return nil
}
