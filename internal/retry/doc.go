// Package retry provides exponential backoff with jitter, an error
// classifier that understands the provider's typed errors and PostgreSQL
// error codes, and an executor that ties the two together.
//
// The connection provider itself never retries; a failed GetConnection
// surfaces immediately. This package exists for callers that own a retry
// policy, such as the check command, which probes a database that may
// still be starting up.
//
// # Example Usage
//
//	classifier := retry.NewErrorClassifier()
//	strategy := retry.NewExponentialBackoff(3)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return probeDatabase(ctx)
//	})
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to
// create independent configurations per goroutine.
package retry
