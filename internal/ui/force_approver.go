package ui

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ForceApprover implements the Approver interface for non-interactive
// approval. It approves immediately, used when the --force flag is provided.
type ForceApprover struct {
	output io.Writer
}

// NewForceApprover creates a new ForceApprover writing to stderr.
func NewForceApprover() Approver {
	return &ForceApprover{output: os.Stderr}
}

// RequestApproval approves the overwrite without prompting, noting it on
// the output so the action is visible in logs.
func (a *ForceApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(a.output, "Overwriting existing configuration files in %s (--force).\n", target)
	return true, nil
}

// Verify ForceApprover implements the Approver interface at compile time
var _ Approver = (*ForceApprover)(nil)
