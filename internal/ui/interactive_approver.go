package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It asks the user to confirm before existing
// configuration files are overwritten.
type InteractiveApprover struct {
	input  io.Reader
	output io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover reading from
// stdin and prompting on stderr.
func NewInteractiveApprover() Approver {
	return &InteractiveApprover{input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts the user to confirm the overwrite with y or yes.
// Any other answer, including an empty one, declines.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: %s already contains pgiamauth configuration files.\n", target)
	fmt.Fprintln(a.output, "Continuing will overwrite them.")
	fmt.Fprint(a.output, "\nOverwrite? [y/N]: ")

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		line, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case answer := <-inputChan:
		switch strings.ToLower(answer) {
		case "y", "yes":
			fmt.Fprintln(a.output, "✓ Confirmed. Overwriting existing files...")
			return true, nil
		}
		fmt.Fprintln(a.output, "Operation cancelled.")
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ Approver = (*InteractiveApprover)(nil)
