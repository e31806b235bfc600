package ui

import "context"

// Approver decides whether pgiamauth may replace files that already exist.
// Implementations either prompt the user or approve automatically, depending
// on how the command was invoked.
type Approver interface {
	// RequestApproval asks for permission to overwrite target. It returns
	// true when the operation may proceed and false when the user declined.
	// The error is non-nil only when no decision could be made, for example
	// on an input failure or a cancelled context.
	RequestApproval(ctx context.Context, target string) (bool, error)
}
