package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/camholmes12/pgiamauth/internal/cli"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pgiamauth.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(pgiamauth.ExitCodeForError(err))
	}
}
