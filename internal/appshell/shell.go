// Package appshell wires a RunContext-style entry point to the process.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"readfix/internal/cmdutil"
)

// Main runs run with the process arguments and exits with its code. SIGINT
// and SIGTERM cancel the context; the run stops at the next bucket.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	argv := os.Args[1:]
	if len(argv) == 0 {
		argv = []string{"--help"}
	}

	code := run(ctx, argv, os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == cmdutil.ExitOK {
		code = cmdutil.ExitCancelled
	}

	stop()
	os.Exit(code)
}
