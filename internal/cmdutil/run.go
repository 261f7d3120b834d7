// internal/cmdutil/run.go
package cmdutil

import (
	"context"

	"github.com/pkg/errors"

	"readfix/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2
	ExitFailure   = 3
	ExitCancelled = 130
)

// ExitCode maps the error of a finished run to the process exit code.
// usage tells whether err came from the command line rather than the run.
func ExitCode(ctx context.Context, err error, usage bool) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return ExitCancelled
	case writers.IsBrokenPipe(err):
		return ExitOK
	case usage:
		return ExitUsage
	}
	return ExitFailure
}
