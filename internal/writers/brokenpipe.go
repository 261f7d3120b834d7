package writers

import (
	"io"
	"syscall"

	"github.com/pkg/errors"
)

// IsBrokenPipe reports whether err means the reader went away, as when the
// output is piped into `head`.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

// IgnoreBrokenPipe returns nil for broken-pipe errors and err otherwise.
func IgnoreBrokenPipe(err error) error {
	if IsBrokenPipe(err) {
		return nil
	}
	return err
}
