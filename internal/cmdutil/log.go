// internal/cmdutil/log.go
package cmdutil

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the run logger: warnings only when quiet, debug when
// verbose, info otherwise.
func NewLogger(dst io.Writer, quiet, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(dst)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05",
		QuoteEmptyFields: true,
	})
	switch {
	case quiet:
		l.SetLevel(logrus.WarnLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
