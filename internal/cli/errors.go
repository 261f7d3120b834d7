// internal/cli/errors.go
package cli

import "github.com/pkg/errors"

// usageError marks a bad command line or config file.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func errorf(format string, args ...any) error { return errors.Errorf(format, args...) }

// IsUsage reports whether err came from option checking.
func IsUsage(err error) bool {
	var u usageError
	return errors.As(err, &u)
}
