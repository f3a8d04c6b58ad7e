// Package rec turns panics into errors at command and store boundaries.
package rec

import (
	"fmt"
	"runtime/debug"
)

func toError(r any) error {
	switch t := r.(type) {
	case nil:
		return nil
	case error:
		return fmt.Errorf("recovered panic: %w\n%s", t, debug.Stack())
	default:
		return fmt.Errorf("recovered panic: %v\n%s", r, debug.Stack())
	}
}

// Error recovers a panic and assigns it to the provided error.
func Error(err *error) {
	if r := toError(recover()); r != nil {
		*err = r
	}
}

// Wrap recovers a panic, or takes the non-nil error already in err,
// and wraps it with the format and arguments. The error is appended
// to the arguments, so format should end in %w.
func Wrap(err *error, format string, a ...any) {
	if r := toError(recover()); r != nil {
		*err = fmt.Errorf(format, append(a, r)...)
	} else if *err != nil {
		*err = fmt.Errorf(format, append(a, *err)...)
	}
}
