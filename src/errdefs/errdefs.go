// Package errdefs holds the error kinds shared by loading, planning and rendering.
package errdefs

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates data or settings that cannot be plotted
// (empty or mismatched series, non-finite samples, bad limits, zero divisors, malformed logs).
var ErrInvalidInput = errors.New("invalid input")

// ErrIO indicates a file that could not be read or written.
var ErrIO = errors.New("i/o error")

// Invalidf returns an error matching ErrInvalidInput.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IOError wraps err so that both errors.Is(err, ErrIO) and checks against the underlying
// *fs.PathError keep working.
func IOError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
