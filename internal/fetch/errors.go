package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for resource fetch operations.
var (
	// ErrNotFound means the resource is confirmed absent. It is memoized and
	// never retried.
	ErrNotFound = errors.New("fetch: resource not found")
	// ErrTransient covers network errors, malformed payloads, and non-404
	// failure statuses. Transient failures are retried with backoff.
	ErrTransient = errors.New("fetch: transient failure")
)

// Error wraps an underlying error with the resource path it occurred on.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// transientf builds a transient error with context.
func transientf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransient, fmt.Sprintf(format, args...))
}
