package app

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotInitialized   = errors.New("cart store used outside an initialized session")
	ErrSnapshotNotFound = errors.New("cart snapshot not found")
)

// PersistenceError reports a failed snapshot read or write. The in-memory
// cart stays authoritative; Retryable writes can be retried with Flush.
type PersistenceError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart snapshot %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistenceWarning reports whether err only signals that the latest
// state did not reach storage.
func IsPersistenceWarning(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
