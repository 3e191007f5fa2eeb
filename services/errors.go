package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every service in the match core. Handlers
// map these onto HTTP statuses; the detector uses them to decide what
// is retryable and what is benign.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDependencyMissing = errors.New("referenced profile no longer exists")
)

// TransientError wraps a store or network failure the caller may
// retry. The wrapped error keeps the underlying cause for logs.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable. A nil err returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
