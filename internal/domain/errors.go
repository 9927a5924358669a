package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any store call.
	ErrValidation = errors.New("validation failed")
	// ErrInvariant marks an operation that would break a data invariant.
	ErrInvariant = errors.New("invariant violation")
	// ErrNotFound marks a missing document.
	ErrNotFound = errors.New("not found")
	// ErrPrivateLocked marks access to the private view without the unlock signal.
	ErrPrivateLocked = errors.New("private folder is locked")
)

// classified keeps the sentinel for errors.Is while showing only the message.
type classified struct {
	kind error
	msg  string
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.kind }

// Validationf builds a user-facing validation error.
func Validationf(format string, args ...any) error {
	return &classified{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Invariantf builds a user-facing invariant-violation error.
func Invariantf(format string, args ...any) error {
	return &classified{kind: ErrInvariant, msg: fmt.Sprintf(format, args...)}
}
