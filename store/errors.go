package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup matches no non-deleted row.
	ErrNotFound = errors.New("store: not found")

	// ErrNoIdentity is returned by Create when the schema declares no
	// identity column to read the generated id from.
	ErrNoIdentity = errors.New("store: schema declares no identity column")

	// ErrNoUpdateKey is returned when no key column has a value, so an
	// UPDATE/DELETE/PURGE cannot be targeted at a row.
	ErrNoUpdateKey = errors.New("store: no update key value present")

	// ErrUniqueViolation is returned when an INSERT breaks a unique
	// constraint. Callers that know the constraint (e.g. customer login)
	// translate it to a domain-specific message.
	ErrUniqueViolation = errors.New("store: unique constraint violation")
)

// OpError is the translated form of a driver error that escaped the retry
// envelope. Transient reports whether the final failure was classified as
// retryable; it is true only when the attempt ceiling was exhausted.
type OpError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *OpError) Error() string {
	if e.Transient {
		return fmt.Sprintf("store: %s: retries exhausted: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// IsTransient reports whether err is an OpError whose final failure was
// connection-level and retryable.
func IsTransient(err error) bool {
	var op *OpError
	return errors.As(err, &op) && op.Transient
}
