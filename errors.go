package chargeauth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a request carries no valid session
	// and guest access is not allowed.
	ErrUnauthorized = errors.New("chargeauth: authorization required")

	// ErrSessionExpired is returned when a resolved session has expired or
	// belongs to no customer. The client should log in again.
	ErrSessionExpired = errors.New("chargeauth: session expired, please log in again")

	// ErrInvalidCredentials is returned on an unknown login, unknown RFID
	// tag, or password mismatch. The message is deliberately uniform so a
	// caller cannot distinguish which part failed.
	ErrInvalidCredentials = errors.New("chargeauth: invalid login or password")

	// ErrForbidden is returned when the caller's role lacks the capability
	// for the requested operation.
	ErrForbidden = errors.New("chargeauth: operation not permitted for this role")

	// ErrLoginTaken is returned on registration when the login is already
	// in use.
	ErrLoginTaken = errors.New("chargeauth: login is already taken")

	// ErrDatabase is the generic translation of a permanent or exhausted
	// store failure. The underlying cause is wrapped.
	ErrDatabase = errors.New("chargeauth: database error")
)

// ValidationError reports a malformed field value. Field names the offending
// record field so callers can produce field-level messages.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("chargeauth: invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
