package chargeauth

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gridwatt/chargeauth/store"
)

// UserSession is the in-memory projection of a durable session row: who the
// token belongs to, with what role, until when. It is an immutable value;
// any change replaces the cache entry wholesale.
type UserSession struct {
	CustomerID int64
	Role       Role
	ExpiresAt  time.Time
}

// Anonymous reports whether this is the guest session (no customer).
func (s UserSession) Anonymous() bool { return s.CustomerID == 0 }

// Expired reports whether the session's absolute expiration has passed.
func (s UserSession) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// parseUserSession rebuilds the in-memory projection from a cached or stored
// session. An access-rights string that fails to parse falls back to
// RoleUser.
func parseUserSession(s store.UserSession) UserSession {
	return UserSession{
		CustomerID: s.CustomerID,
		Role:       ParseRole(s.AccessRights),
		ExpiresAt:  s.ExpirationDate,
	}
}

// NewSessionToken generates an opaque session token: a random UUID with the
// dashes stripped, leaving 32 alphanumeric characters.
func NewSessionToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
