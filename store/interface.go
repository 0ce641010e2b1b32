package store

import (
	"context"
	"time"
)

// Session is the durable session row. Exactly one non-deleted row may exist
// per token at any time; tokens are never reused while non-deleted.
type Session struct {
	ID             int64
	Token          string
	CustomerID     int64
	AccessRights   string
	ExpirationDate time.Time
	Deleted        bool
}

// sessionSchema maps Session onto the sessions table. The token column is
// capped at 32 characters; longer tokens are truncated on write like any
// other string column.
var sessionSchema = MustSchema("sessions",
	Field{Name: "ID", Column: "id", ID: true, Key: true},
	Field{Name: "Token", Column: "session_token", MaxLen: 32},
	Field{Name: "CustomerID", Column: "customer_id", Immutable: true},
	Field{Name: "AccessRights", Column: "access_rights", MaxLen: 32, Immutable: true},
	Field{Name: "ExpirationDate", Column: "expiration_date"},
	Field{Name: "Deleted", Column: "deleted", SoftDelete: true},
)

// Schema implements Record.
func (s *Session) Schema() *Schema { return sessionSchema }

// FieldValues implements Record. Entries align with sessionSchema.Fields.
func (s *Session) FieldValues() []any {
	return []any{s.ID, s.Token, s.CustomerID, s.AccessRights, s.ExpirationDate, s.Deleted}
}

// IsExpired returns true if the session's absolute expiration has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpirationDate)
}

// UserSession is the ephemeral cache projection of a Session row. It is a
// copy of the parsed type in the root package to avoid circular imports;
// the role string stays raw here and is parsed by the session manager.
type UserSession struct {
	CustomerID     int64
	AccessRights   string
	ExpirationDate time.Time
}

// CustomerAuth is the credential view of a customer row, the only customer
// projection the session core reads. Full customer records flow through the
// generic Record operations instead.
type CustomerAuth struct {
	ID           int64
	Login        string
	PasswordHash string
	AccessRights string
}

// Store is the durable backend consumed by the session manager and exposed
// to the generic persistence callers. Implementations classify failures as
// transient or permanent; transient failures are retried internally up to
// the configured ceiling before surfacing as an *OpError.
type Store interface {
	// CreateSession persists s, enforcing the per-customer session quota in
	// the same transaction: all but the newest quota-1 non-deleted sessions
	// for s.CustomerID are soft-deleted before the insert, so exactly quota
	// non-deleted rows exist afterwards. quota <= 0 means unlimited.
	// Returns the generated session id.
	CreateSession(ctx context.Context, s *Session, quota int) (int64, error)

	// GetSessionByToken returns the non-deleted session for token, or
	// ErrNotFound.
	GetSessionByToken(ctx context.Context, token string) (*Session, error)

	// DeleteSessionByToken soft-deletes the session for token. Deleting an
	// unknown token is a no-op.
	DeleteSessionByToken(ctx context.Context, token string) error

	// DeleteAllSessionsForCustomer soft-deletes every session owned by the
	// customer.
	DeleteAllSessionsForCustomer(ctx context.Context, customerID int64) error

	// GetCustomerByLogin returns the credential view of the non-deleted
	// customer with the given login, or ErrNotFound.
	GetCustomerByLogin(ctx context.Context, login string) (*CustomerAuth, error)

	// GetCustomerByRFID returns the credential view of the customer owning
	// the non-deleted RFID tag, or ErrNotFound.
	GetCustomerByRFID(ctx context.Context, tag string) (*CustomerAuth, error)

	// Create inserts rec and returns the generated identity value.
	Create(ctx context.Context, rec Record) (int64, error)

	// Update applies a partial update: nil fields are left unchanged.
	Update(ctx context.Context, rec Record) error

	// Delete soft-deletes the rows matching rec's key fields.
	Delete(ctx context.Context, rec Record) error

	// Purge hard-deletes the rows matching rec's key fields. Irreversible.
	Purge(ctx context.Context, rec Record) error

	// Close releases the underlying pool.
	Close() error
}
