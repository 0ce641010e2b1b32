package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the retry envelope shared by all store operations.
type Options struct {
	// MaxAttempts is the attempt ceiling for transient failures,
	// including the first try. Default: 3.
	MaxAttempts int

	// RetryDelay is the fixed sleep between attempts. Default: 500ms.
	RetryDelay time.Duration

	// Logger receives retry warnings and statement debug logs.
	// The zero value discards everything.
	Logger zerolog.Logger
}

func (o *Options) applyDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 500 * time.Millisecond
	}
}

// dialect captures what differs between the wired database drivers: schema
// bootstrap DDL and driver-specific error classification.
type dialect struct {
	name              string
	ddl               []string
	isTransient       func(error) bool
	isUniqueViolation func(error) bool
}

// SQLStore implements Store over database/sql. Construct with NewSQLite or
// NewMySQL; both share the statement builders and differ only by dialect.
type SQLStore struct {
	db    *sql.DB
	d     dialect
	exec  *Executor
	retry *Retrier
	log   zerolog.Logger
}

func newSQLStore(db *sql.DB, d dialect, opts Options) (*SQLStore, error) {
	opts.applyDefaults()

	for _, stmt := range d.ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: failed to create schema: %w", d.name, err)
		}
	}

	return &SQLStore{
		db:    db,
		d:     d,
		exec:  NewExecutor(opts.Logger),
		retry: NewRetrier(opts.MaxAttempts, opts.RetryDelay, d.isTransient, opts.Logger),
		log:   opts.Logger,
	}, nil
}

// CreateSession runs the quota eviction and the insert in one transaction:
// all but the newest quota-1 non-deleted sessions for the customer are
// soft-deleted, then the new row is inserted, leaving exactly quota
// non-deleted rows. Either both statements commit or neither does.
func (s *SQLStore) CreateSession(ctx context.Context, sess *Session, quota int) (int64, error) {
	var id int64
	err := s.retry.Do(ctx, "create session", func(ctx context.Context) error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			if quota > 0 {
				evict := `
				UPDATE sessions SET deleted = ?
				WHERE customer_id = ? AND deleted = ?
				  AND id NOT IN (
					SELECT id FROM (
						SELECT id FROM sessions
						WHERE customer_id = ? AND deleted = ?
						ORDER BY id DESC LIMIT ?
					) AS newest
				  )`
				if _, err := tx.ExecContext(ctx, evict,
					true, sess.CustomerID, false, sess.CustomerID, false, quota-1); err != nil {
					return err
				}
			}

			created, err := s.exec.Create(ctx, tx, sess)
			if err != nil {
				if s.d.isUniqueViolation(err) {
					return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
				}
				return err
			}
			id = created
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetSessionByToken returns the non-deleted session for token, or ErrNotFound.
func (s *SQLStore) GetSessionByToken(ctx context.Context, token string) (*Session, error) {
	var sess Session
	found := false
	err := s.retry.Do(ctx, "get session by token", func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, session_token, customer_id, access_rights, expiration_date, deleted
			FROM sessions
			WHERE session_token = ? AND deleted = ?`, token, false)
		err := row.Scan(&sess.ID, &sess.Token, &sess.CustomerID,
			&sess.AccessRights, &sess.ExpirationDate, &sess.Deleted)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// DeleteSessionByToken soft-deletes the session for token. A token that
// matches no row is a no-op, so the call is idempotent.
func (s *SQLStore) DeleteSessionByToken(ctx context.Context, token string) error {
	return s.retry.Do(ctx, "delete session by token", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			"UPDATE sessions SET deleted = ? WHERE session_token = ? AND deleted = ?",
			true, token, false)
		return err
	})
}

// DeleteAllSessionsForCustomer soft-deletes every session owned by the
// customer. Used on logout-everywhere and account deletion.
func (s *SQLStore) DeleteAllSessionsForCustomer(ctx context.Context, customerID int64) error {
	return s.retry.Do(ctx, "delete sessions for customer", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			"UPDATE sessions SET deleted = ? WHERE customer_id = ? AND deleted = ?",
			true, customerID, false)
		return err
	})
}

// GetCustomerByLogin returns the credential view of the non-deleted customer
// with the given login, or ErrNotFound.
func (s *SQLStore) GetCustomerByLogin(ctx context.Context, login string) (*CustomerAuth, error) {
	return s.customerAuth(ctx, "get customer by login", `
		SELECT id, login, password_hash, access_rights
		FROM customers
		WHERE login = ? AND deleted = ?`, login, false)
}

// GetCustomerByRFID returns the credential view of the customer owning the
// non-deleted RFID tag, or ErrNotFound.
func (s *SQLStore) GetCustomerByRFID(ctx context.Context, tag string) (*CustomerAuth, error) {
	return s.customerAuth(ctx, "get customer by rfid", `
		SELECT c.id, c.login, c.password_hash, c.access_rights
		FROM customers c
		JOIN rfids r ON r.customer_id = c.id AND r.deleted = ?
		WHERE r.tag = ? AND c.deleted = ?`, false, tag, false)
}

func (s *SQLStore) customerAuth(ctx context.Context, op, query string, args ...any) (*CustomerAuth, error) {
	var ca CustomerAuth
	found := false
	err := s.retry.Do(ctx, op, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, query, args...)
		err := row.Scan(&ca.ID, &ca.Login, &ca.PasswordHash, &ca.AccessRights)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &ca, nil
}

// Create inserts rec and returns the generated identity value. Unique
// constraint violations surface as ErrUniqueViolation for callers that
// translate them to domain messages.
func (s *SQLStore) Create(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := s.retry.Do(ctx, "create "+rec.Schema().Table, func(ctx context.Context) error {
		created, err := s.exec.Create(ctx, s.db, rec)
		if err != nil {
			if s.d.isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
			}
			return err
		}
		id = created
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update applies a partial update to the rows matching rec's key fields.
func (s *SQLStore) Update(ctx context.Context, rec Record) error {
	return s.retry.Do(ctx, "update "+rec.Schema().Table, func(ctx context.Context) error {
		return s.exec.Update(ctx, s.db, rec)
	})
}

// Delete soft-deletes the rows matching rec's key fields.
func (s *SQLStore) Delete(ctx context.Context, rec Record) error {
	return s.retry.Do(ctx, "delete "+rec.Schema().Table, func(ctx context.Context) error {
		return s.exec.Delete(ctx, s.db, rec)
	})
}

// Purge hard-deletes the rows matching rec's key fields.
func (s *SQLStore) Purge(ctx context.Context, rec Record) error {
	return s.retry.Do(ctx, "purge "+rec.Schema().Table, func(ctx context.Context) error {
		return s.exec.Purge(ctx, s.db, rec)
	})
}

// DB exposes the underlying pool for callers that need bespoke queries
// (reports, migrations) outside the generic executor.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Close closes the underlying pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// inTx runs fn inside a transaction, rolling back automatically when fn or
// the commit fails.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
