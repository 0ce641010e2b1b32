package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoSoftDelete is returned by Delete when the schema has no soft-delete
// column. Such records can only be purged.
var ErrNoSoftDelete = errors.New("store: schema declares no soft-delete column")

// execer is the subset of *sql.DB and *sql.Tx the executor needs, so the same
// statement builders run standalone or inside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Executor turns a Record plus its Schema into parameterized SQL. It holds no
// connection of its own; every call receives the *sql.DB or *sql.Tx to run
// against. Statement text uses ? placeholders, which both wired drivers
// accept.
type Executor struct {
	log zerolog.Logger
}

// NewExecutor creates an Executor logging through log.
func NewExecutor(log zerolog.Logger) *Executor {
	return &Executor{log: log}
}

// Create inserts rec and returns the store-generated identity value.
// Only supplied (non-nil) fields become columns; the identity and soft-delete
// columns are never inserted. String values are truncated to their declared
// maximum length before binding.
func (e *Executor) Create(ctx context.Context, db execer, rec Record) (int64, error) {
	s := rec.Schema()
	if s.idField() == nil {
		return 0, ErrNoIdentity
	}

	vals := rec.FieldValues()
	if len(vals) != len(s.Fields) {
		return 0, fmt.Errorf("store: %s: record supplied %d values for %d fields", s.Table, len(vals), len(s.Fields))
	}

	var cols []string
	var args []any
	for i, f := range s.Fields {
		if f.ID || f.SoftDelete {
			continue
		}
		v, ok := bindValue(vals[i], f.MaxLen)
		if !ok {
			continue
		}
		cols = append(cols, f.Column)
		args = append(args, v)
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("store: %s: no values to insert", s.Table)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Table, strings.Join(cols, ", "), placeholders(len(cols)))

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: %s: read generated id: %w", s.Table, err)
	}
	e.log.Debug().Str("table", s.Table).Int64("id", id).Msg("record created")
	return id, nil
}

// Update applies a partial update: supplied non-key writable fields become
// the SET list, key fields become the WHERE clause. A nil field means "leave
// unchanged", not "set to null". When nothing besides keys is supplied the
// statement is skipped entirely.
func (e *Executor) Update(ctx context.Context, db execer, rec Record) error {
	s := rec.Schema()
	if s.idField() == nil {
		return ErrNoIdentity
	}

	vals := rec.FieldValues()
	if len(vals) != len(s.Fields) {
		return fmt.Errorf("store: %s: record supplied %d values for %d fields", s.Table, len(vals), len(s.Fields))
	}

	var sets []string
	var args []any
	for i, f := range s.Fields {
		if f.ID || f.Key || f.Immutable || f.SoftDelete {
			continue
		}
		v, ok := bindValue(vals[i], f.MaxLen)
		if !ok {
			continue
		}
		sets = append(sets, f.Column+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		e.log.Debug().Str("table", s.Table).Msg("update skipped, no fields supplied")
		return nil
	}

	where, whereArgs, err := keyClause(s, vals)
	if err != nil {
		return err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", s.Table, strings.Join(sets, ", "), where)
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// Delete flips the schema's soft-delete column for the rows matching the key
// fields. The row remains in the store and is excluded from active queries.
func (e *Executor) Delete(ctx context.Context, db execer, rec Record) error {
	s := rec.Schema()
	sd := s.softDeleteField()
	if sd == nil {
		return ErrNoSoftDelete
	}

	vals := rec.FieldValues()
	where, args, err := keyClause(s, vals)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s", s.Table, sd.Column, where)
	_, err = db.ExecContext(ctx, query, append([]any{true}, args...)...)
	return err
}

// Purge hard-deletes the rows matching the key fields. Irreversible.
func (e *Executor) Purge(ctx context.Context, db execer, rec Record) error {
	s := rec.Schema()
	vals := rec.FieldValues()
	where, args, err := keyClause(s, vals)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", s.Table, where)
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// keyClause builds the WHERE clause from the schema's key fields. At least
// one key value must be present or the statement cannot be targeted.
func keyClause(s *Schema, vals []any) (string, []any, error) {
	if len(vals) != len(s.Fields) {
		return "", nil, fmt.Errorf("store: %s: record supplied %d values for %d fields", s.Table, len(vals), len(s.Fields))
	}

	var conds []string
	var args []any
	for i, f := range s.Fields {
		if !f.Key {
			continue
		}
		v, ok := bindValue(vals[i], 0)
		if !ok {
			continue
		}
		conds = append(conds, f.Column+" = ?")
		args = append(args, v)
	}
	if len(conds) == 0 {
		return "", nil, ErrNoUpdateKey
	}
	return strings.Join(conds, " AND "), args, nil
}

// bindValue normalizes a record field value for binding. Nil interfaces and
// nil typed pointers report not-present; pointers are dereferenced; strings
// are truncated to maxLen runes when maxLen > 0.
func bindValue(v any, maxLen int) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case *string:
		if t == nil {
			return nil, false
		}
		return truncate(*t, maxLen), true
	case string:
		return truncate(t, maxLen), true
	case *int64:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *int:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *float64:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *bool:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *time.Time:
		if t == nil {
			return nil, false
		}
		return *t, true
	default:
		return v, true
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

func placeholders(n int) string {
	if n == 1 {
		return "?"
	}
	return strings.Repeat("?, ", n-1) + "?"
}
