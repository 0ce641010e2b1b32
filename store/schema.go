package store

import "fmt"

// Field describes how one record field maps to a SQL column.
type Field struct {
	// Name is the record-side field name, used in error messages.
	Name string

	// Column is the SQL column name. Defaults to Name when empty.
	Column string

	// MaxLen is the maximum length for string values. Longer strings are
	// silently truncated before binding, never rejected. 0 means unlimited.
	MaxLen int

	// ID marks the store-generated identity column. At most one per schema.
	ID bool

	// Key marks a column used in the WHERE clause for UPDATE/DELETE/PURGE.
	Key bool

	// Immutable excludes the column from UPDATE SET lists (audit fields,
	// creation timestamps).
	Immutable bool

	// SoftDelete marks the boolean column flipped by Delete. At most one
	// per schema. Excluded from INSERT and UPDATE SET lists.
	SoftDelete bool
}

// Schema is a static table-to-record mapping. Schemas are built once at
// package init via MustSchema and shared by all executor calls; they are
// never mutated afterwards.
type Schema struct {
	Table  string
	Fields []Field
}

// Record is a typed domain record bound to a schema. FieldValues must return
// one entry per Schema().Fields entry, in the same order; a nil entry means
// "field not supplied" and is omitted from INSERT column lists and UPDATE SET
// lists (partial-update semantics).
type Record interface {
	Schema() *Schema
	FieldValues() []any
}

// NewSchema builds and validates a schema. It enforces the mapping invariants
// the executor relies on: at most one identity column, at least one update
// key, and at most one soft-delete column.
func NewSchema(table string, fields ...Field) (*Schema, error) {
	if table == "" {
		return nil, fmt.Errorf("store: schema has no table name")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("store: schema for %q has no fields", table)
	}

	ids, keys, softDeletes := 0, 0, 0
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Name == "" {
			return nil, fmt.Errorf("store: schema for %q has an unnamed field", table)
		}
		if f.Column == "" {
			f.Column = f.Name
		}
		if seen[f.Column] {
			return nil, fmt.Errorf("store: schema for %q maps column %q twice", table, f.Column)
		}
		seen[f.Column] = true

		if f.ID {
			ids++
		}
		if f.Key {
			keys++
		}
		if f.SoftDelete {
			softDeletes++
		}
	}

	if ids > 1 {
		return nil, fmt.Errorf("store: schema for %q declares %d identity columns", table, ids)
	}
	if keys == 0 {
		return nil, fmt.Errorf("store: schema for %q declares no update key", table)
	}
	if softDeletes > 1 {
		return nil, fmt.Errorf("store: schema for %q declares %d soft-delete columns", table, softDeletes)
	}

	return &Schema{Table: table, Fields: fields}, nil
}

// MustSchema is NewSchema that panics on an invalid mapping. Intended for
// package-level schema variables, where a bad mapping is a programming error
// caught at startup.
func MustSchema(table string, fields ...Field) *Schema {
	s, err := NewSchema(table, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// idField returns the identity field, or nil if the schema has none.
func (s *Schema) idField() *Field {
	for i := range s.Fields {
		if s.Fields[i].ID {
			return &s.Fields[i]
		}
	}
	return nil
}

// softDeleteField returns the soft-delete field, or nil if the schema has none.
func (s *Schema) softDeleteField() *Field {
	for i := range s.Fields {
		if s.Fields[i].SoftDelete {
			return &s.Fields[i]
		}
	}
	return nil
}
