package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchemaDefaultsColumnToName(t *testing.T) {
	s, err := NewSchema("things",
		Field{Name: "ID", ID: true, Key: true},
		Field{Name: "Label"},
	)
	require.NoError(t, err)
	assert.Equal(t, "ID", s.Fields[0].Column)
	assert.Equal(t, "Label", s.Fields[1].Column)
}

func TestNewSchemaRejectsInvalidMappings(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		fields []Field
	}{
		{
			name:  "no table name",
			table: "",
			fields: []Field{
				{Name: "ID", ID: true, Key: true},
			},
		},
		{
			name:   "no fields",
			table:  "things",
			fields: nil,
		},
		{
			name:  "two identity columns",
			table: "things",
			fields: []Field{
				{Name: "A", ID: true, Key: true},
				{Name: "B", ID: true},
			},
		},
		{
			name:  "no update key",
			table: "things",
			fields: []Field{
				{Name: "ID", ID: true},
				{Name: "Label"},
			},
		},
		{
			name:  "duplicate column",
			table: "things",
			fields: []Field{
				{Name: "A", Column: "x", ID: true, Key: true},
				{Name: "B", Column: "x"},
			},
		},
		{
			name:  "two soft-delete columns",
			table: "things",
			fields: []Field{
				{Name: "ID", ID: true, Key: true},
				{Name: "A", SoftDelete: true},
				{Name: "B", SoftDelete: true},
			},
		},
		{
			name:  "unnamed field",
			table: "things",
			fields: []Field{
				{Name: "ID", ID: true, Key: true},
				{Name: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.table, tt.fields...)
			assert.Error(t, err)
		})
	}
}

func TestMustSchemaPanicsOnInvalidMapping(t *testing.T) {
	assert.Panics(t, func() {
		MustSchema("things", Field{Name: "Label"})
	})
}

func TestSchemaFieldLookups(t *testing.T) {
	s := MustSchema("things",
		Field{Name: "ID", ID: true, Key: true},
		Field{Name: "Label"},
		Field{Name: "Deleted", SoftDelete: true},
	)
	require.NotNil(t, s.idField())
	assert.Equal(t, "ID", s.idField().Name)
	require.NotNil(t, s.softDeleteField())
	assert.Equal(t, "Deleted", s.softDeleteField().Name)

	noSoft := MustSchema("bare", Field{Name: "ID", ID: true, Key: true})
	assert.Nil(t, noSoft.softDeleteField())
}
