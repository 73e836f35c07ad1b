// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package schema describes the ordered, typed columns of a row.
package schema

import (
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/types"
)

// Schema is an ordered list of uniquely named columns. A Schema is immutable
// once built.
type Schema struct {
	fields []*types.StructField
}

// New returns a schema over fields. Column names must be unique, compared
// case-insensitively.
func New(fields ...*types.StructField) (*Schema, error) {
	seen := make(map[string]struct{}, len(fields))
	fs := make([]*types.StructField, len(fields))
	for i, f := range fields {
		key := strings.ToUpper(f.Name)
		if _, ok := seen[key]; ok {
			return nil, streamsql.NewErrDuplicateColumn(f.Name)
		}
		seen[key] = struct{}{}
		fs[i] = types.NewStructField(f.Name, f.Type)
	}
	return &Schema{fields: fs}, nil
}

// MustNew is like New but panics on error. It is meant for tests and
// package level fixtures.
func MustNew(fields ...*types.StructField) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse builds a schema from a column list such as
// "ID BIGINT, NAME VARCHAR, TAGS ARRAY<VARCHAR>".
func Parse(columns string) (*Schema, error) {
	fields, err := types.ParseFields(columns)
	if err != nil {
		return nil, err
	}
	return New(fields...)
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the column at position i.
func (s *Schema) Field(i int) *types.StructField {
	return s.fields[i]
}

// Fields returns a copy of the columns.
func (s *Schema) Fields() []*types.StructField {
	out := make([]*types.StructField, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldIndex returns the position of the named column, compared
// case-insensitively, or -1.
func (s *Schema) FieldIndex(name string) int {
	for i, f := range s.fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// Equal reports whether both schemas have the same columns in the same
// order.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if !strings.EqualFold(s.fields[i].Name, other.fields[i].Name) {
			return false
		}
		if !types.Equal(s.fields[i].Type, other.fields[i].Type) {
			return false
		}
	}
	return true
}

// AsStruct returns the schema as a STRUCT type.
func (s *Schema) AsStruct() *types.DataTypeStruct {
	return types.NewDataTypeStruct(s.Fields())
}

func (s *Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
