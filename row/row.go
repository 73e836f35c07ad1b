// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package row holds schema-typed row values.
//
// Values use the following Go representations; nil is null for every type.
//
//	BOOLEAN   bool
//	INTEGER   int32
//	BIGINT    int64
//	DOUBLE    float64
//	VARCHAR   string
//	ARRAY     []interface{}
//	MAP       map[string]interface{}
//	STRUCT    *row.Struct
package row

import (
	"fmt"
	"sort"
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
)

// Row is an ordered sequence of values conforming to a schema.
type Row struct {
	schema *schema.Schema
	values []interface{}
}

// New returns a row over values. The number of values must match the number
// of columns and each value must conform to its column type.
func New(s *schema.Schema, values []interface{}) (*Row, error) {
	if len(values) != s.Len() {
		return nil, streamsql.NewErrRowLengthMismatch(s.Len(), len(values))
	}
	for i, v := range values {
		f := s.Field(i)
		if !Conforms(f.Type, v) {
			return nil, streamsql.NewErrRowValueMismatch(i, f.Name, f.Type.TypeDescription(), v)
		}
	}
	vs := make([]interface{}, len(values))
	copy(vs, values)
	return &Row{schema: s, values: vs}, nil
}

// Nulls returns a row whose values are all null.
func Nulls(s *schema.Schema) *Row {
	return &Row{schema: s, values: make([]interface{}, s.Len())}
}

// Schema returns the schema the row conforms to.
func (r *Row) Schema() *schema.Schema {
	return r.schema
}

// Len returns the number of values.
func (r *Row) Len() int {
	return len(r.values)
}

// Get returns the value at position i.
func (r *Row) Get(i int) interface{} {
	return r.values[i]
}

// Values returns a copy of the row's values.
func (r *Row) Values() []interface{} {
	out := make([]interface{}, len(r.values))
	copy(out, r.values)
	return out
}

func (r *Row) String() string {
	parts := make([]string, len(r.values))
	for i, v := range r.values {
		parts[i] = FormatValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Struct is the value of a STRUCT column: one value per declared field.
type Struct struct {
	typ    *types.DataTypeStruct
	values []interface{}
}

// NewStruct returns a struct value of type typ.
func NewStruct(typ *types.DataTypeStruct, values []interface{}) (*Struct, error) {
	if len(values) != len(typ.Fields) {
		return nil, streamsql.NewErrRowLengthMismatch(len(typ.Fields), len(values))
	}
	for i, v := range values {
		f := typ.Fields[i]
		if !Conforms(f.Type, v) {
			return nil, streamsql.NewErrRowValueMismatch(i, f.Name, f.Type.TypeDescription(), v)
		}
	}
	vs := make([]interface{}, len(values))
	copy(vs, values)
	return &Struct{typ: typ, values: vs}, nil
}

// Type returns the struct's declared type.
func (s *Struct) Type() *types.DataTypeStruct {
	return s.typ
}

// Get returns the value of field i.
func (s *Struct) Get(i int) interface{} {
	return s.values[i]
}

// GetByName returns the value of the named field, compared
// case-insensitively, and whether the field exists.
func (s *Struct) GetByName(name string) (interface{}, bool) {
	i := s.typ.FieldIndex(name)
	if i < 0 {
		return nil, false
	}
	return s.values[i], true
}

func (s *Struct) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = s.typ.Fields[i].Name + ":" + FormatValue(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Conforms reports whether v is a valid value for t. A nil value conforms to
// every type.
func Conforms(t types.DataType, v interface{}) bool {
	if v == nil {
		return true
	}
	switch tt := t.(type) {
	case *types.DataTypeBoolean:
		_, ok := v.(bool)
		return ok
	case *types.DataTypeInteger:
		_, ok := v.(int32)
		return ok
	case *types.DataTypeBigint:
		_, ok := v.(int64)
		return ok
	case *types.DataTypeDouble:
		_, ok := v.(float64)
		return ok
	case *types.DataTypeString:
		_, ok := v.(string)
		return ok
	case *types.DataTypeArray:
		elems, ok := v.([]interface{})
		if !ok {
			return false
		}
		for _, e := range elems {
			if !Conforms(tt.ElementType, e) {
				return false
			}
		}
		return true
	case *types.DataTypeMap:
		m, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		for _, e := range m {
			if !Conforms(tt.ValueType, e) {
				return false
			}
		}
		return true
	case *types.DataTypeStruct:
		s, ok := v.(*Struct)
		return ok && types.Equal(tt, s.typ)
	default:
		return false
	}
}

// FormatValue renders a value for display. Map entries are ordered by key.
func FormatValue(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", vv)
	case []interface{}:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%q:%s", k, FormatValue(vv[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", vv)
	}
}
