// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package serde

import (
	"math"
	"strconv"
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
)

// CoerceRow builds a row of s from a decoded top-level value. Null yields a
// nil row. Keys match column names case-insensitively, and a key with a
// leading '@' matches with the prefix removed.
func CoerceRow(s *schema.Schema, n Node) (*row.Row, error) {
	if _, ok := n.(Null); ok || n == nil {
		return nil, nil
	}
	m, ok := n.(*Mapping)
	if !ok {
		return nil, streamsql.NewErrMalformedRecord("expected an object but found " + n.Kind())
	}

	keys, err := fieldKeys(m, true)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, s.Len())
	for i, f := range s.Fields() {
		key, ok := keys[strings.ToUpper(f.Name)]
		if !ok {
			continue
		}
		child, _ := m.Get(key)
		if values[i], err = Coerce(f.Type, child); err != nil {
			return nil, err
		}
	}
	return row.New(s, values)
}

// fieldKeys maps upper-cased keys to the document keys. When two keys
// collide the later one wins.
func fieldKeys(m *Mapping, omitAt bool) (map[string]string, error) {
	keys := make(map[string]string, m.Len())
	for _, k := range m.Keys() {
		if omitAt && strings.HasPrefix(k, "@") {
			if len(k) == 1 {
				return nil, streamsql.NewErrInvalidFieldName(k)
			}
			keys[strings.ToUpper(k[1:])] = k
			continue
		}
		keys[strings.ToUpper(k)] = k
	}
	return keys, nil
}

// Coerce converts a decoded value to the representation of t.
func Coerce(t types.DataType, n Node) (interface{}, error) {
	if _, ok := n.(Null); ok || n == nil {
		return nil, nil
	}
	switch typ := t.(type) {
	case *types.DataTypeBoolean:
		switch v := n.(type) {
		case Bool:
			return bool(v), nil
		case Text:
			switch strings.ToLower(string(v)) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}

	case *types.DataTypeInteger:
		switch v := n.(type) {
		case Number:
			if i, ok := numberToInt(string(v), math.MinInt32, math.MaxInt32); ok {
				return int32(i), nil
			}
		case Text:
			if i, err := strconv.ParseInt(string(v), 10, 32); err == nil {
				return int32(i), nil
			}
		}

	case *types.DataTypeBigint:
		switch v := n.(type) {
		case Number:
			if i, ok := numberToInt(string(v), math.MinInt64, math.MaxInt64); ok {
				return i, nil
			}
		case Text:
			if i, err := strconv.ParseInt(string(v), 10, 64); err == nil {
				return i, nil
			}
		}

	case *types.DataTypeDouble:
		switch v := n.(type) {
		case Number:
			if f, err := strconv.ParseFloat(string(v), 64); err == nil {
				return f, nil
			}
		case Text:
			if f, err := strconv.ParseFloat(string(v), 64); err == nil {
				return f, nil
			}
		}

	case *types.DataTypeString:
		return coerceString(n)

	case *types.DataTypeArray:
		seq, ok := n.(Sequence)
		if !ok {
			break
		}
		out := make([]interface{}, len(seq))
		for i, elem := range seq {
			v, err := Coerce(typ.ElementType, elem)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *types.DataTypeMap:
		m, ok := n.(*Mapping)
		if !ok {
			break
		}
		out := make(map[string]interface{}, m.Len())
		for _, k := range m.Keys() {
			child, _ := m.Get(k)
			v, err := Coerce(typ.ValueType, child)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	case *types.DataTypeStruct:
		m, ok := n.(*Mapping)
		if !ok {
			break
		}
		keys, err := fieldKeys(m, false)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(typ.Fields))
		for i, f := range typ.Fields {
			key, ok := keys[strings.ToUpper(f.Name)]
			if !ok {
				continue
			}
			child, _ := m.Get(key)
			if values[i], err = Coerce(f.Type, child); err != nil {
				return nil, err
			}
		}
		return row.NewStruct(typ, values)

	default:
		return nil, streamsql.NewErrUnsupportedType(t.TypeDescription())
	}
	return nil, coercionError(n, t)
}

func coerceString(n Node) (interface{}, error) {
	switch v := n.(type) {
	case Text:
		return string(v), nil
	case Number:
		return string(v), nil
	case Bool:
		return strconv.FormatBool(bool(v)), nil
	default:
		s, err := CanonicalJSON(n)
		if err != nil {
			return nil, coercionError(n, types.NewDataTypeString())
		}
		return s, nil
	}
}

// numberToInt converts a JSON number literal to an integer. Integral
// literals in range wrap into [lo, hi] the way a narrowing conversion does;
// anything else truncates toward zero and saturates.
func numberToInt(lit string, lo, hi int64) (int64, bool) {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		if lo == math.MinInt32 {
			return int64(int32(i)), true
		}
		return i, true
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, false
	}
	switch {
	case math.IsNaN(f):
		return 0, true
	case f >= float64(hi):
		return hi, true
	case f <= float64(lo):
		return lo, true
	}
	return int64(f), true
}

func coercionError(n Node, t types.DataType) error {
	text, err := CanonicalJSON(n)
	if err != nil {
		text = n.Kind()
	}
	return streamsql.NewErrInvalidTypeCoercion(text, n.Kind(), t.TypeDescription())
}
