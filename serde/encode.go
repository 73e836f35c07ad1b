// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package serde

import (
	"fmt"
	"math"
	"sort"

	"github.com/featurebasedb/streamsql/row"
	jsoniter "github.com/json-iterator/go"
)

// MarshalRow renders r as a JSON object whose keys are the column names in
// schema order. Map keys are sorted. Non-finite doubles have no JSON number
// form and are written as the strings "NaN", "Infinity" and "-Infinity",
// which coerce back to the same DOUBLE values.
func MarshalRow(r *row.Row) ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, f := range r.Schema().Fields() {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(f.Name)
		if err := writeValue(stream, r.Get(i)); err != nil {
			return nil, err
		}
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}

	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

func writeValue(stream *jsoniter.Stream, v interface{}) error {
	switch vv := v.(type) {
	case nil:
		stream.WriteNil()
	case bool:
		stream.WriteBool(vv)
	case int32:
		stream.WriteInt32(vv)
	case int64:
		stream.WriteInt64(vv)
	case float64:
		switch {
		case math.IsNaN(vv):
			stream.WriteString("NaN")
		case math.IsInf(vv, 1):
			stream.WriteString("Infinity")
		case math.IsInf(vv, -1):
			stream.WriteString("-Infinity")
		default:
			stream.WriteFloat64(vv)
		}
	case string:
		stream.WriteString(vv)
	case []interface{}:
		stream.WriteArrayStart()
		for i, elem := range vv {
			if i > 0 {
				stream.WriteMore()
			}
			if err := writeValue(stream, elem); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		stream.WriteObjectStart()
		for i, k := range keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(k)
			if err := writeValue(stream, vv[k]); err != nil {
				return err
			}
		}
		stream.WriteObjectEnd()
	case *row.Struct:
		stream.WriteObjectStart()
		for i, f := range vv.Type().Fields {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(f.Name)
			if err := writeValue(stream, vv.Get(i)); err != nil {
				return err
			}
		}
		stream.WriteObjectEnd()
	default:
		return fmt.Errorf("cannot marshal value of type %T", v)
	}
	return nil
}
