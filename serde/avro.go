// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package serde

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/errors"
	"github.com/linkedin/goavro/v2"
)

// avroSchema is a parsed Avro writer schema used to walk the values goavro
// decodes. goavro reports a non-null union value as a single entry map keyed
// by the branch's type name; the walk replaces those maps by their value.
type avroSchema struct {
	root  interface{}
	named map[string]map[string]interface{}
}

func parseAvroSchema(schemaJSON string) (*avroSchema, error) {
	var root interface{}
	if err := json.UnmarshalFromString(schemaJSON, &root); err != nil {
		return nil, errors.Wrap(err, "parsing avro schema")
	}
	s := &avroSchema{
		root:  root,
		named: make(map[string]map[string]interface{}),
	}
	s.register(root, "")
	return s, nil
}

// register records every named type so later references can be resolved.
func (s *avroSchema) register(schema interface{}, namespace string) {
	switch v := schema.(type) {
	case []interface{}:
		for _, branch := range v {
			s.register(branch, namespace)
		}
	case map[string]interface{}:
		typ, _ := v["type"].(string)
		switch typ {
		case "record", "error", "enum", "fixed":
			full, ns := fullName(v, namespace)
			s.named[full] = v
			if typ == "record" || typ == "error" {
				fields, _ := v["fields"].([]interface{})
				for _, f := range fields {
					if fm, ok := f.(map[string]interface{}); ok {
						s.register(fm["type"], ns)
					}
				}
			}
		case "array":
			s.register(v["items"], namespace)
		case "map":
			s.register(v["values"], namespace)
		default:
			// {"type": {...}} wraps another schema.
			if _, ok := v["type"].(string); !ok {
				s.register(v["type"], namespace)
			}
		}
	}
}

// fullName returns the full name of a named type and the namespace its
// nested definitions inherit.
func fullName(def map[string]interface{}, enclosing string) (string, string) {
	name, _ := def["name"].(string)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name, name[:i]
	}
	ns := enclosing
	if v, ok := def["namespace"].(string); ok {
		ns = v
	}
	if ns == "" {
		return name, ns
	}
	return ns + "." + name, ns
}

// typeName returns the name goavro uses for a union branch.
func (s *avroSchema) typeName(schema interface{}, namespace string) string {
	switch v := schema.(type) {
	case string:
		if _, ok := s.named[v]; !ok && namespace != "" {
			if _, ok := s.named[namespace+"."+v]; ok {
				return namespace + "." + v
			}
		}
		return v
	case map[string]interface{}:
		typ, _ := v["type"].(string)
		switch typ {
		case "record", "error", "enum", "fixed":
			full, _ := fullName(v, namespace)
			return full
		case "":
			return s.typeName(v["type"], namespace)
		}
		if lt, _ := v["logicalType"].(string); logicalTypes[lt] {
			// goavro names union branches of logical types "long.timestamp-millis".
			return typ + "." + lt
		}
		return typ
	}
	return ""
}

// resolve follows named type references.
func (s *avroSchema) resolve(schema interface{}, namespace string) interface{} {
	ref, ok := schema.(string)
	if !ok {
		return schema
	}
	if def, ok := s.named[ref]; ok {
		return def
	}
	if namespace != "" {
		if def, ok := s.named[namespace+"."+ref]; ok {
			return def
		}
	}
	return schema
}

// toNode converts a goavro native value written with schema into a Node.
func (s *avroSchema) toNode(schema interface{}, namespace string, v interface{}) (Node, error) {
	if v == nil {
		return Null{}, nil
	}
	schema = s.resolve(schema, namespace)

	switch sch := schema.(type) {
	case []interface{}:
		wrapped, ok := v.(map[string]interface{})
		if !ok || len(wrapped) != 1 {
			return nil, streamsql.NewErrMalformedRecord(fmt.Sprintf("unexpected avro union value %T", v))
		}
		for branchName, inner := range wrapped {
			for _, branch := range sch {
				if s.typeName(branch, namespace) == branchName {
					return s.toNode(branch, namespace, inner)
				}
			}
			return nil, streamsql.NewErrMalformedRecord(fmt.Sprintf("avro union has no branch '%s'", branchName))
		}

	case map[string]interface{}:
		typ, _ := sch["type"].(string)
		switch typ {
		case "record", "error":
			rec, ok := v.(map[string]interface{})
			if !ok {
				break
			}
			_, ns := fullName(sch, namespace)
			m := NewMapping()
			fields, _ := sch["fields"].([]interface{})
			for _, f := range fields {
				fm, ok := f.(map[string]interface{})
				if !ok {
					continue
				}
				name, _ := fm["name"].(string)
				child, err := s.toNode(fm["type"], ns, rec[name])
				if err != nil {
					return nil, err
				}
				m.Set(name, child)
			}
			return m, nil

		case "array":
			arr, ok := v.([]interface{})
			if !ok {
				break
			}
			seq := make(Sequence, len(arr))
			for i, elem := range arr {
				n, err := s.toNode(sch["items"], namespace, elem)
				if err != nil {
					return nil, err
				}
				seq[i] = n
			}
			return seq, nil

		case "map":
			mv, ok := v.(map[string]interface{})
			if !ok {
				break
			}
			m := NewMapping()
			for k, elem := range mv {
				n, err := s.toNode(sch["values"], namespace, elem)
				if err != nil {
					return nil, err
				}
				m.Set(k, n)
			}
			return m, nil

		case "":
			return s.toNode(sch["type"], namespace, v)

		default:
			// enum, fixed and primitives carrying logical types
			return logicalNode(sch, v)
		}
		return nil, streamsql.NewErrMalformedRecord(fmt.Sprintf("unexpected avro %s value %T", typ, v))
	}
	return primitiveNode(v)
}

// logicalTypes are the logical types goavro decodes into Go time and
// math/big values.
var logicalTypes = map[string]bool{
	"date":             true,
	"time-millis":      true,
	"time-micros":      true,
	"timestamp-millis": true,
	"timestamp-micros": true,
	"decimal":          true,
}

// logicalNode converts values of logical types back to their underlying
// number: days since the epoch for date, the unit the logical type names for
// the time and timestamp types, and a decimal literal for decimal.
func logicalNode(sch map[string]interface{}, v interface{}) (Node, error) {
	lt, _ := sch["logicalType"].(string)
	switch vv := v.(type) {
	case time.Time:
		switch lt {
		case "date":
			days := vv.Unix() / 86400
			if vv.Unix()%86400 < 0 {
				days--
			}
			return Number(strconv.FormatInt(days, 10)), nil
		case "timestamp-micros":
			return Number(strconv.FormatInt(vv.UnixMicro(), 10)), nil
		}
	case time.Duration:
		if lt == "time-micros" {
			return Number(strconv.FormatInt(vv.Microseconds(), 10)), nil
		}
	case *big.Rat:
		scale, _ := sch["scale"].(float64)
		return Number(vv.FloatString(int(scale))), nil
	}
	return primitiveNode(v)
}

func primitiveNode(v interface{}) (Node, error) {
	switch vv := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(vv), nil
	case int32:
		return Number(strconv.FormatInt(int64(vv), 10)), nil
	case int64:
		return Number(strconv.FormatInt(vv, 10)), nil
	case int:
		return Number(strconv.Itoa(vv)), nil
	case float32:
		return Number(strconv.FormatFloat(float64(vv), 'g', -1, 32)), nil
	case float64:
		return Number(strconv.FormatFloat(vv, 'g', -1, 64)), nil
	case string:
		return Text(vv), nil
	case []byte:
		return Text(vv), nil
	case time.Time:
		return Number(strconv.FormatInt(vv.UnixMilli(), 10)), nil
	case time.Duration:
		return Number(strconv.FormatInt(vv.Milliseconds(), 10)), nil
	}
	return nil, streamsql.NewErrMalformedRecord(fmt.Sprintf("unexpected avro value %T", v))
}

// avroDecoder decodes single binary encoded Avro datums.
type avroDecoder struct {
	codec  *goavro.Codec
	schema *avroSchema
}

func newAvroDecoder(schemaJSON string) (*avroDecoder, error) {
	codec, err := goavro.NewCodec(schemaJSON)
	if err != nil {
		return nil, errors.Wrap(err, "creating avro codec")
	}
	s, err := parseAvroSchema(codec.Schema())
	if err != nil {
		return nil, err
	}
	return &avroDecoder{codec: codec, schema: s}, nil
}

// decode structurally decodes data. An empty input decodes to Null.
func (d *avroDecoder) decode(data []byte) (Node, error) {
	if len(data) == 0 {
		return Null{}, nil
	}
	native, rest, err := d.codec.NativeFromBinary(data)
	if err != nil {
		return nil, streamsql.NewErrMalformedRecord(err.Error())
	}
	if len(rest) > 0 {
		return nil, streamsql.NewErrMalformedRecord(fmt.Sprintf("%d unread bytes after avro datum", len(rest)))
	}
	return d.native(native)
}

// native converts a value goavro already decoded with the codec's schema,
// for example one read from an object container file.
func (d *avroDecoder) native(v interface{}) (Node, error) {
	return d.schema.toNode(d.schema.root, "", v)
}
