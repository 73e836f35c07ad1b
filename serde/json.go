// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package serde

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/featurebasedb/streamsql"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxDepth bounds the nesting of a decoded document.
const maxDepth = 1000

// DecodeJSON structurally decodes a single JSON document. An empty or
// all-whitespace input decodes to Null.
func DecodeJSON(data []byte) (Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Null{}, nil
	}
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	n, err := readNode(iter, 0)
	if err != nil {
		return nil, err
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, streamsql.NewErrMalformedRecord(iter.Error.Error())
	}
	// Only the end of input leaves io.EOF behind.
	if iter.WhatIsNext() != jsoniter.InvalidValue || iter.Error != io.EOF {
		return nil, streamsql.NewErrMalformedRecord("unexpected data after top-level value")
	}
	return n, nil
}

func readNode(iter *jsoniter.Iterator, depth int) (Node, error) {
	if depth > maxDepth {
		return nil, streamsql.NewErrMalformedRecord("document nested too deeply")
	}

	var n Node
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		n = Null{}

	case jsoniter.BoolValue:
		n = Bool(iter.ReadBool())

	case jsoniter.NumberValue:
		num := string(iter.ReadNumber())
		if !validNumber(num) {
			return nil, streamsql.NewErrMalformedRecord(fmt.Sprintf("invalid number literal %q", num))
		}
		n = Number(num)

	case jsoniter.StringValue:
		n = Text(iter.ReadString())

	case jsoniter.ArrayValue:
		seq := Sequence{}
		var err error
		ok := iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			var elem Node
			if elem, err = readNode(it, depth+1); err != nil {
				return false
			}
			seq = append(seq, elem)
			return true
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, malformed(iter)
		}
		n = seq

	case jsoniter.ObjectValue:
		m := NewMapping()
		var err error
		ok := iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
			var v Node
			if v, err = readNode(it, depth+1); err != nil {
				return false
			}
			m.Set(key, v)
			return true
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, malformed(iter)
		}
		n = m

	default:
		return nil, malformed(iter)
	}

	if iter.Error != nil && iter.Error != io.EOF {
		return nil, streamsql.NewErrMalformedRecord(iter.Error.Error())
	}
	return n, nil
}

// validNumber reports whether s matches the JSON number grammar
// -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func validNumber(s string) bool {
	i := 0
	digits := func() int {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i - start
	}

	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case digits() == 0:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(s)
}

func malformed(iter *jsoniter.Iterator) error {
	switch iter.Error {
	case nil:
		return streamsql.NewErrMalformedRecord("invalid JSON value")
	case io.EOF:
		return streamsql.NewErrMalformedRecord("unexpected end of JSON input")
	}
	return streamsql.NewErrMalformedRecord(iter.Error.Error())
}

// CanonicalJSON renders n as compact JSON with object keys sorted.
func CanonicalJSON(n Node) (string, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	writeCanonical(stream, n)
	if stream.Error != nil {
		return "", stream.Error
	}
	return string(stream.Buffer()), nil
}

func writeCanonical(stream *jsoniter.Stream, n Node) {
	switch v := n.(type) {
	case Null:
		stream.WriteNil()
	case Bool:
		stream.WriteBool(bool(v))
	case Number:
		stream.WriteRaw(string(v))
	case Text:
		stream.WriteString(string(v))
	case Sequence:
		stream.WriteArrayStart()
		for i, elem := range v {
			if i > 0 {
				stream.WriteMore()
			}
			writeCanonical(stream, elem)
		}
		stream.WriteArrayEnd()
	case *Mapping:
		keys := v.Keys()
		sort.Strings(keys)
		stream.WriteObjectStart()
		for i, k := range keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(k)
			child, _ := v.Get(k)
			writeCanonical(stream, child)
		}
		stream.WriteObjectEnd()
	default:
		stream.WriteNil()
	}
}
