// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package serde

// Node is a structurally decoded value, before it is coerced to a column
// type. It is one of Null, Bool, Number, Text, Sequence or *Mapping.
type Node interface {
	node()
	// Kind names the node's shape in error messages.
	Kind() string
}

func (Null) node()     {}
func (Bool) node()     {}
func (Number) node()   {}
func (Text) node()     {}
func (Sequence) node() {}
func (*Mapping) node() {}

// Null is an explicit or absent null.
type Null struct{}

func (Null) Kind() string { return "null" }

type Bool bool

func (Bool) Kind() string { return "boolean" }

// Number holds the literal text of a number so that no precision is lost
// before the target type is known.
type Number string

func (Number) Kind() string { return "number" }

type Text string

func (Text) Kind() string { return "string" }

type Sequence []Node

func (Sequence) Kind() string { return "array" }

// Mapping is an object whose keys keep their document order. Setting an
// existing key replaces its value in place.
type Mapping struct {
	keys   []string
	values map[string]Node
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Node)}
}

func (m *Mapping) Kind() string { return "object" }

// Set stores v under key.
func (m *Mapping) Set(key string, v Node) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in document order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Mapping) Len() int {
	return len(m.keys)
}
