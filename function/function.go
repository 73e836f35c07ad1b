// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package function defines the scalar functions which compiled expressions
// call, and the registry which resolves them.
package function

import (
	"sort"
	"strings"
	"sync"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/types"
)

// Function is one callable instance bound to one call site.
type Function interface {
	// Name returns the upper-cased function name.
	Name() string
	// ReturnType validates the argument types and returns the result type.
	// It is called once, at compile time.
	ReturnType(argTypes []types.DataType) (types.DataType, error)
	// Evaluate is called once per row with the evaluated arguments, in
	// call site order.
	Evaluate(args []interface{}) (interface{}, error)
}

// Registry resolves a function name and arity to a callable instance.
// Implementations must return a distinct instance from every call.
type Registry interface {
	Resolve(name string, arity int) (Function, error)
}

// Factory returns a new instance of a function.
type Factory func() Function

type descriptor struct {
	name     string
	minArity int
	maxArity int // -1 for variadic
	factory  Factory
}

// InternalRegistry is an in-memory Registry.
type InternalRegistry struct {
	mu        sync.RWMutex
	functions map[string]descriptor
}

// NewInternalRegistry returns an empty registry.
func NewInternalRegistry() *InternalRegistry {
	return &InternalRegistry{
		functions: make(map[string]descriptor),
	}
}

// NewBuiltinRegistry returns a registry holding the builtin functions.
func NewBuiltinRegistry() *InternalRegistry {
	r := NewInternalRegistry()
	for _, b := range builtins {
		r.Register(b.name, b.minArity, b.maxArity, b.factory)
	}
	return r
}

// Register adds or replaces a function. maxArity of -1 means no upper bound.
func (r *InternalRegistry) Register(name string, minArity, maxArity int, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToUpper(name)
	r.functions[key] = descriptor{
		name:     key,
		minArity: minArity,
		maxArity: maxArity,
		factory:  factory,
	}
}

// Resolve implements Registry.
func (r *InternalRegistry) Resolve(name string, arity int) (Function, error) {
	r.mu.RLock()
	d, ok := r.functions[strings.ToUpper(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, streamsql.NewErrCallUnknownFunction(name)
	}
	if arity < d.minArity || (d.maxArity >= 0 && arity > d.maxArity) {
		return nil, streamsql.NewErrCallParameterCountMismatch(d.name, d.minArity, d.maxArity, arity)
	}
	return d.factory(), nil
}

// Names returns the registered function names in order.
func (r *InternalRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for n := range r.functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var builtins = []descriptor{
	{name: "CONCAT", minArity: 2, maxArity: -1, factory: func() Function { return &concatFunc{name: "CONCAT"} }},
	{name: "SUBSTRING", minArity: 2, maxArity: 3, factory: func() Function { return &substringFunc{name: "SUBSTRING"} }},
	{name: "UCASE", minArity: 1, maxArity: 1, factory: func() Function { return newStringFunc("UCASE", strings.ToUpper) }},
	{name: "LCASE", minArity: 1, maxArity: 1, factory: func() Function { return newStringFunc("LCASE", strings.ToLower) }},
	{name: "TRIM", minArity: 1, maxArity: 1, factory: func() Function { return newStringFunc("TRIM", strings.TrimSpace) }},
	{name: "LEN", minArity: 1, maxArity: 1, factory: func() Function { return &lenFunc{name: "LEN"} }},
	{name: "ABS", minArity: 1, maxArity: 1, factory: func() Function { return &absFunc{name: "ABS"} }},
	{name: "CEIL", minArity: 1, maxArity: 1, factory: func() Function { return newRoundingFunc("CEIL") }},
	{name: "FLOOR", minArity: 1, maxArity: 1, factory: func() Function { return newRoundingFunc("FLOOR") }},
	{name: "ROUND", minArity: 1, maxArity: 1, factory: func() Function { return &roundFunc{name: "ROUND"} }},
	{name: "IFNULL", minArity: 2, maxArity: 2, factory: func() Function { return &ifNullFunc{name: "IFNULL"} }},
}

func checkArgType(name string, pos int, got types.DataType, accept func(types.DataType) bool, expected string) error {
	if types.IsVoid(got) || accept(got) {
		return nil
	}
	return streamsql.NewErrCallParameterTypeMismatch(name, pos+1, expected, got.TypeDescription())
}

func isString(t types.DataType) bool {
	_, ok := t.(*types.DataTypeString)
	return ok
}

func isInteger(t types.DataType) bool {
	switch t.(type) {
	case *types.DataTypeInteger, *types.DataTypeBigint:
		return true
	}
	return false
}

// toInt64 widens an INTEGER or BIGINT value.
func toInt64(v interface{}) (int64, bool) {
	switch vv := v.(type) {
	case int32:
		return int64(vv), true
	case int64:
		return vv, true
	}
	return 0, false
}

// toFloat64 widens any numeric value.
func toFloat64(v interface{}) (float64, bool) {
	switch vv := v.(type) {
	case int32:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case float64:
		return vv, true
	}
	return 0, false
}
