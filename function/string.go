// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package function

import (
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/types"
)

// concatFunc joins two or more strings. A null argument makes the result
// null.
type concatFunc struct{ name string }

func (f *concatFunc) Name() string { return f.name }

func (f *concatFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	for i, t := range argTypes {
		if err := checkArgType(f.Name(), i, t, isString, types.BaseTypeString); err != nil {
			return nil, err
		}
	}
	return types.NewDataTypeString(), nil
}

func (f *concatFunc) Evaluate(args []interface{}) (interface{}, error) {
	var sb strings.Builder
	for i, a := range args {
		if a == nil {
			return nil, nil
		}
		s, ok := a.(string)
		if !ok {
			return nil, argValueError(f.Name(), i, a)
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// substringFunc returns the characters of its first argument from the
// zero-based start position up to, but excluding, the optional end
// position. Positions are clamped to the string.
type substringFunc struct{ name string }

func (f *substringFunc) Name() string { return f.name }

func (f *substringFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	if err := checkArgType(f.Name(), 0, argTypes[0], isString, types.BaseTypeString); err != nil {
		return nil, err
	}
	for i := 1; i < len(argTypes); i++ {
		if err := checkArgType(f.Name(), i, argTypes[i], isInteger, types.BaseTypeInteger); err != nil {
			return nil, err
		}
	}
	return types.NewDataTypeString(), nil
}

func (f *substringFunc) Evaluate(args []interface{}) (interface{}, error) {
	for _, a := range args {
		if a == nil {
			return nil, nil
		}
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, argValueError(f.Name(), 0, args[0])
	}
	runes := []rune(s)
	n := int64(len(runes))

	start, ok := toInt64(args[1])
	if !ok {
		return nil, argValueError(f.Name(), 1, args[1])
	}
	end := n
	if len(args) == 3 {
		if end, ok = toInt64(args[2]); !ok {
			return nil, argValueError(f.Name(), 2, args[2])
		}
	}

	start = clamp(start, 0, n)
	end = clamp(end, start, n)
	return string(runes[start:end]), nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stringFunc applies a VARCHAR to VARCHAR transformation.
type stringFunc struct {
	name string
	fn   func(string) string
}

func newStringFunc(name string, fn func(string) string) *stringFunc {
	return &stringFunc{name: name, fn: fn}
}

func (f *stringFunc) Name() string { return f.name }

func (f *stringFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	if err := checkArgType(f.name, 0, argTypes[0], isString, types.BaseTypeString); err != nil {
		return nil, err
	}
	return types.NewDataTypeString(), nil
}

func (f *stringFunc) Evaluate(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, argValueError(f.name, 0, args[0])
	}
	return f.fn(s), nil
}

// lenFunc returns the number of characters in a string as an INTEGER.
type lenFunc struct{ name string }

func (f *lenFunc) Name() string { return f.name }

func (f *lenFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	if err := checkArgType(f.Name(), 0, argTypes[0], isString, types.BaseTypeString); err != nil {
		return nil, err
	}
	return types.NewDataTypeInteger(), nil
}

func (f *lenFunc) Evaluate(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, argValueError(f.Name(), 0, args[0])
	}
	return int32(len([]rune(s))), nil
}

// ifNullFunc returns its first argument unless it is null, in which case it
// returns the second.
type ifNullFunc struct{ name string }

func (f *ifNullFunc) Name() string { return f.name }

func (f *ifNullFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	a, b := argTypes[0], argTypes[1]
	switch {
	case types.IsVoid(a):
		return b, nil
	case types.IsVoid(b):
		return a, nil
	case !types.Equal(a, b):
		return nil, streamsql.NewErrTypeMismatch(a.TypeDescription(), b.TypeDescription())
	}
	return a, nil
}

func (f *ifNullFunc) Evaluate(args []interface{}) (interface{}, error) {
	if args[0] != nil {
		return args[0], nil
	}
	return args[1], nil
}

func argValueError(name string, pos int, v interface{}) error {
	return streamsql.NewErrInternalf("%s: unexpected value %v (%T) for parameter %d", name, v, v, pos+1)
}
