// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package function

import (
	"math"

	"github.com/featurebasedb/streamsql/types"
)

// absFunc returns the absolute value, keeping the argument's type.
type absFunc struct{ name string }

func (f *absFunc) Name() string { return f.name }

func (f *absFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	if err := checkArgType(f.Name(), 0, argTypes[0], types.IsNumeric, "numeric"); err != nil {
		return nil, err
	}
	if types.IsVoid(argTypes[0]) {
		return types.NewDataTypeDouble(), nil
	}
	return argTypes[0], nil
}

func (f *absFunc) Evaluate(args []interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case int32:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case int64:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case float64:
		return math.Abs(v), nil
	default:
		return nil, argValueError(f.Name(), 0, v)
	}
}

// roundingFunc implements CEIL and FLOOR, which always return DOUBLE.
type roundingFunc struct {
	name string
	fn   func(float64) float64
}

func newRoundingFunc(name string) *roundingFunc {
	fn := math.Floor
	if name == "CEIL" {
		fn = math.Ceil
	}
	return &roundingFunc{name: name, fn: fn}
}

func (f *roundingFunc) Name() string { return f.name }

func (f *roundingFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	if err := checkArgType(f.name, 0, argTypes[0], types.IsNumeric, "numeric"); err != nil {
		return nil, err
	}
	return types.NewDataTypeDouble(), nil
}

func (f *roundingFunc) Evaluate(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	v, ok := toFloat64(args[0])
	if !ok {
		return nil, argValueError(f.name, 0, args[0])
	}
	return f.fn(v), nil
}

// roundFunc rounds half up to the nearest BIGINT.
type roundFunc struct{ name string }

func (f *roundFunc) Name() string { return f.name }

func (f *roundFunc) ReturnType(argTypes []types.DataType) (types.DataType, error) {
	if err := checkArgType(f.Name(), 0, argTypes[0], types.IsNumeric, "numeric"); err != nil {
		return nil, err
	}
	return types.NewDataTypeBigint(), nil
}

func (f *roundFunc) Evaluate(args []interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if math.IsNaN(v) {
			return int64(0), nil
		}
		r := math.Floor(v + 0.5)
		switch {
		case r >= math.MaxInt64:
			return int64(math.MaxInt64), nil
		case r <= math.MinInt64:
			return int64(math.MinInt64), nil
		}
		return int64(r), nil
	default:
		return nil, argValueError(f.Name(), 0, v)
	}
}
