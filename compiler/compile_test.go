// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"fmt"
	"math"
	"testing"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/errors"
	"github.com/featurebasedb/streamsql/expr"
	"github.com/featurebasedb/streamsql/function"
	"github.com/featurebasedb/streamsql/logger"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var addressType = types.NewDataTypeStruct([]*types.StructField{
	types.NewStructField("NUMBER", types.NewDataTypeBigint()),
	types.NewStructField("STREET", types.NewDataTypeString()),
	types.NewStructField("CITY", types.NewDataTypeString()),
	types.NewStructField("STATE", types.NewDataTypeString()),
	types.NewStructField("ZIPCODE", types.NewDataTypeBigint()),
})

func testSchema() *schema.Schema {
	return schema.MustNew(
		types.NewStructField("TEST1.COL0", types.NewDataTypeBigint()),
		types.NewStructField("TEST1.COL1", types.NewDataTypeString()),
		types.NewStructField("TEST1.COL2", types.NewDataTypeString()),
		types.NewStructField("TEST1.COL3", types.NewDataTypeDouble()),
		types.NewStructField("TEST1.COL4", types.NewDataTypeArray(types.NewDataTypeDouble())),
		types.NewStructField("TEST1.COL5", types.NewDataTypeMap(types.NewDataTypeDouble())),
		types.NewStructField("TEST1.COL6", addressType),
	)
}

func testRow(t *testing.T, s *schema.Schema, col0 interface{}, col1, col2 interface{}, col3 interface{}) *row.Row {
	t.Helper()
	addr, err := row.NewStruct(addressType, []interface{}{int64(101), "Main St", "Oakland", "CA", int64(94601)})
	require.NoError(t, err)
	r, err := row.New(s, []interface{}{
		col0,
		col1,
		col2,
		col3,
		[]interface{}{1.5, 2.5},
		map[string]interface{}{"a": 1.0, "b": 2.0},
		addr,
	})
	require.NoError(t, err)
	return r
}

func col(name string) *expr.ColumnRef {
	return &expr.ColumnRef{Source: "TEST1", Name: name}
}

func str(s string) *expr.StringLiteral { return &expr.StringLiteral{Value: s} }
func i32(v int32) *expr.IntegerLiteral  { return &expr.IntegerLiteral{Value: v} }
func i64(v int64) *expr.LongLiteral     { return &expr.LongLiteral{Value: v} }
func f64(v float64) *expr.DoubleLiteral { return &expr.DoubleLiteral{Value: v} }
func boolean(v bool) *expr.BooleanLiteral {
	return &expr.BooleanLiteral{Value: v}
}

func call(name string, args ...expr.Expr) *expr.FunctionCall {
	return &expr.FunctionCall{Name: name, Args: args}
}

func cmp(op expr.ComparisonOp, l, r expr.Expr) *expr.Comparison {
	return &expr.Comparison{Op: op, Left: l, Right: r}
}

func arith(op expr.ArithmeticOp, l, r expr.Expr) *expr.ArithmeticBinary {
	return &expr.ArithmeticBinary{Op: op, Left: l, Right: r}
}

func mustCompile(t *testing.T, s *schema.Schema, e expr.Expr) *Evaluator {
	t.Helper()
	ev, err := Compile(s, e, function.NewBuiltinRegistry())
	require.NoError(t, err)
	return ev
}

func TestCompile_FunctionBindingsArePreOrder(t *testing.T) {
	s := testSchema()
	e := call("CONCAT",
		call("SUBSTRING", col("COL1"), i32(1), i32(3)),
		call("CONCAT", str("-"), call("SUBSTRING", col("COL2"), i32(1), i32(3))),
	)
	ev := mustCompile(t, s, e)

	var ids []string
	for _, b := range ev.FunctionBindings() {
		ids = append(ids, b.Identifier())
	}
	assert.Equal(t, []string{"CONCAT_0", "SUBSTRING_1", "CONCAT_2", "SUBSTRING_3"}, ids)
	assert.Equal(t,
		`CONCAT_0.evaluate(SUBSTRING_1.evaluate(TEST1_COL1, 1, 3), CONCAT_2.evaluate("-", SUBSTRING_3.evaluate(TEST1_COL2, 1, 3)))`,
		ev.String())
	assert.Equal(t, types.NewDataTypeString(), ev.Type())

	v, err := ev.Evaluate(testRow(t, s, int64(1), "hello", "world", 0.0))
	require.NoError(t, err)
	assert.Equal(t, "el-or", v)

	// Each call site owns its own function instance.
	bs := ev.FunctionBindings()
	require.Len(t, bs, 4)
	assert.NotSame(t, bs[0].Instance, bs[2].Instance)
	assert.NotSame(t, bs[1].Instance, bs[3].Instance)

	// A second compilation numbers from zero again.
	ev2 := mustCompile(t, s, call("UCASE", col("COL1")))
	require.Len(t, ev2.FunctionBindings(), 1)
	assert.Equal(t, "UCASE_0", ev2.FunctionBindings()[0].Identifier())
}

func TestCompile_NullComparisonIsFalse(t *testing.T) {
	s := testSchema()
	ev := mustCompile(t, s, cmp(expr.OpGreaterThan, col("COL0"), i32(100)))
	assert.Equal(t, "((TEST1_COL0 == null || 100 == null) ? false : (TEST1_COL0 > 100))", ev.String())
	assert.Equal(t, types.NewDataTypeBoolean(), ev.Type())

	for _, tc := range []struct {
		col0 interface{}
		exp  bool
	}{
		{col0: int64(101), exp: true},
		{col0: int64(100), exp: false},
		{col0: nil, exp: false},
	} {
		v, err := ev.Evaluate(testRow(t, s, tc.col0, "a", "b", 0.0))
		require.NoError(t, err)
		assert.Equal(t, tc.exp, v, "col0=%v", tc.col0)
	}

	// Comparing against a null literal is false too.
	ev = mustCompile(t, s, cmp(expr.OpEqual, col("COL1"), &expr.NullLiteral{}))
	v, err := ev.Evaluate(testRow(t, s, int64(1), "a", "b", 0.0))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCompile_Comparison(t *testing.T) {
	s := testSchema()
	r := testRow(t, s, int64(3), "abc", "abd", 2.5)

	for _, tc := range []struct {
		name string
		e    expr.Expr
		exp  interface{}
	}{
		{name: "BigintDouble", e: cmp(expr.OpLessThan, col("COL0"), col("COL3")), exp: false},
		{name: "DoubleInteger", e: cmp(expr.OpLessThanOrEqual, col("COL3"), i32(3)), exp: true},
		{name: "Strings", e: cmp(expr.OpLessThan, col("COL1"), col("COL2")), exp: true},
		{name: "NotEqual", e: cmp(expr.OpNotEqual, col("COL1"), str("abc")), exp: false},
		{name: "Booleans", e: cmp(expr.OpEqual, boolean(true), boolean(true)), exp: true},
		{name: "GreaterEqual", e: cmp(expr.OpGreaterThanOrEqual, col("COL0"), i64(3)), exp: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, err := mustCompile(t, s, tc.e).Evaluate(r)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v)
		})
	}
}

func TestCompile_Arithmetic(t *testing.T) {
	s := testSchema()
	r := testRow(t, s, int64(7), "a", "b", 0.5)

	for _, tc := range []struct {
		name    string
		e       expr.Expr
		typ     types.DataType
		exp     interface{}
		expCode errors.Code
	}{
		{name: "BigintPlusDouble", e: arith(expr.OpAdd, col("COL0"), col("COL3")), typ: types.NewDataTypeDouble(), exp: 7.5},
		{name: "BigintTimesInteger", e: arith(expr.OpMultiply, col("COL0"), i32(3)), typ: types.NewDataTypeBigint(), exp: int64(21)},
		{name: "IntegerModulus", e: arith(expr.OpModulus, i32(7), i32(3)), typ: types.NewDataTypeInteger(), exp: int32(1)},
		{name: "IntegerWraps", e: arith(expr.OpAdd, i32(math.MaxInt32), i32(1)), typ: types.NewDataTypeInteger(), exp: int32(math.MinInt32)},
		{name: "NullOperand", e: arith(expr.OpAdd, col("COL0"), &expr.NullLiteral{}), typ: types.NewDataTypeBigint(), exp: nil},
		{name: "DivideByZero", e: arith(expr.OpDivide, col("COL0"), i64(0)), typ: types.NewDataTypeBigint(), expCode: streamsql.ErrDivisionByZero},
		{name: "DoubleDivideByZero", e: arith(expr.OpDivide, col("COL3"), f64(0)), typ: types.NewDataTypeDouble(), exp: math.Inf(1)},
		{name: "Negate", e: &expr.ArithmeticUnary{Op: expr.OpSubtract, Operand: col("COL0")}, typ: types.NewDataTypeBigint(), exp: int64(-7)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ev := mustCompile(t, s, tc.e)
			assert.Equal(t, tc.typ, ev.Type())
			v, err := ev.Evaluate(r)
			if tc.expCode != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.expCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v)
		})
	}
}

func TestCompile_Logical(t *testing.T) {
	s := testSchema()
	r := testRow(t, s, int64(1), "a", "b", 0.0)
	null := &expr.NullLiteral{}
	and := func(l, r expr.Expr) expr.Expr { return &expr.LogicalBinary{Op: expr.OpAnd, Left: l, Right: r} }
	or := func(l, r expr.Expr) expr.Expr { return &expr.LogicalBinary{Op: expr.OpOr, Left: l, Right: r} }
	failing := cmp(expr.OpEqual, arith(expr.OpDivide, i32(1), i32(0)), i32(1))

	for _, tc := range []struct {
		name string
		e    expr.Expr
		exp  interface{}
	}{
		{name: "NullAndFalse", e: and(null, boolean(false)), exp: false},
		{name: "NullAndTrue", e: and(null, boolean(true)), exp: nil},
		{name: "NullOrTrue", e: or(null, boolean(true)), exp: true},
		{name: "NullOrFalse", e: or(null, boolean(false)), exp: nil},
		{name: "FalseAndShortCircuits", e: and(boolean(false), failing), exp: false},
		{name: "TrueOrShortCircuits", e: or(boolean(true), failing), exp: true},
		{name: "NotNull", e: &expr.Not{Operand: null}, exp: nil},
		{name: "Not", e: &expr.Not{Operand: boolean(false)}, exp: true},
		{name: "IsNull", e: &expr.IsNull{Operand: null}, exp: true},
		{name: "IsNotNull", e: &expr.IsNotNull{Operand: col("COL1")}, exp: true},
		{name: "Between", e: &expr.Between{Value: col("COL0"), Min: i32(0), Max: f64(1.5)}, exp: true},
		{name: "BetweenStrings", e: &expr.Between{Value: col("COL1"), Min: str("b"), Max: str("c")}, exp: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, err := mustCompile(t, s, tc.e).Evaluate(r)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v)
		})
	}
}

func TestCompile_Like(t *testing.T) {
	s := testSchema()

	for _, tc := range []struct {
		pattern  string
		strategy likeStrategy
		needle   string
		value    interface{}
		exp      bool
	}{
		{pattern: "%ell%", strategy: likeContains, needle: "ell", value: "hello", exp: true},
		{pattern: "he%", strategy: likePrefix, needle: "he", value: "hello", exp: true},
		{pattern: "%lo", strategy: likeSuffix, needle: "lo", value: "hello", exp: true},
		{pattern: "hello", strategy: likeEquals, needle: "hello", value: "hello", exp: true},
		{pattern: "hello", strategy: likeEquals, needle: "hello", value: "Hello", exp: false},
		{pattern: "%", strategy: likeSuffix, needle: "", value: "anything", exp: true},
		{pattern: "%a%b%", strategy: likeContains, needle: "a%b", value: "xa%by", exp: true},
		{pattern: "%a%b%", strategy: likeContains, needle: "a%b", value: "xaby", exp: false},
		{pattern: "he%", strategy: likePrefix, needle: "he", value: nil, exp: false},
	} {
		t.Run(tc.pattern, func(t *testing.T) {
			strategy, needle := planLiteralLike(tc.pattern)
			assert.Equal(t, tc.strategy, strategy)
			assert.Equal(t, tc.needle, needle)

			ev := mustCompile(t, s, &expr.Like{Value: col("COL1"), Pattern: str(tc.pattern)})
			v, err := ev.Evaluate(testRow(t, s, int64(1), tc.value, "x", 0.0))
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v)
		})
	}

	t.Run("String", func(t *testing.T) {
		ev := mustCompile(t, s, &expr.Like{Value: col("COL1"), Pattern: str("%ell%")})
		assert.Equal(t, `((TEST1_COL1 == null) ? false : TEST1_COL1.contains("ell"))`, ev.String())
	})

	t.Run("Dynamic", func(t *testing.T) {
		ev := mustCompile(t, s, &expr.Like{Value: col("COL1"), Pattern: col("COL2")})
		for _, tc := range []struct {
			value, pattern interface{}
			exp            bool
		}{
			{value: "hello world", pattern: "h%o%d", exp: true},
			{value: "hello world", pattern: "h%z%d", exp: false},
			{value: "abcabc", pattern: "%bc", exp: true},
			{value: "abc", pattern: nil, exp: false},
		} {
			v, err := ev.Evaluate(testRow(t, s, int64(1), tc.value, tc.pattern, 0.0))
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v, "%v LIKE %v", tc.value, tc.pattern)
		}
	})
}

func TestCompile_SearchedCaseIsLazy(t *testing.T) {
	s := testSchema()
	e := &expr.SearchedCase{
		WhenClauses: []*expr.WhenClause{
			{Operand: cmp(expr.OpGreaterThan, col("COL0"), i32(0)), Result: i32(1)},
			{Operand: cmp(expr.OpEqual, col("COL0"), i32(0)), Result: &expr.NullLiteral{}},
		},
		Default: arith(expr.OpDivide, i32(10), i32(0)),
	}
	ev := mustCompile(t, s, e)
	assert.Equal(t, types.NewDataTypeInteger(), ev.Type())

	v, err := ev.Evaluate(testRow(t, s, int64(5), "a", "b", 0.0))
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	v, err = ev.Evaluate(testRow(t, s, int64(0), "a", "b", 0.0))
	require.NoError(t, err)
	assert.Nil(t, v)

	// A null condition does not match, so the default runs.
	_, err = ev.Evaluate(testRow(t, s, nil, "a", "b", 0.0))
	assert.True(t, errors.Is(err, streamsql.ErrDivisionByZero), "got %v", err)

	t.Run("LaterConditionSkipped", func(t *testing.T) {
		ev := mustCompile(t, s, &expr.SearchedCase{
			WhenClauses: []*expr.WhenClause{
				{Operand: cmp(expr.OpGreaterThan, col("COL0"), i32(0)), Result: i32(1)},
				{Operand: cmp(expr.OpEqual, arith(expr.OpDivide, i32(10), col("COL0")), i64(1)), Result: i32(2)},
			},
			Default: i32(3),
		})
		v, err := ev.Evaluate(testRow(t, s, int64(5), "a", "b", 0.0))
		require.NoError(t, err)
		assert.Equal(t, int32(1), v)

		// Once the first condition fails the second one runs and divides by zero.
		_, err = ev.Evaluate(testRow(t, s, int64(0), "a", "b", 0.0))
		assert.True(t, errors.Is(err, streamsql.ErrDivisionByZero), "got %v", err)
	})

	t.Run("NoDefault", func(t *testing.T) {
		ev := mustCompile(t, s, &expr.SearchedCase{
			WhenClauses: []*expr.WhenClause{{Operand: boolean(false), Result: str("x")}},
		})
		v, err := ev.Evaluate(testRow(t, s, int64(5), "a", "b", 0.0))
		require.NoError(t, err)
		assert.Nil(t, v)
		assert.Equal(t, `case when false then "x" end`, ev.String())
	})
}

func TestCompile_SubscriptAndDereference(t *testing.T) {
	s := testSchema()
	r := testRow(t, s, int64(1), "a", "b", 0.0)

	for _, tc := range []struct {
		name    string
		e       expr.Expr
		typ     types.DataType
		exp     interface{}
		expCode errors.Code
	}{
		{name: "Array", e: &expr.Subscript{Base: col("COL4"), Index: i32(1)}, typ: types.NewDataTypeDouble(), exp: 2.5},
		{name: "ArrayOutOfRange", e: &expr.Subscript{Base: col("COL4"), Index: i32(5)}, typ: types.NewDataTypeDouble(), expCode: streamsql.ErrIndexOutOfRange},
		{name: "ArrayNegative", e: &expr.Subscript{Base: col("COL4"), Index: i64(-1)}, typ: types.NewDataTypeDouble(), expCode: streamsql.ErrIndexOutOfRange},
		{name: "Map", e: &expr.Subscript{Base: col("COL5"), Index: str("b")}, typ: types.NewDataTypeDouble(), exp: 2.0},
		{name: "MapMissingKey", e: &expr.Subscript{Base: col("COL5"), Index: str("zz")}, typ: types.NewDataTypeDouble(), exp: nil},
		{name: "Struct", e: &expr.Dereference{Base: col("COL6"), FieldName: "city"}, typ: types.NewDataTypeString(), exp: "Oakland"},
		{name: "StructBigint", e: &expr.Dereference{Base: col("COL6"), FieldName: "ZIPCODE"}, typ: types.NewDataTypeBigint(), exp: int64(94601)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ev := mustCompile(t, s, tc.e)
			assert.Equal(t, tc.typ, ev.Type())
			v, err := ev.Evaluate(r)
			if tc.expCode != "" {
				assert.True(t, errors.Is(err, tc.expCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v)
		})
	}

	ev := mustCompile(t, s, &expr.Dereference{Base: col("COL6"), FieldName: "CITY"})
	assert.Equal(t, "TEST1_COL6->CITY", ev.String())
}

func TestCompile_Cast(t *testing.T) {
	s := testSchema()

	for _, tc := range []struct {
		name    string
		e       expr.Expr
		col1    interface{}
		col3    interface{}
		exp     interface{}
		expCode errors.Code
	}{
		{name: "DoubleToBigintTruncates", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeBigint()}, col3: 3.9, exp: int64(3)},
		{name: "DoubleToIntegerTruncates", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeInteger()}, col3: 3.9, exp: int32(3)},
		{name: "NegativeDoubleToIntegerTruncates", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeInteger()}, col3: -3.9, exp: int32(-3)},
		{name: "NegativeTruncatesTowardZero", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeBigint()}, col3: -3.9, exp: int64(-3)},
		{name: "Saturates", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeBigint()}, col3: 1e30, exp: int64(math.MaxInt64)},
		{name: "SaturatesInteger", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeInteger()}, col3: -1e30, exp: int32(math.MinInt32)},
		{name: "NaNIsZero", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeInteger()}, col3: math.NaN(), exp: int32(0)},
		{name: "StringToInteger", e: &expr.Cast{Value: col("COL1"), Type: types.NewDataTypeInteger()}, col1: " 42 ", exp: int32(42)},
		{name: "BadString", e: &expr.Cast{Value: col("COL1"), Type: types.NewDataTypeInteger()}, col1: "abc", expCode: streamsql.ErrInvalidCast},
		{name: "StringToBoolean", e: &expr.Cast{Value: col("COL1"), Type: types.NewDataTypeBoolean()}, col1: "TRUE", exp: true},
		{name: "DoubleToString", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeString()}, col3: 1.5, exp: "1.5"},
		{name: "BigintToString", e: &expr.Cast{Value: col("COL0"), Type: types.NewDataTypeString()}, exp: "42"},
		{name: "NullStaysNull", e: &expr.Cast{Value: &expr.NullLiteral{}, Type: types.NewDataTypeDouble()}, exp: nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			col1 := tc.col1
			if col1 == nil {
				col1 = "x"
			}
			col3 := tc.col3
			if col3 == nil {
				col3 = 0.0
			}
			v, err := mustCompile(t, s, tc.e).Evaluate(testRow(t, s, int64(42), col1, "y", col3))
			if tc.expCode != "" {
				assert.True(t, errors.Is(err, tc.expCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	s := testSchema()

	for _, tc := range []struct {
		name    string
		e       expr.Expr
		expCode errors.Code
	}{
		{name: "UnknownColumn", e: col("NOPE"), expCode: streamsql.ErrColumnNotFound},
		{name: "ArithmeticOnString", e: arith(expr.OpAdd, col("COL1"), i32(1)), expCode: streamsql.ErrTypeIncompatibleWithArithmeticOperator},
		{name: "NegateString", e: &expr.ArithmeticUnary{Op: expr.OpSubtract, Operand: col("COL1")}, expCode: streamsql.ErrTypeIncompatibleWithArithmeticOperator},
		{name: "StringVersusBigint", e: cmp(expr.OpGreaterThan, col("COL1"), col("COL0")), expCode: streamsql.ErrTypesAreNotComparable},
		{name: "OrderedBooleans", e: cmp(expr.OpLessThan, boolean(true), boolean(false)), expCode: streamsql.ErrTypesAreNotComparable},
		{name: "NotOnBigint", e: &expr.Not{Operand: col("COL0")}, expCode: streamsql.ErrBooleanExpressionExpected},
		{name: "AndOnString", e: &expr.LogicalBinary{Op: expr.OpAnd, Left: boolean(true), Right: col("COL1")}, expCode: streamsql.ErrBooleanExpressionExpected},
		{name: "BetweenMixed", e: &expr.Between{Value: col("COL0"), Min: str("a"), Max: i32(3)}, expCode: streamsql.ErrTypeIncompatibleWithBetweenOperator},
		{name: "CastArray", e: &expr.Cast{Value: col("COL4"), Type: types.NewDataTypeBigint()}, expCode: streamsql.ErrUnsupportedCast},
		{name: "CastToArray", e: &expr.Cast{Value: col("COL0"), Type: types.NewDataTypeArray(types.NewDataTypeBigint())}, expCode: streamsql.ErrUnsupportedCast},
		{name: "CastDoubleToBoolean", e: &expr.Cast{Value: col("COL3"), Type: types.NewDataTypeBoolean()}, expCode: streamsql.ErrUnsupportedCast},
		{name: "LikeOnBigint", e: &expr.Like{Value: col("COL0"), Pattern: str("1%")}, expCode: streamsql.ErrTypeIncompatibleWithLikeOperator},
		{name: "SubscriptBigint", e: &expr.Subscript{Base: col("COL0"), Index: i32(1)}, expCode: streamsql.ErrTypeCannotBeSubscripted},
		{name: "ArrayStringIndex", e: &expr.Subscript{Base: col("COL4"), Index: str("a")}, expCode: streamsql.ErrInvalidSubscriptType},
		{name: "MapIntegerKey", e: &expr.Subscript{Base: col("COL5"), Index: i32(1)}, expCode: streamsql.ErrInvalidSubscriptType},
		{name: "DereferenceBigint", e: &expr.Dereference{Base: col("COL0"), FieldName: "X"}, expCode: streamsql.ErrTypeCannotBeDereferenced},
		{name: "UnknownField", e: &expr.Dereference{Base: col("COL6"), FieldName: "COUNTRY"}, expCode: streamsql.ErrFieldNotFound},
		{name: "UnknownFunction", e: call("FOO", i32(1)), expCode: streamsql.ErrCallUnknownFunction},
		{name: "WrongArity", e: call("UCASE", col("COL1"), col("COL2")), expCode: streamsql.ErrCallParameterCountMismatch},
		{name: "WrongArgType", e: call("UCASE", col("COL0")), expCode: streamsql.ErrCallParameterTypeMismatch},
		{name: "CaseResultMismatch", e: &expr.SearchedCase{
			WhenClauses: []*expr.WhenClause{{Operand: boolean(true), Result: i32(1)}},
			Default:     str("x"),
		}, expCode: streamsql.ErrTypeMismatch},
		{name: "CaseConditionNotBoolean", e: &expr.SearchedCase{
			WhenClauses: []*expr.WhenClause{{Operand: col("COL0"), Result: i32(1)}},
		}, expCode: streamsql.ErrBooleanExpressionExpected},
		{name: "NestedError", e: call("CONCAT", col("COL1"), call("UCASE", col("MISSING"))), expCode: streamsql.ErrColumnNotFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			before := testutil.ToFloat64(CounterCompileErrors.WithLabelValues(string(tc.expCode)))
			ev, err := Compile(s, tc.e, function.NewBuiltinRegistry())
			require.Error(t, err)
			assert.Nil(t, ev)
			assert.True(t, errors.Is(err, tc.expCode), "got %v", err)
			assert.Equal(t, before+1, testutil.ToFloat64(CounterCompileErrors.WithLabelValues(string(tc.expCode))))
		})
	}
}

func TestCompile_UnqualifiedColumn(t *testing.T) {
	s := schema.MustNew(types.NewStructField("COL0", types.NewDataTypeBigint()))
	ev := mustCompile(t, s, &expr.ColumnRef{Source: "TEST1", Name: "col0"})
	assert.Equal(t, "COL0", ev.String())

	r, err := row.New(s, []interface{}{int64(9)})
	require.NoError(t, err)
	v, err := ev.Evaluate(r)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)
}

func TestEvaluator_SchemaMismatch(t *testing.T) {
	s := testSchema()
	ev := mustCompile(t, s, col("COL0"))

	// An equal schema built separately is accepted.
	v, err := ev.Evaluate(testRow(t, testSchema(), int64(3), "a", "b", 0.0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	other := schema.MustNew(types.NewStructField("TEST1.COL0", types.NewDataTypeString()))
	r, err := row.New(other, []interface{}{"x"})
	require.NoError(t, err)
	_, err = ev.Evaluate(r)
	assert.True(t, errors.Is(err, streamsql.ErrSchemaMismatch), "got %v", err)
}

func TestEvaluator_Plan(t *testing.T) {
	s := testSchema()
	ev := mustCompile(t, s, cmp(expr.OpEqual, col("COL1"), str("x")))
	plan := ev.Plan()
	assert.Equal(t, "*compiler.Evaluator", plan["_expr"])
	assert.Equal(t, "BOOLEAN", plan["dataType"])
	root, ok := plan["root"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "*compiler.comparisonPlanExpression", root["_expr"])
}

func TestCompile_MetricsAndLogging(t *testing.T) {
	s := testSchema()
	before := testutil.ToFloat64(CounterExpressionsCompiled)
	buf := logger.NewBufferLogger()

	_, err := Compile(s, col("COL0"), function.NewBuiltinRegistry(), OptCompilerLogger(buf))
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(CounterExpressionsCompiled))
	assert.Contains(t, buf.String(), "DEBUG: compiled")
	assert.Contains(t, buf.String(), "TEST1_COL0")
}

func TestEvaluator_ConcurrentEvaluate(t *testing.T) {
	s := testSchema()
	ev := mustCompile(t, s, call("CONCAT", call("UCASE", col("COL1")), col("COL2")))

	const workers, perWorker = 8, 100
	rows := make([][]*row.Row, workers)
	for w := range rows {
		for i := 0; i < perWorker; i++ {
			rows[w] = append(rows[w], testRow(t, s, int64(i), fmt.Sprintf("w%d", w), fmt.Sprint(i), 0.0))
		}
	}

	var g errgroup.Group
	for w := range rows {
		w := w
		g.Go(func() error {
			for i, r := range rows[w] {
				v, err := ev.Evaluate(r)
				if err != nil {
					return err
				}
				if exp := fmt.Sprintf("W%d%d", w, i); v != exp {
					return fmt.Errorf("got %v, want %s", v, exp)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
