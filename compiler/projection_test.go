// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"testing"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/errors"
	"github.com/featurebasedb/streamsql/expr"
	"github.com/featurebasedb/streamsql/function"
	"github.com/featurebasedb/streamsql/processinglog"
	"github.com/featurebasedb/streamsql/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjection(t *testing.T) {
	s := testSchema()
	rec := processinglog.NewRecorder()

	p, err := NewProjection(s,
		cmp(expr.OpGreaterThan, col("COL0"), i32(100)),
		[]SelectItem{
			{Alias: "NAME", Expr: col("COL1")},
			{Expr: call("UCASE", col("COL2"))},
			{Alias: "RATIO", Expr: arith(expr.OpDivide, i64(1000), col("COL0"))},
		},
		function.NewBuiltinRegistry(),
		OptProjectionProcessingLog(rec),
	)
	require.NoError(t, err)

	out := p.Schema()
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "NAME", out.Field(0).Name)
	assert.Equal(t, "KSQL_COL_1", out.Field(1).Name)
	assert.Equal(t, types.NewDataTypeBigint(), out.Field(2).Type)

	t.Run("Kept", func(t *testing.T) {
		r, err := p.Apply(testRow(t, s, int64(200), "alice", "smith", 0.0))
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, []interface{}{"alice", "SMITH", int64(5)}, r.Values())
		assert.Same(t, out, r.Schema())
	})

	t.Run("Filtered", func(t *testing.T) {
		r, err := p.Apply(testRow(t, s, int64(50), "bob", "jones", 0.0))
		require.NoError(t, err)
		assert.Nil(t, r)

		r, err = p.Apply(testRow(t, s, nil, "bob", "jones", 0.0))
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	assert.Empty(t, rec.Messages())
}

func TestProjection_ReportsFailures(t *testing.T) {
	s := testSchema()
	rec := processinglog.NewRecorder()

	p, err := NewProjection(s, nil,
		[]SelectItem{{Alias: "Q", Expr: arith(expr.OpDivide, i64(10), col("COL0"))}},
		function.NewBuiltinRegistry(),
		OptProjectionProcessingLog(rec),
	)
	require.NoError(t, err)

	before := testutil.ToFloat64(CounterProjectionErrors)
	r, err := p.Apply(testRow(t, s, int64(0), "a", "b", 0.0))
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, streamsql.ErrDivisionByZero), "got %v", err)
	assert.Equal(t, before+1, testutil.ToFloat64(CounterProjectionErrors))

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, processinglog.TypeRecordProcessingError, msgs[0].Type)
	assert.Contains(t, msgs[0].RecordProcessingError.ErrorMessage, "division by zero")
}

func TestProjection_Errors(t *testing.T) {
	s := testSchema()
	reg := function.NewBuiltinRegistry()

	t.Run("FilterNotBoolean", func(t *testing.T) {
		_, err := NewProjection(s, col("COL0"), nil, reg)
		assert.True(t, errors.Is(err, streamsql.ErrBooleanExpressionExpected), "got %v", err)
	})

	t.Run("DuplicateAlias", func(t *testing.T) {
		_, err := NewProjection(s, nil, []SelectItem{
			{Alias: "A", Expr: col("COL0")},
			{Alias: "a", Expr: col("COL1")},
		}, reg)
		assert.True(t, errors.Is(err, streamsql.ErrDuplicateColumn), "got %v", err)
	})

	t.Run("CompileError", func(t *testing.T) {
		_, err := NewProjection(s, nil, []SelectItem{{Expr: col("MISSING")}}, reg)
		assert.True(t, errors.Is(err, streamsql.ErrColumnNotFound), "got %v", err)
	})
}
