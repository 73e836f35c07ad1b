// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package types_test

import (
	"testing"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/errors"
	"github.com/featurebasedb/streamsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitiveType(t *testing.T) {
	tests := []struct {
		token string
		exp   types.DataType
	}{
		{"BOOLEAN", types.NewDataTypeBoolean()},
		{"boolean", types.NewDataTypeBoolean()},
		{"INT", types.NewDataTypeInteger()},
		{"INTEGER", types.NewDataTypeInteger()},
		{"BIGINT", types.NewDataTypeBigint()},
		{"DOUBLE", types.NewDataTypeDouble()},
		{"VARCHAR", types.NewDataTypeString()},
		{"STRING", types.NewDataTypeString()},
	}
	for _, test := range tests {
		t.Run(test.token, func(t *testing.T) {
			got, err := types.ParsePrimitiveType(test.token)
			require.NoError(t, err)
			assert.True(t, types.Equal(test.exp, got), "got %s", got.TypeDescription())
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		for _, tok := range []string{"FLOAT", "TIMESTAMP", "ARRAY", ""} {
			_, err := types.ParsePrimitiveType(tok)
			require.Error(t, err)
			assert.True(t, errors.Is(err, streamsql.ErrUnknownType))
		}
		_, err := types.ParsePrimitiveType("FLOAT")
		assert.Contains(t, err.Error(), "FLOAT")
	})
}

func TestParseType(t *testing.T) {
	address := types.NewDataTypeStruct([]*types.StructField{
		types.NewStructField("NUMBER", types.NewDataTypeBigint()),
		types.NewStructField("STREET", types.NewDataTypeString()),
		types.NewStructField("ZIPCODE", types.NewDataTypeBigint()),
	})

	tests := []struct {
		spec string
		exp  types.DataType
		desc string
	}{
		{
			spec: "double",
			exp:  types.NewDataTypeDouble(),
			desc: "DOUBLE",
		},
		{
			spec: "ARRAY<DOUBLE>",
			exp:  types.NewDataTypeArray(types.NewDataTypeDouble()),
			desc: "ARRAY<DOUBLE>",
		},
		{
			spec: "MAP<STRING, DOUBLE>",
			exp:  types.NewDataTypeMap(types.NewDataTypeDouble()),
			desc: "MAP<VARCHAR,DOUBLE>",
		},
		{
			spec: "STRUCT<NUMBER BIGINT, STREET VARCHAR, ZIPCODE BIGINT>",
			exp:  address,
			desc: "STRUCT<NUMBER BIGINT, STREET VARCHAR, ZIPCODE BIGINT>",
		},
		{
			spec: "ARRAY<MAP<VARCHAR,ARRAY<INT>>>",
			exp:  types.NewDataTypeArray(types.NewDataTypeMap(types.NewDataTypeArray(types.NewDataTypeInteger()))),
			desc: "ARRAY<MAP<VARCHAR,ARRAY<INTEGER>>>",
		},
		{
			spec: "STRUCT<>",
			exp:  types.NewDataTypeStruct([]*types.StructField{}),
			desc: "STRUCT<>",
		},
	}
	for _, test := range tests {
		t.Run(test.spec, func(t *testing.T) {
			got, err := types.ParseType(test.spec)
			require.NoError(t, err)
			assert.True(t, types.Equal(test.exp, got), "got %s", got.TypeDescription())
			assert.Equal(t, test.desc, got.TypeDescription())

			// the description parses back to the same type
			again, err := types.ParseType(got.TypeDescription())
			require.NoError(t, err)
			assert.True(t, types.Equal(got, again))
		})
	}

	t.Run("Errors", func(t *testing.T) {
		badSpecs := []struct {
			spec string
			code errors.Code
		}{
			{"ARRAY<", streamsql.ErrUnknownType},
			{"ARRAY<DOUBLE", streamsql.ErrUnknownType},
			{"ARRAY<DOUBLE> X", streamsql.ErrUnknownType},
			{"MAP<BIGINT, DOUBLE>", streamsql.ErrInvalidMapKey},
			{"STRUCT<A>", streamsql.ErrUnknownType},
			{"STRUCT<, A INT>", streamsql.ErrUnknownType},
			{"DECIMAL", streamsql.ErrUnknownType},
		}
		for _, bad := range badSpecs {
			_, err := types.ParseType(bad.spec)
			require.Error(t, err, bad.spec)
			assert.True(t, errors.Is(err, bad.code), "%s: %v", bad.spec, err)
		}
	})
}

func TestParseFields(t *testing.T) {
	fields, err := types.ParseFields("ID BIGINT, NAME VARCHAR, TAGS ARRAY<STRING>")
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, "ID", fields[0].Name)
	assert.Equal(t, "TAGS ARRAY<VARCHAR>", fields[2].String())

	fields, err = types.ParseFields("  ")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestEqual(t *testing.T) {
	s1 := types.NewDataTypeStruct([]*types.StructField{types.NewStructField("a", types.NewDataTypeInteger())})
	s2 := types.NewDataTypeStruct([]*types.StructField{types.NewStructField("A", types.NewDataTypeInteger())})
	s3 := types.NewDataTypeStruct([]*types.StructField{types.NewStructField("A", types.NewDataTypeBigint())})

	assert.True(t, types.Equal(s1, s2))
	assert.False(t, types.Equal(s1, s3))
	assert.False(t, types.Equal(types.NewDataTypeInteger(), types.NewDataTypeBigint()))
	assert.False(t, types.Equal(types.NewDataTypeArray(types.NewDataTypeInteger()), types.NewDataTypeMap(types.NewDataTypeInteger())))
	assert.Equal(t, 0, s2.FieldIndex("a"))
	assert.Equal(t, -1, s2.FieldIndex("b"))
}

func TestWidestNumeric(t *testing.T) {
	i, l, d := types.NewDataTypeInteger(), types.NewDataTypeBigint(), types.NewDataTypeDouble()
	assert.Equal(t, types.BaseTypeInteger, types.WidestNumeric(i, i).BaseTypeName())
	assert.Equal(t, types.BaseTypeBigint, types.WidestNumeric(i, l).BaseTypeName())
	assert.Equal(t, types.BaseTypeDouble, types.WidestNumeric(l, d).BaseTypeName())
	assert.Equal(t, types.BaseTypeDouble, types.WidestNumeric(d, i).BaseTypeName())
}
