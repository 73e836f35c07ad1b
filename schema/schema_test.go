// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package schema_test

import (
	"testing"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/errors"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	s, err := schema.Parse("TEST1.COL0 BIGINT, TEST1.COL1 VARCHAR, TEST1.COL4 ARRAY<DOUBLE>")
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.FieldIndex("test1.col1"))
	assert.Equal(t, -1, s.FieldIndex("COL1"))
	assert.Equal(t, "TEST1.COL0 BIGINT, TEST1.COL1 VARCHAR, TEST1.COL4 ARRAY<DOUBLE>", s.String())

	fields := s.Fields()
	fields[0] = types.NewStructField("X", types.NewDataTypeBoolean())
	assert.Equal(t, "TEST1.COL0", s.Field(0).Name, "Fields must return a copy")

	t.Run("Equal", func(t *testing.T) {
		same, err := schema.Parse("test1.col0 BIGINT, test1.col1 STRING, test1.col4 ARRAY<DOUBLE>")
		require.NoError(t, err)
		assert.True(t, s.Equal(same))

		other, err := schema.Parse("TEST1.COL0 BIGINT, TEST1.COL1 VARCHAR, TEST1.COL4 ARRAY<BIGINT>")
		require.NoError(t, err)
		assert.False(t, s.Equal(other))
		assert.False(t, s.Equal(nil))
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := schema.Parse("A INT, a BIGINT")
		require.Error(t, err)
		assert.True(t, errors.Is(err, streamsql.ErrDuplicateColumn))
	})

	t.Run("BadType", func(t *testing.T) {
		_, err := schema.Parse("A FLOAT")
		assert.True(t, errors.Is(err, streamsql.ErrUnknownType))
	})
}
