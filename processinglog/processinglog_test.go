// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package processinglog_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/featurebasedb/streamsql/logger"
	"github.com/featurebasedb/streamsql/processinglog"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializationErrorMessage(t *testing.T) {
	cause := fmt.Errorf("unexpected end of input")

	t.Run("WithoutRows", func(t *testing.T) {
		msg := processinglog.DeserializationErrorMessage(cause, []byte(`{"a":`), false)
		assert.Equal(t, processinglog.TypeDeserializationError, msg.Type)
		require.NotNil(t, msg.DeserializationError)
		assert.Equal(t, "unexpected end of input", msg.DeserializationError.ErrorMessage)
		assert.Nil(t, msg.DeserializationError.RecordB64)
		assert.Nil(t, msg.RecordProcessingError)
	})

	t.Run("WithRows", func(t *testing.T) {
		msg := processinglog.DeserializationErrorMessage(cause, []byte("abc"), true)
		require.NotNil(t, msg.DeserializationError.RecordB64)
		assert.Equal(t, "YWJj", *msg.DeserializationError.RecordB64)
	})

	t.Run("JSON", func(t *testing.T) {
		msg := processinglog.DeserializationErrorMessage(cause, []byte("abc"), true)
		b, err := json.Marshal(msg)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"DESERIALIZATION_ERROR","deserializationError":{"errorMessage":"unexpected end of input","recordB64":"YWJj"}}`, string(b))
	})
}

func TestRecordProcessingErrorMessage(t *testing.T) {
	s := schema.MustNew(types.NewStructField("COL0", types.NewDataTypeBigint()))
	r, err := row.New(s, []interface{}{int64(7)})
	require.NoError(t, err)

	msg := processinglog.RecordProcessingErrorMessage(fmt.Errorf("division by zero"), r)
	assert.Equal(t, processinglog.TypeRecordProcessingError, msg.Type)
	require.NotNil(t, msg.RecordProcessingError)
	assert.Equal(t, "division by zero", msg.RecordProcessingError.ErrorMessage)
	assert.Equal(t, r.String(), msg.RecordProcessingError.Record)

	msg = processinglog.RecordProcessingErrorMessage(fmt.Errorf("boom"), nil)
	assert.Empty(t, msg.RecordProcessingError.Record)
}

func TestLogger(t *testing.T) {
	cause := fmt.Errorf("bad json")
	data := []byte("abc")

	for _, tc := range []struct {
		name        string
		includeRows bool
		exp         string
	}{
		{name: "Plain", includeRows: false, exp: "ERROR: DESERIALIZATION_ERROR: bad json\n"},
		{name: "IncludeRows", includeRows: true, exp: "ERROR: DESERIALIZATION_ERROR: bad json record=YWJj\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			buf := logger.NewBufferLogger()
			pl := processinglog.NewLogger(buf, processinglog.OptLoggerIncludeRows(tc.includeRows))
			pl.Error(processinglog.DeserializationErrorMessage(cause, data, true))
			assert.Equal(t, tc.exp, buf.String())
		})
	}
}

func TestRecorder(t *testing.T) {
	rec := processinglog.NewRecorder()
	rec.Error(processinglog.DeserializationErrorMessage(fmt.Errorf("a"), nil, false))
	rec.Error(processinglog.RecordProcessingErrorMessage(fmt.Errorf("b"), nil))

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, processinglog.TypeDeserializationError, msgs[0].Type)
	assert.Equal(t, processinglog.TypeRecordProcessingError, msgs[1].Type)

	rec.Reset()
	assert.Empty(t, rec.Messages())

	// Nop accepts anything.
	processinglog.Nop.Error(msgs[0])
}
