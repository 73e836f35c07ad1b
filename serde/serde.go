// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package serde decodes serialized records into rows of a schema.
//
// Decoding is done in two steps. The payload is first decoded structurally
// into a Node tree without reference to the schema, and the tree is then
// coerced column by column into the schema's types.
package serde

import (
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/logger"
	"github.com/featurebasedb/streamsql/processinglog"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/schema"
)

const (
	FormatJSON = "JSON"
	FormatAvro = "AVRO"
)

// Formats lists the supported serialization formats.
var Formats = []string{FormatJSON, FormatAvro}

// Deserializer decodes one record into a row. A nil row with a nil error
// means the record had no payload. The topic only appears in logs and
// errors.
type Deserializer interface {
	Deserialize(topic string, data []byte) (*row.Row, error)
}

// Option configures a deserializer.
type Option func(o *options)

type options struct {
	logger      logger.Logger
	includeRows bool
	avroSchema  string
}

// OptLogger sets the logger which receives decoded rows at debug level.
func OptLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// OptIncludeRows controls whether the raw record is attached to processing
// log messages.
func OptIncludeRows(include bool) Option {
	return func(o *options) {
		o.includeRows = include
	}
}

// OptAvroSchema sets the writer schema of Avro records.
func OptAvroSchema(schemaJSON string) Option {
	return func(o *options) {
		o.avroSchema = schemaJSON
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logger.NopLogger}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns a deserializer for format, which is matched
// case-insensitively.
func New(format string, s *schema.Schema, recordLogger processinglog.Logger, opts ...Option) (Deserializer, error) {
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case FormatJSON:
		return NewJSONDeserializer(s, recordLogger, opts...), nil
	case FormatAvro:
		o := newOptions(opts)
		d, err := NewAvroDeserializer(s, o.avroSchema, recordLogger, opts...)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, streamsql.NewErrUnknownFormat(format)
	}
}

// base holds what every format shares: it turns a structural decoder into
// a Deserializer.
type base struct {
	format       string
	schema       *schema.Schema
	recordLogger processinglog.Logger
	options
}

func newBase(format string, s *schema.Schema, recordLogger processinglog.Logger, opts []Option) base {
	if recordLogger == nil {
		recordLogger = processinglog.Nop
	}
	return base{
		format:       format,
		schema:       s,
		recordLogger: recordLogger,
		options:      newOptions(opts),
	}
}

func (b *base) deserialize(topic string, data []byte, decode func() (Node, error)) (*row.Row, error) {
	r, err := b.toRow(decode)
	if err != nil {
		CounterDeserializationErrors.WithLabelValues(b.format).Inc()
		b.recordLogger.Error(processinglog.DeserializationErrorMessage(err, data, b.includeRows))
		return nil, streamsql.NewErrDeserialization(topic, err)
	}
	if r == nil {
		CounterNullRecords.WithLabelValues(b.format).Inc()
		return nil, nil
	}
	CounterRecordsDeserialized.WithLabelValues(b.format).Inc()
	b.logger.Debugf("deserialized row. topic: %s, row: %s", topic, r)
	return r, nil
}

func (b *base) toRow(decode func() (Node, error)) (*row.Row, error) {
	n, err := decode()
	if err != nil {
		return nil, err
	}
	return CoerceRow(b.schema, n)
}

// Schema returns the schema rows are decoded into.
func (b *base) Schema() *schema.Schema {
	return b.schema
}

// JSONDeserializer decodes JSON objects.
type JSONDeserializer struct {
	base
}

// NewJSONDeserializer returns a JSON deserializer for s. Decoding failures
// are reported to recordLogger before they are returned.
func NewJSONDeserializer(s *schema.Schema, recordLogger processinglog.Logger, opts ...Option) *JSONDeserializer {
	return &JSONDeserializer{base: newBase(FormatJSON, s, recordLogger, opts)}
}

// Deserialize implements Deserializer.
func (d *JSONDeserializer) Deserialize(topic string, data []byte) (*row.Row, error) {
	return d.deserialize(topic, data, func() (Node, error) {
		return DecodeJSON(data)
	})
}

// AvroDeserializer decodes binary Avro datums written with a known schema.
type AvroDeserializer struct {
	base
	decoder *avroDecoder
}

// NewAvroDeserializer returns an Avro deserializer for records written
// with writerSchema.
func NewAvroDeserializer(s *schema.Schema, writerSchema string, recordLogger processinglog.Logger, opts ...Option) (*AvroDeserializer, error) {
	if strings.TrimSpace(writerSchema) == "" {
		return nil, streamsql.NewErrMalformedRecord("an avro writer schema is required")
	}
	dec, err := newAvroDecoder(writerSchema)
	if err != nil {
		return nil, err
	}
	return &AvroDeserializer{
		base:    newBase(FormatAvro, s, recordLogger, opts),
		decoder: dec,
	}, nil
}

// Deserialize implements Deserializer.
func (d *AvroDeserializer) Deserialize(topic string, data []byte) (*row.Row, error) {
	return d.deserialize(topic, data, func() (Node, error) {
		return d.decoder.decode(data)
	})
}

// DeserializeNative converts a value goavro has already decoded with the
// writer schema, such as a record read from an object container file.
func (d *AvroDeserializer) DeserializeNative(topic string, native interface{}) (*row.Row, error) {
	return d.deserialize(topic, nil, func() (Node, error) {
		return d.decoder.native(native)
	})
}
