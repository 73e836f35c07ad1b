// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package processinglog reports per-record failures of the decode and
// evaluation paths.
package processinglog

import (
	"encoding/base64"
	"sync"

	"github.com/featurebasedb/streamsql/logger"
	"github.com/featurebasedb/streamsql/row"
)

// MessageType identifies the kind of failure a Message describes.
type MessageType string

const (
	TypeDeserializationError  MessageType = "DESERIALIZATION_ERROR"
	TypeRecordProcessingError MessageType = "RECORD_PROCESSING_ERROR"
)

// DeserializationError describes a record which could not be decoded.
// RecordB64 is nil unless row logging is enabled.
type DeserializationError struct {
	ErrorMessage string  `json:"errorMessage"`
	RecordB64    *string `json:"recordB64,omitempty"`
}

// RecordProcessingError describes a decoded row which failed evaluation.
type RecordProcessingError struct {
	ErrorMessage string `json:"errorMessage"`
	Record       string `json:"record,omitempty"`
}

// Message is one processing log entry.
type Message struct {
	Type                  MessageType            `json:"type"`
	DeserializationError  *DeserializationError  `json:"deserializationError,omitempty"`
	RecordProcessingError *RecordProcessingError `json:"recordProcessingError,omitempty"`
}

// Logger receives processing log messages. Error is called synchronously on
// the failing path.
type Logger interface {
	Error(msg Message)
}

// DeserializationErrorMessage builds the message for a decode failure of
// data. The record bytes are included, base64 encoded, when includeRows is
// set.
func DeserializationErrorMessage(err error, data []byte, includeRows bool) Message {
	de := &DeserializationError{ErrorMessage: err.Error()}
	if includeRows && data != nil {
		s := base64.StdEncoding.EncodeToString(data)
		de.RecordB64 = &s
	}
	return Message{
		Type:                 TypeDeserializationError,
		DeserializationError: de,
	}
}

// RecordProcessingErrorMessage builds the message for an evaluation failure
// on r. r may be nil.
func RecordProcessingErrorMessage(err error, r *row.Row) Message {
	pe := &RecordProcessingError{ErrorMessage: err.Error()}
	if r != nil {
		pe.Record = r.String()
	}
	return Message{
		Type:                  TypeRecordProcessingError,
		RecordProcessingError: pe,
	}
}

// Nop discards every message.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Error(Message) {}

// LoggerOption configures a logger-backed processing log.
type LoggerOption func(l *logLogger)

// OptLoggerIncludeRows controls whether record contents are written.
func OptLoggerIncludeRows(include bool) LoggerOption {
	return func(l *logLogger) {
		l.includeRows = include
	}
}

type logLogger struct {
	log         logger.Logger
	includeRows bool
}

// NewLogger returns a processing log writing each message at error level
// to log.
func NewLogger(log logger.Logger, opts ...LoggerOption) Logger {
	l := &logLogger{log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *logLogger) Error(msg Message) {
	switch msg.Type {
	case TypeDeserializationError:
		de := msg.DeserializationError
		if de == nil {
			break
		}
		if l.includeRows && de.RecordB64 != nil {
			l.log.Errorf("%s: %s record=%s", msg.Type, de.ErrorMessage, *de.RecordB64)
			return
		}
		l.log.Errorf("%s: %s", msg.Type, de.ErrorMessage)
		return
	case TypeRecordProcessingError:
		pe := msg.RecordProcessingError
		if pe == nil {
			break
		}
		if l.includeRows && pe.Record != "" {
			l.log.Errorf("%s: %s record=%s", msg.Type, pe.ErrorMessage, pe.Record)
			return
		}
		l.log.Errorf("%s: %s", msg.Type, pe.ErrorMessage)
		return
	}
	l.log.Errorf("%s", msg.Type)
}

// Recorder keeps every message it receives. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Error(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the messages received so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset drops all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
