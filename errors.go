// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package streamsql is the execution core of a streaming SQL processor: the
// compiler package turns typed expression trees into evaluators over rows,
// and the serde package decodes serialized records into those rows. This
// package holds the error codes and constructors shared by all of them.
package streamsql

import (
	"fmt"
	"runtime"

	"github.com/featurebasedb/streamsql/errors"
)

const (
	ErrInternal errors.Code = "ErrInternal"

	// type model and schema
	ErrUnknownType     errors.Code = "ErrUnknownType"
	ErrDuplicateColumn errors.Code = "ErrDuplicateColumn"
	ErrInvalidMapKey   errors.Code = "ErrInvalidMapKey"

	// compilation
	ErrColumnNotFound                         errors.Code = "ErrColumnNotFound"
	ErrFieldNotFound                          errors.Code = "ErrFieldNotFound"
	ErrTypeMismatch                           errors.Code = "ErrTypeMismatch"
	ErrTypesAreNotComparable                  errors.Code = "ErrTypesAreNotComparable"
	ErrTypeIncompatibleWithArithmeticOperator errors.Code = "ErrTypeIncompatibleWithArithmeticOperator"
	ErrTypeIncompatibleWithLikeOperator       errors.Code = "ErrTypeIncompatibleWithLikeOperator"
	ErrTypeIncompatibleWithBetweenOperator    errors.Code = "ErrTypeIncompatibleWithBetweenOperator"
	ErrBooleanExpressionExpected              errors.Code = "ErrBooleanExpressionExpected"
	ErrTypeCannotBeSubscripted                errors.Code = "ErrTypeCannotBeSubscripted"
	ErrInvalidSubscriptType                   errors.Code = "ErrInvalidSubscriptType"
	ErrTypeCannotBeDereferenced               errors.Code = "ErrTypeCannotBeDereferenced"
	ErrUnsupportedCast                        errors.Code = "ErrUnsupportedCast"
	ErrCallUnknownFunction                    errors.Code = "ErrCallUnknownFunction"
	ErrCallParameterCountMismatch             errors.Code = "ErrCallParameterCountMismatch"
	ErrCallParameterTypeMismatch              errors.Code = "ErrCallParameterTypeMismatch"
	ErrSchemaMismatch                         errors.Code = "ErrSchemaMismatch"
	ErrInvalidExpression                      errors.Code = "ErrInvalidExpression"

	// evaluation
	ErrInvalidCast     errors.Code = "ErrInvalidCast"
	ErrIndexOutOfRange errors.Code = "ErrIndexOutOfRange"
	ErrDivisionByZero  errors.Code = "ErrDivisionByZero"

	// decoding
	ErrInvalidTypeCoercion errors.Code = "ErrInvalidTypeCoercion"
	ErrUnsupportedType     errors.Code = "ErrUnsupportedType"
	ErrInvalidFieldName    errors.Code = "ErrInvalidFieldName"
	ErrMalformedRecord     errors.Code = "ErrMalformedRecord"
	ErrDeserialization     errors.Code = "ErrDeserialization"
	ErrUnknownFormat       errors.Code = "ErrUnknownFormat"
)

func NewErrInternal(msg string) error {
	preamble := "internal error"
	_, filename, line, ok := runtime.Caller(1)
	if ok {
		preamble = fmt.Sprintf("internal error (%s:%d)", filename, line)
	}
	return errors.New(
		ErrInternal,
		fmt.Sprintf("%s %s", preamble, msg),
	)
}

func NewErrInternalf(format string, a ...interface{}) error {
	preamble := "internal error"
	_, filename, line, ok := runtime.Caller(1)
	if ok {
		preamble = fmt.Sprintf("internal error (%s:%d)", filename, line)
	}
	errorMessage := fmt.Sprintf(format, a...)
	return errors.New(
		ErrInternal,
		fmt.Sprintf("%s %s", preamble, errorMessage),
	)
}

// NewErrUnknownType is returned when a type token cannot be resolved.
func NewErrUnknownType(token string) error {
	return errors.New(
		ErrUnknownType,
		fmt.Sprintf("invalid primitive column type '%s'", token),
	)
}

func NewErrUnknownTypeSpec(spec string, reason string) error {
	return errors.New(
		ErrUnknownType,
		fmt.Sprintf("invalid column type '%s': %s", spec, reason),
	)
}

func NewErrDuplicateColumn(column string) error {
	return errors.New(
		ErrDuplicateColumn,
		fmt.Sprintf("duplicate column '%s'", column),
	)
}

func NewErrInvalidMapKey(keyType string) error {
	return errors.New(
		ErrInvalidMapKey,
		fmt.Sprintf("map keys must be VARCHAR, got '%s'", keyType),
	)
}

func NewErrColumnNotFound(column string) error {
	return errors.New(
		ErrColumnNotFound,
		fmt.Sprintf("column '%s' not found", column),
	)
}

func NewErrFieldNotFound(field string, structType string) error {
	return errors.New(
		ErrFieldNotFound,
		fmt.Sprintf("field '%s' not found in '%s'", field, structType),
	)
}

func NewErrTypeMismatch(type1, type2 string) error {
	return errors.New(
		ErrTypeMismatch,
		fmt.Sprintf("types '%s' and '%s' do not match", type1, type2),
	)
}

func NewErrRowValueMismatch(position int, column string, expected string, value interface{}) error {
	return errors.New(
		ErrTypeMismatch,
		fmt.Sprintf("value %v (%T) at position %d is not valid for column '%s' of type '%s'", value, value, position, column, expected),
	)
}

func NewErrRowLengthMismatch(expected, got int) error {
	return errors.New(
		ErrTypeMismatch,
		fmt.Sprintf("row has %d values, schema has %d columns", got, expected),
	)
}

func NewErrTypesAreNotComparable(type1, type2 string, op string) error {
	return errors.New(
		ErrTypesAreNotComparable,
		fmt.Sprintf("types '%s' and '%s' are not comparable using '%s'", type1, type2, op),
	)
}

func NewErrTypeIncompatibleWithArithmeticOperator(op string, typeName string) error {
	return errors.New(
		ErrTypeIncompatibleWithArithmeticOperator,
		fmt.Sprintf("operator '%s' incompatible with type '%s'", op, typeName),
	)
}

func NewErrTypeIncompatibleWithLikeOperator(typeName string) error {
	return errors.New(
		ErrTypeIncompatibleWithLikeOperator,
		fmt.Sprintf("operator 'LIKE' incompatible with type '%s'", typeName),
	)
}

func NewErrTypeIncompatibleWithBetweenOperator(typeName string) error {
	return errors.New(
		ErrTypeIncompatibleWithBetweenOperator,
		fmt.Sprintf("operator 'BETWEEN' incompatible with type '%s'", typeName),
	)
}

func NewErrBooleanExpressionExpected(typeName string) error {
	return errors.New(
		ErrBooleanExpressionExpected,
		fmt.Sprintf("boolean expression expected, got '%s'", typeName),
	)
}

func NewErrTypeCannotBeSubscripted(typeName string) error {
	return errors.New(
		ErrTypeCannotBeSubscripted,
		fmt.Sprintf("type '%s' cannot be subscripted", typeName),
	)
}

func NewErrInvalidSubscriptType(baseType string, indexType string) error {
	return errors.New(
		ErrInvalidSubscriptType,
		fmt.Sprintf("type '%s' cannot be used to subscript '%s'", indexType, baseType),
	)
}

func NewErrTypeCannotBeDereferenced(typeName string) error {
	return errors.New(
		ErrTypeCannotBeDereferenced,
		fmt.Sprintf("type '%s' has no fields", typeName),
	)
}

// NewErrUnsupportedCast is returned at compile time for a (source, target)
// pair that has no conversion.
func NewErrUnsupportedCast(from, to string) error {
	return errors.New(
		ErrUnsupportedCast,
		fmt.Sprintf("'%s' cannot be cast to '%s'", from, to),
	)
}

func NewErrCallUnknownFunction(name string) error {
	return errors.New(
		ErrCallUnknownFunction,
		fmt.Sprintf("unknown function '%s'", name),
	)
}

func NewErrCallParameterCountMismatch(name string, min, max, got int) error {
	expected := fmt.Sprintf("%d", min)
	if max < 0 {
		expected = fmt.Sprintf("at least %d", min)
	} else if max != min {
		expected = fmt.Sprintf("%d to %d", min, max)
	}
	return errors.New(
		ErrCallParameterCountMismatch,
		fmt.Sprintf("'%s': count of formal parameters (%s) does not match count of actual parameters (%d)", name, expected, got),
	)
}

func NewErrCallParameterTypeMismatch(name string, position int, expected, got string) error {
	return errors.New(
		ErrCallParameterTypeMismatch,
		fmt.Sprintf("'%s': parameter %d must be '%s', got '%s'", name, position, expected, got),
	)
}

func NewErrSchemaMismatch(expected, got string) error {
	return errors.New(
		ErrSchemaMismatch,
		fmt.Sprintf("row schema '%s' does not match compiled schema '%s'", got, expected),
	)
}

func NewErrInvalidExpression(reason string) error {
	return errors.New(
		ErrInvalidExpression,
		fmt.Sprintf("invalid expression: %s", reason),
	)
}

func NewErrInvalidCast(value interface{}, to string) error {
	return errors.New(
		ErrInvalidCast,
		fmt.Sprintf("'%v' cannot be cast to '%s'", value, to),
	)
}

func NewErrIndexOutOfRange(index int64, length int) error {
	return errors.New(
		ErrIndexOutOfRange,
		fmt.Sprintf("index %d out of range for array of length %d", index, length),
	)
}

func NewErrDivisionByZero() error {
	return errors.New(
		ErrDivisionByZero,
		"division by zero",
	)
}

// NewErrInvalidTypeCoercion is returned when a decoded value cannot be coerced
// to its declared column type.
func NewErrInvalidTypeCoercion(value string, kind string, to string) error {
	return errors.New(
		ErrInvalidTypeCoercion,
		fmt.Sprintf("cannot coerce %s '%s' to '%s'", kind, value, to),
	)
}

func NewErrUnsupportedType(typeName string) error {
	return errors.New(
		ErrUnsupportedType,
		fmt.Sprintf("unsupported type '%s'", typeName),
	)
}

func NewErrInvalidFieldName(name string) error {
	return errors.New(
		ErrInvalidFieldName,
		fmt.Sprintf("field name cannot be '%s'", name),
	)
}

func NewErrMalformedRecord(reason string) error {
	return errors.New(
		ErrMalformedRecord,
		fmt.Sprintf("malformed record: %s", reason),
	)
}

// NewErrDeserialization wraps the underlying decode or coercion failure.
func NewErrDeserialization(topic string, cause error) error {
	return errors.NewWithCause(
		ErrDeserialization,
		fmt.Sprintf("failed to deserialize data for topic: %s", topic),
		cause,
	)
}

func NewErrUnknownFormat(format string) error {
	return errors.New(
		ErrUnknownFormat,
		fmt.Sprintf("unknown data format '%s'", format),
	)
}
