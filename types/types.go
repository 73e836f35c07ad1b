// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package types contains the closed set of column and expression types
// understood by the compiler and the decoder.
package types

import (
	"fmt"
	"strings"
)

const (
	BaseTypeBoolean = "BOOLEAN"
	BaseTypeInteger = "INTEGER"
	BaseTypeBigint  = "BIGINT"
	BaseTypeDouble  = "DOUBLE"
	BaseTypeString  = "VARCHAR"
	BaseTypeArray   = "ARRAY"
	BaseTypeMap     = "MAP"
	BaseTypeStruct  = "STRUCT"
	BaseTypeVoid    = "VOID"
)

// DataType is the interface for all types. The set of implementations is
// closed.
type DataType interface {
	dataType()
	// the base type name e.g. INTEGER or ARRAY
	BaseTypeName() string
	// the full type specification as a string, e.g. ARRAY<DOUBLE>; always
	// accepted by ParseType
	TypeDescription() string
}

func (*DataTypeBoolean) dataType() {}
func (*DataTypeInteger) dataType() {}
func (*DataTypeBigint) dataType()  {}
func (*DataTypeDouble) dataType()  {}
func (*DataTypeString) dataType()  {}
func (*DataTypeArray) dataType()   {}
func (*DataTypeMap) dataType()     {}
func (*DataTypeStruct) dataType()  {}
func (*DataTypeVoid) dataType()    {}

type DataTypeBoolean struct{}

func NewDataTypeBoolean() *DataTypeBoolean {
	return &DataTypeBoolean{}
}

func (*DataTypeBoolean) BaseTypeName() string {
	return BaseTypeBoolean
}

func (dt *DataTypeBoolean) TypeDescription() string {
	return dt.BaseTypeName()
}

// DataTypeInteger is a signed 32-bit integer.
type DataTypeInteger struct{}

func NewDataTypeInteger() *DataTypeInteger {
	return &DataTypeInteger{}
}

func (*DataTypeInteger) BaseTypeName() string {
	return BaseTypeInteger
}

func (dt *DataTypeInteger) TypeDescription() string {
	return dt.BaseTypeName()
}

// DataTypeBigint is a signed 64-bit integer.
type DataTypeBigint struct{}

func NewDataTypeBigint() *DataTypeBigint {
	return &DataTypeBigint{}
}

func (*DataTypeBigint) BaseTypeName() string {
	return BaseTypeBigint
}

func (dt *DataTypeBigint) TypeDescription() string {
	return dt.BaseTypeName()
}

type DataTypeDouble struct{}

func NewDataTypeDouble() *DataTypeDouble {
	return &DataTypeDouble{}
}

func (*DataTypeDouble) BaseTypeName() string {
	return BaseTypeDouble
}

func (dt *DataTypeDouble) TypeDescription() string {
	return dt.BaseTypeName()
}

type DataTypeString struct{}

func NewDataTypeString() *DataTypeString {
	return &DataTypeString{}
}

func (*DataTypeString) BaseTypeName() string {
	return BaseTypeString
}

func (dt *DataTypeString) TypeDescription() string {
	return dt.BaseTypeName()
}

type DataTypeArray struct {
	ElementType DataType
}

func NewDataTypeArray(elementType DataType) *DataTypeArray {
	return &DataTypeArray{
		ElementType: elementType,
	}
}

func (*DataTypeArray) BaseTypeName() string {
	return BaseTypeArray
}

func (dt *DataTypeArray) TypeDescription() string {
	return fmt.Sprintf("ARRAY<%s>", dt.ElementType.TypeDescription())
}

// DataTypeMap is a map with VARCHAR keys.
type DataTypeMap struct {
	ValueType DataType
}

func NewDataTypeMap(valueType DataType) *DataTypeMap {
	return &DataTypeMap{
		ValueType: valueType,
	}
}

func (*DataTypeMap) BaseTypeName() string {
	return BaseTypeMap
}

func (dt *DataTypeMap) TypeDescription() string {
	return fmt.Sprintf("MAP<VARCHAR,%s>", dt.ValueType.TypeDescription())
}

// StructField is a named, typed member of a struct or a schema.
type StructField struct {
	Name string
	Type DataType
}

func NewStructField(name string, typ DataType) *StructField {
	return &StructField{
		Name: name,
		Type: typ,
	}
}

func (f *StructField) String() string {
	return f.Name + " " + f.Type.TypeDescription()
}

type DataTypeStruct struct {
	Fields []*StructField
}

func NewDataTypeStruct(fields []*StructField) *DataTypeStruct {
	return &DataTypeStruct{
		Fields: fields,
	}
}

func (*DataTypeStruct) BaseTypeName() string {
	return BaseTypeStruct
}

func (dt *DataTypeStruct) TypeDescription() string {
	var sb strings.Builder
	sb.WriteString("STRUCT<")
	for i, f := range dt.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.String())
	}
	sb.WriteString(">")
	return sb.String()
}

// FieldIndex returns the position of the field with the given name,
// compared case-insensitively, or -1.
func (dt *DataTypeStruct) FieldIndex(name string) int {
	for i, f := range dt.Fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// DataTypeVoid is the type of an untyped NULL literal. It is never a column
// type.
type DataTypeVoid struct{}

func NewDataTypeVoid() *DataTypeVoid {
	return &DataTypeVoid{}
}

func (*DataTypeVoid) BaseTypeName() string {
	return BaseTypeVoid
}

func (dt *DataTypeVoid) TypeDescription() string {
	return dt.BaseTypeName()
}

// Equal reports whether a and b describe the same type. Struct field names
// are compared case-insensitively; field order is significant.
func Equal(a, b DataType) bool {
	switch at := a.(type) {
	case *DataTypeBoolean:
		_, ok := b.(*DataTypeBoolean)
		return ok
	case *DataTypeInteger:
		_, ok := b.(*DataTypeInteger)
		return ok
	case *DataTypeBigint:
		_, ok := b.(*DataTypeBigint)
		return ok
	case *DataTypeDouble:
		_, ok := b.(*DataTypeDouble)
		return ok
	case *DataTypeString:
		_, ok := b.(*DataTypeString)
		return ok
	case *DataTypeVoid:
		_, ok := b.(*DataTypeVoid)
		return ok
	case *DataTypeArray:
		bt, ok := b.(*DataTypeArray)
		return ok && Equal(at.ElementType, bt.ElementType)
	case *DataTypeMap:
		bt, ok := b.(*DataTypeMap)
		return ok && Equal(at.ValueType, bt.ValueType)
	case *DataTypeStruct:
		bt, ok := b.(*DataTypeStruct)
		if !ok || len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			if !strings.EqualFold(at.Fields[i].Name, bt.Fields[i].Name) {
				return false
			}
			if !Equal(at.Fields[i].Type, bt.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsNumeric is true for INTEGER, BIGINT and DOUBLE.
func IsNumeric(t DataType) bool {
	switch t.(type) {
	case *DataTypeInteger, *DataTypeBigint, *DataTypeDouble:
		return true
	}
	return false
}

// IsPrimitive is true for every type that is not ARRAY, MAP or STRUCT.
func IsPrimitive(t DataType) bool {
	switch t.(type) {
	case *DataTypeBoolean, *DataTypeInteger, *DataTypeBigint, *DataTypeDouble, *DataTypeString:
		return true
	}
	return false
}

// IsVoid is true for the type of an untyped NULL.
func IsVoid(t DataType) bool {
	_, ok := t.(*DataTypeVoid)
	return ok
}

// WidestNumeric returns the promoted type of an arithmetic or comparison
// over a and b: DOUBLE if either is DOUBLE, else BIGINT if either is BIGINT,
// else INTEGER. Both arguments must be numeric.
func WidestNumeric(a, b DataType) DataType {
	_, ad := a.(*DataTypeDouble)
	_, bd := b.(*DataTypeDouble)
	if ad || bd {
		return NewDataTypeDouble()
	}
	_, al := a.(*DataTypeBigint)
	_, bl := b.(*DataTypeBigint)
	if al || bl {
		return NewDataTypeBigint()
	}
	return NewDataTypeInteger()
}
