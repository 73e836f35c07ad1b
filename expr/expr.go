// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package expr defines the analyzed expression tree which is the input to
// the compiler. The set of node types is closed.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/featurebasedb/streamsql/types"
)

// Expr is implemented by every expression node.
type Expr interface {
	expr()
	String() string
}

func (*ColumnRef) expr()        {}
func (*BooleanLiteral) expr()   {}
func (*IntegerLiteral) expr()   {}
func (*LongLiteral) expr()      {}
func (*DoubleLiteral) expr()    {}
func (*StringLiteral) expr()    {}
func (*NullLiteral) expr()      {}
func (*ArithmeticUnary) expr()  {}
func (*ArithmeticBinary) expr() {}
func (*Comparison) expr()       {}
func (*LogicalBinary) expr()    {}
func (*Not) expr()              {}
func (*IsNull) expr()           {}
func (*IsNotNull) expr()        {}
func (*Between) expr()          {}
func (*Cast) expr()             {}
func (*Like) expr()             {}
func (*SearchedCase) expr()     {}
func (*Subscript) expr()        {}
func (*Dereference) expr()      {}
func (*FunctionCall) expr()     {}

// ColumnRef references a column, optionally qualified by its source.
type ColumnRef struct {
	Source string
	Name   string
}

func (e *ColumnRef) String() string {
	if e.Source == "" {
		return e.Name
	}
	return e.Source + "." + e.Name
}

type BooleanLiteral struct {
	Value bool
}

func (e *BooleanLiteral) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

// IntegerLiteral is a 32-bit integer literal.
type IntegerLiteral struct {
	Value int32
}

func (e *IntegerLiteral) String() string {
	return strconv.FormatInt(int64(e.Value), 10)
}

// LongLiteral is a 64-bit integer literal.
type LongLiteral struct {
	Value int64
}

func (e *LongLiteral) String() string {
	return strconv.FormatInt(e.Value, 10)
}

type DoubleLiteral struct {
	Value float64
}

func (e *DoubleLiteral) String() string {
	return strconv.FormatFloat(e.Value, 'g', -1, 64)
}

type StringLiteral struct {
	Value string
}

func (e *StringLiteral) String() string {
	return "'" + strings.ReplaceAll(e.Value, "'", "''") + "'"
}

type NullLiteral struct{}

func (e *NullLiteral) String() string {
	return "NULL"
}

// ArithmeticUnary is a unary minus or plus.
type ArithmeticUnary struct {
	Op      ArithmeticOp
	Operand Expr
}

func (e *ArithmeticUnary) String() string {
	return e.Op.String() + e.Operand.String()
}

type ArithmeticBinary struct {
	Op    ArithmeticOp
	Left  Expr
	Right Expr
}

func (e *ArithmeticBinary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

type Comparison struct {
	Op    ComparisonOp
	Left  Expr
	Right Expr
}

func (e *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

type LogicalBinary struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (e *LogicalBinary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

type Not struct {
	Operand Expr
}

func (e *Not) String() string {
	return fmt.Sprintf("(NOT %s)", e.Operand)
}

type IsNull struct {
	Operand Expr
}

func (e *IsNull) String() string {
	return fmt.Sprintf("(%s IS NULL)", e.Operand)
}

type IsNotNull struct {
	Operand Expr
}

func (e *IsNotNull) String() string {
	return fmt.Sprintf("(%s IS NOT NULL)", e.Operand)
}

// Between is true when Min <= Value <= Max.
type Between struct {
	Value Expr
	Min   Expr
	Max   Expr
}

func (e *Between) String() string {
	return fmt.Sprintf("(%s BETWEEN %s AND %s)", e.Value, e.Min, e.Max)
}

type Cast struct {
	Value Expr
	Type  types.DataType
}

func (e *Cast) String() string {
	return fmt.Sprintf("CAST(%s AS %s)", e.Value, e.Type.TypeDescription())
}

// Like matches Value against Pattern, in which '%' matches any sequence of
// characters.
type Like struct {
	Value   Expr
	Pattern Expr
}

func (e *Like) String() string {
	return fmt.Sprintf("(%s LIKE %s)", e.Value, e.Pattern)
}

type WhenClause struct {
	Operand Expr
	Result  Expr
}

// SearchedCase is CASE WHEN ... THEN ... [ELSE ...] END. Default may be nil.
type SearchedCase struct {
	WhenClauses []*WhenClause
	Default     Expr
}

func (e *SearchedCase) String() string {
	var sb strings.Builder
	sb.WriteString("CASE")
	for _, w := range e.WhenClauses {
		fmt.Fprintf(&sb, " WHEN %s THEN %s", w.Operand, w.Result)
	}
	if e.Default != nil {
		fmt.Fprintf(&sb, " ELSE %s", e.Default)
	}
	sb.WriteString(" END")
	return sb.String()
}

// Subscript indexes an array (zero-based) or looks up a map key.
type Subscript struct {
	Base  Expr
	Index Expr
}

func (e *Subscript) String() string {
	return fmt.Sprintf("%s[%s]", e.Base, e.Index)
}

// Dereference selects a field of a struct.
type Dereference struct {
	Base      Expr
	FieldName string
}

func (e *Dereference) String() string {
	return fmt.Sprintf("%s->%s", e.Base, e.FieldName)
}

type FunctionCall struct {
	Name string
	Args []Expr
}

func (e *FunctionCall) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}
