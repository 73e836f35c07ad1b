// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package expr

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonNode is the wire form of an expression node. Which members are used
// depends on Kind.
type jsonNode struct {
	Kind string `json:"kind"`

	Source string `json:"source,omitempty"`
	Name   string `json:"name,omitempty"`
	Op     string `json:"op,omitempty"`
	Field  string `json:"field,omitempty"`
	Type   string `json:"type,omitempty"`

	Value jsoniter.RawMessage `json:"value,omitempty"`

	Operand *jsonNode `json:"operand,omitempty"`
	Left    *jsonNode `json:"left,omitempty"`
	Right   *jsonNode `json:"right,omitempty"`
	Min     *jsonNode `json:"min,omitempty"`
	Max     *jsonNode `json:"max,omitempty"`
	Pattern *jsonNode `json:"pattern,omitempty"`
	Base    *jsonNode `json:"base,omitempty"`
	Index   *jsonNode `json:"index,omitempty"`
	Else    *jsonNode `json:"else,omitempty"`

	When []*jsonWhen `json:"when,omitempty"`
	Args []*jsonNode `json:"args,omitempty"`
}

type jsonWhen struct {
	Condition *jsonNode `json:"condition"`
	Result    *jsonNode `json:"result"`
}

// Unmarshal decodes an expression tree from its JSON form, for example
//
//	{"kind":"comparison","op":">",
//	 "left":{"kind":"column","source":"TEST1","name":"COL0"},
//	 "right":{"kind":"bigint","value":100}}
func Unmarshal(data []byte) (Expr, error) {
	var n jsonNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, streamsql.NewErrInvalidExpression(err.Error())
	}
	return n.toExpr()
}

// UnmarshalList decodes a JSON array of expression trees.
func UnmarshalList(data []byte) ([]Expr, error) {
	var ns []*jsonNode
	if err := json.Unmarshal(data, &ns); err != nil {
		return nil, streamsql.NewErrInvalidExpression(err.Error())
	}
	out := make([]Expr, len(ns))
	for i, n := range ns {
		e, err := n.toExpr()
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (n *jsonNode) child(name string, c *jsonNode) (Expr, error) {
	if c == nil {
		return nil, streamsql.NewErrInvalidExpression(fmt.Sprintf("'%s' node requires '%s'", n.Kind, name))
	}
	return c.toExpr()
}

func (n *jsonNode) literal(v interface{}) error {
	if len(n.Value) == 0 {
		return streamsql.NewErrInvalidExpression(fmt.Sprintf("'%s' node requires 'value'", n.Kind))
	}
	if err := json.Unmarshal(n.Value, v); err != nil {
		return streamsql.NewErrInvalidExpression(fmt.Sprintf("'%s' value: %v", n.Kind, err))
	}
	return nil
}

func (n *jsonNode) toExpr() (Expr, error) {
	if n == nil {
		return nil, streamsql.NewErrInvalidExpression("null node")
	}
	switch n.Kind {
	case "column":
		if n.Name == "" {
			return nil, streamsql.NewErrInvalidExpression("'column' node requires 'name'")
		}
		return &ColumnRef{Source: n.Source, Name: n.Name}, nil

	case "boolean":
		var v bool
		if err := n.literal(&v); err != nil {
			return nil, err
		}
		return &BooleanLiteral{Value: v}, nil

	case "integer":
		var v int32
		if err := n.literal(&v); err != nil {
			return nil, err
		}
		return &IntegerLiteral{Value: v}, nil

	case "bigint":
		var v int64
		if err := n.literal(&v); err != nil {
			return nil, err
		}
		return &LongLiteral{Value: v}, nil

	case "double":
		var v float64
		if err := n.literal(&v); err != nil {
			return nil, err
		}
		return &DoubleLiteral{Value: v}, nil

	case "string":
		var v string
		if err := n.literal(&v); err != nil {
			return nil, err
		}
		return &StringLiteral{Value: v}, nil

	case "null":
		return &NullLiteral{}, nil

	case "unary":
		op, ok := ParseArithmeticOp(n.Op)
		if !ok || (op != OpAdd && op != OpSubtract) {
			return nil, streamsql.NewErrInvalidExpression(fmt.Sprintf("invalid unary operator '%s'", n.Op))
		}
		operand, err := n.child("operand", n.Operand)
		if err != nil {
			return nil, err
		}
		return &ArithmeticUnary{Op: op, Operand: operand}, nil

	case "arithmetic":
		op, ok := ParseArithmeticOp(n.Op)
		if !ok {
			return nil, streamsql.NewErrInvalidExpression(fmt.Sprintf("invalid arithmetic operator '%s'", n.Op))
		}
		left, right, err := n.binary()
		if err != nil {
			return nil, err
		}
		return &ArithmeticBinary{Op: op, Left: left, Right: right}, nil

	case "comparison":
		op, ok := ParseComparisonOp(n.Op)
		if !ok {
			return nil, streamsql.NewErrInvalidExpression(fmt.Sprintf("invalid comparison operator '%s'", n.Op))
		}
		left, right, err := n.binary()
		if err != nil {
			return nil, err
		}
		return &Comparison{Op: op, Left: left, Right: right}, nil

	case "logical":
		op, ok := ParseLogicalOp(n.Op)
		if !ok {
			return nil, streamsql.NewErrInvalidExpression(fmt.Sprintf("invalid logical operator '%s'", n.Op))
		}
		left, right, err := n.binary()
		if err != nil {
			return nil, err
		}
		return &LogicalBinary{Op: op, Left: left, Right: right}, nil

	case "not":
		operand, err := n.child("operand", n.Operand)
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil

	case "isnull":
		operand, err := n.child("operand", n.Operand)
		if err != nil {
			return nil, err
		}
		return &IsNull{Operand: operand}, nil

	case "isnotnull":
		operand, err := n.child("operand", n.Operand)
		if err != nil {
			return nil, err
		}
		return &IsNotNull{Operand: operand}, nil

	case "between":
		value, err := n.child("operand", n.Operand)
		if err != nil {
			return nil, err
		}
		min, err := n.child("min", n.Min)
		if err != nil {
			return nil, err
		}
		max, err := n.child("max", n.Max)
		if err != nil {
			return nil, err
		}
		return &Between{Value: value, Min: min, Max: max}, nil

	case "cast":
		value, err := n.child("operand", n.Operand)
		if err != nil {
			return nil, err
		}
		typ, err := types.ParseType(n.Type)
		if err != nil {
			return nil, err
		}
		return &Cast{Value: value, Type: typ}, nil

	case "like":
		value, err := n.child("operand", n.Operand)
		if err != nil {
			return nil, err
		}
		pattern, err := n.child("pattern", n.Pattern)
		if err != nil {
			return nil, err
		}
		return &Like{Value: value, Pattern: pattern}, nil

	case "case":
		c := &SearchedCase{}
		for _, w := range n.When {
			if w == nil {
				return nil, streamsql.NewErrInvalidExpression("null when clause")
			}
			cond, err := n.child("condition", w.Condition)
			if err != nil {
				return nil, err
			}
			res, err := n.child("result", w.Result)
			if err != nil {
				return nil, err
			}
			c.WhenClauses = append(c.WhenClauses, &WhenClause{Operand: cond, Result: res})
		}
		if len(c.WhenClauses) == 0 {
			return nil, streamsql.NewErrInvalidExpression("'case' node requires at least one 'when'")
		}
		if n.Else != nil {
			def, err := n.Else.toExpr()
			if err != nil {
				return nil, err
			}
			c.Default = def
		}
		return c, nil

	case "subscript":
		base, err := n.child("base", n.Base)
		if err != nil {
			return nil, err
		}
		index, err := n.child("index", n.Index)
		if err != nil {
			return nil, err
		}
		return &Subscript{Base: base, Index: index}, nil

	case "dereference":
		base, err := n.child("base", n.Base)
		if err != nil {
			return nil, err
		}
		if n.Field == "" {
			return nil, streamsql.NewErrInvalidExpression("'dereference' node requires 'field'")
		}
		return &Dereference{Base: base, FieldName: n.Field}, nil

	case "call":
		if n.Name == "" {
			return nil, streamsql.NewErrInvalidExpression("'call' node requires 'name'")
		}
		call := &FunctionCall{Name: n.Name, Args: []Expr{}}
		for _, a := range n.Args {
			arg, err := n.child("args", a)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		return call, nil

	default:
		return nil, streamsql.NewErrInvalidExpression(fmt.Sprintf("unknown node kind '%s'", n.Kind))
	}
}

func (n *jsonNode) binary() (Expr, Expr, error) {
	left, err := n.child("left", n.Left)
	if err != nil {
		return nil, nil, err
	}
	right, err := n.child("right", n.Right)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
