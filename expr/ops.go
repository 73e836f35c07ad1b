// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package expr

import "strings"

type ArithmeticOp int

const (
	OpAdd ArithmeticOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
)

var arithmeticOps = [...]string{"+", "-", "*", "/", "%"}

func (op ArithmeticOp) String() string {
	if int(op) < len(arithmeticOps) {
		return arithmeticOps[op]
	}
	return "?"
}

type ComparisonOp int

const (
	OpEqual ComparisonOp = iota
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

var comparisonOps = [...]string{"=", "<>", "<", "<=", ">", ">="}

func (op ComparisonOp) String() string {
	if int(op) < len(comparisonOps) {
		return comparisonOps[op]
	}
	return "?"
}

type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (op LogicalOp) String() string {
	if op == OpOr {
		return "OR"
	}
	return "AND"
}

// ParseArithmeticOp returns the operator for a symbol such as "+".
func ParseArithmeticOp(s string) (ArithmeticOp, bool) {
	for i, sym := range arithmeticOps {
		if sym == s {
			return ArithmeticOp(i), true
		}
	}
	return 0, false
}

// ParseComparisonOp returns the operator for a symbol such as ">=". "!=" is
// accepted for "<>".
func ParseComparisonOp(s string) (ComparisonOp, bool) {
	if s == "!=" {
		return OpNotEqual, true
	}
	for i, sym := range comparisonOps {
		if sym == s {
			return ComparisonOp(i), true
		}
	}
	return 0, false
}

func ParseLogicalOp(s string) (LogicalOp, bool) {
	switch strings.ToUpper(s) {
	case "AND":
		return OpAnd, true
	case "OR":
		return OpOr, true
	}
	return 0, false
}
