// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/types"
)

// planExpression is a compiled expression node.
type planExpression interface {
	// evaluates the expression against the current row
	Evaluate(currentRow *row.Row) (interface{}, error)

	// returns the type of the expression
	Type() types.DataType

	// returns the symbolic form of the expression, naming columns
	// SOURCE_COLUMN and function instances NAME_ID
	String() string

	// returns a map describing the expression
	Plan() map[string]interface{}

	// returns the child expressions of this expression
	Children() []planExpression
}
