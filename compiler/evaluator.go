// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"fmt"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
)

// Evaluator is a compiled expression bound to a schema. It is immutable after
// Compile returns and safe for concurrent use. Function instances are shared
// by every caller of Evaluate, so a registry that hands out stateful
// functions must make them safe for concurrent use as well.
type Evaluator struct {
	schema   *schema.Schema
	root     planExpression
	bindings []FunctionBinding
}

// Evaluate computes the expression's value for r. The row must have been
// built against a schema equal to the one the evaluator was compiled with.
func (e *Evaluator) Evaluate(r *row.Row) (interface{}, error) {
	if r == nil {
		return nil, streamsql.NewErrInternalf("cannot evaluate a nil row")
	}
	if s := r.Schema(); s != e.schema && !s.Equal(e.schema) {
		return nil, streamsql.NewErrSchemaMismatch(e.schema.String(), s.String())
	}
	return e.root.Evaluate(r)
}

// Type returns the static result type.
func (e *Evaluator) Type() types.DataType {
	return e.root.Type()
}

// Schema returns the schema the evaluator was compiled against.
func (e *Evaluator) Schema() *schema.Schema {
	return e.schema
}

// FunctionBindings returns the call sites in pre-order.
func (e *Evaluator) FunctionBindings() []FunctionBinding {
	out := make([]FunctionBinding, len(e.bindings))
	copy(out, e.bindings)
	return out
}

// String returns the symbolic form of the compiled expression.
func (e *Evaluator) String() string {
	return e.root.String()
}

// Plan describes the compiled tree.
func (e *Evaluator) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", e)
	result["schema"] = e.schema.String()
	result["dataType"] = e.Type().TypeDescription()
	result["root"] = e.root.Plan()
	return result
}
