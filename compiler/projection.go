// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"strconv"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/expr"
	"github.com/featurebasedb/streamsql/function"
	"github.com/featurebasedb/streamsql/processinglog"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/types"
)

// Projection applies an optional filter and a select list to rows of one
// schema.
type Projection struct {
	filter  *Evaluator
	selects []*Evaluator
	output  *schema.Schema
	plog    processinglog.Logger
	copts   []CompilerOption
}

// ProjectionOption configures a Projection.
type ProjectionOption func(p *Projection)

// OptProjectionProcessingLog sets where evaluation failures are reported.
func OptProjectionProcessingLog(l processinglog.Logger) ProjectionOption {
	return func(p *Projection) {
		p.plog = l
	}
}

// OptProjectionCompilerOptions passes opts to every compilation.
func OptProjectionCompilerOptions(opts ...CompilerOption) ProjectionOption {
	return func(p *Projection) {
		p.copts = append(p.copts, opts...)
	}
}

// SelectItem is one output column of a projection.
type SelectItem struct {
	Alias string
	Expr  expr.Expr
}

// NewProjection compiles filter and items against s. filter may be nil, in
// which case every row is kept. Output columns are named by alias, or
// KSQL_COL_<n> when the alias is empty.
func NewProjection(s *schema.Schema, filter expr.Expr, items []SelectItem, registry function.Registry, opts ...ProjectionOption) (*Projection, error) {
	p := &Projection{plog: processinglog.Nop}
	for _, opt := range opts {
		opt(p)
	}

	if filter != nil {
		ev, err := Compile(s, filter, registry, p.copts...)
		if err != nil {
			return nil, err
		}
		switch ev.Type().(type) {
		case *types.DataTypeBoolean, *types.DataTypeVoid:
		default:
			return nil, streamsql.NewErrBooleanExpressionExpected(ev.Type().TypeDescription())
		}
		p.filter = ev
	}

	fields := make([]*types.StructField, 0, len(items))
	for i, item := range items {
		ev, err := Compile(s, item.Expr, registry, p.copts...)
		if err != nil {
			return nil, err
		}
		name := item.Alias
		if name == "" {
			name = defaultColumnName(i)
		}
		outType := ev.Type()
		if types.IsVoid(outType) {
			outType = types.NewDataTypeString()
		}
		fields = append(fields, types.NewStructField(name, outType))
		p.selects = append(p.selects, ev)
	}

	out, err := schema.New(fields...)
	if err != nil {
		return nil, err
	}
	p.output = out
	return p, nil
}

func defaultColumnName(i int) string {
	return "KSQL_COL_" + strconv.Itoa(i)
}

// Schema returns the output schema.
func (p *Projection) Schema() *schema.Schema {
	return p.output
}

// Apply evaluates the projection against r. It returns (nil, nil) when the
// filter rejects the row. Failures are reported to the processing log
// before being returned.
func (p *Projection) Apply(r *row.Row) (*row.Row, error) {
	if p.filter != nil {
		v, err := p.filter.Evaluate(r)
		if err != nil {
			return nil, p.fail(err, r)
		}
		if keep, _ := v.(bool); !keep {
			return nil, nil
		}
	}

	values := make([]interface{}, len(p.selects))
	for i, ev := range p.selects {
		v, err := ev.Evaluate(r)
		if err != nil {
			return nil, p.fail(err, r)
		}
		values[i] = v
	}
	out, err := row.New(p.output, values)
	if err != nil {
		return nil, p.fail(err, r)
	}
	return out, nil
}

func (p *Projection) fail(err error, r *row.Row) error {
	CounterProjectionErrors.Inc()
	p.plog.Error(processinglog.RecordProcessingErrorMessage(err, r))
	return err
}
