// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"io"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/compiler"
	"github.com/featurebasedb/streamsql/expr"
	"github.com/featurebasedb/streamsql/function"
	"github.com/featurebasedb/streamsql/schema"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EvalCommand decodes records, filters them and evaluates a select list
// over each, printing the results as JSON lines.
type EvalCommand struct {
	Config

	// Registry resolves function calls. It defaults to the builtins.
	Registry function.Registry

	// Standard input/output
	*streamsql.CmdIO
}

// NewEvalCommand returns a new instance of EvalCommand.
func NewEvalCommand(stdin io.Reader, stdout, stderr io.Writer) *EvalCommand {
	return &EvalCommand{
		Config:   *NewConfig(),
		Registry: function.NewBuiltinRegistry(),
		CmdIO:    streamsql.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run executes the evaluation.
func (cmd *EvalCommand) Run(ctx context.Context) error {
	s, err := newSession(&cmd.Config, cmd.CmdIO)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := cmd.projection(s)
	if err != nil {
		return err
	}
	s.log.Debugf("output schema: %s", p.Schema())
	return s.run(ctx, p.Apply)
}

func (cmd *EvalCommand) projection(s *session) (*compiler.Projection, error) {
	items, err := parseSelectItems(cmd.Expressions, s.schema)
	if err != nil {
		return nil, err
	}
	var filter expr.Expr
	if data, err := loadArg("filter", cmd.Filter); err != nil {
		return nil, err
	} else if data != nil {
		if filter, err = expr.Unmarshal(data); err != nil {
			return nil, errors.Wrap(err, "parsing filter")
		}
	}

	p, err := compiler.NewProjection(s.schema, filter, items, cmd.Registry,
		compiler.OptProjectionProcessingLog(s.plog),
		compiler.OptProjectionCompilerOptions(compiler.OptCompilerLogger(s.log)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "compiling projection")
	}
	return p, nil
}

type selectItem struct {
	Alias string              `json:"alias"`
	Expr  jsoniter.RawMessage `json:"expr"`
}

// parseSelectItems reads the select list. Without one every column of s is
// selected under its own name.
func parseSelectItems(v string, s *schema.Schema) ([]compiler.SelectItem, error) {
	data, err := loadArg("expressions", v)
	if err != nil {
		return nil, err
	}
	if data == nil {
		items := make([]compiler.SelectItem, s.Len())
		for i, f := range s.Fields() {
			items[i] = compiler.SelectItem{Alias: f.Name, Expr: &expr.ColumnRef{Name: f.Name}}
		}
		return items, nil
	}

	var raw []selectItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing expressions: %v", UsageError, err)
	}
	items := make([]compiler.SelectItem, len(raw))
	for i, r := range raw {
		e, err := expr.Unmarshal(r.Expr)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing expression %d", i)
		}
		items[i] = compiler.SelectItem{Alias: r.Alias, Expr: e}
	}
	return items, nil
}
