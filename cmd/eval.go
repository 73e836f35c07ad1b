// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/streamsql/ctl"
	"github.com/spf13/cobra"
)

var Evaluator *ctl.EvalCommand

func newEvalCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	Evaluator = ctl.NewEvalCommand(stdin, stdout, stderr)
	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "Filter decoded rows and evaluate expressions over them.",
		Long: `
Decodes each input record into a row of the given schema, drops the rows the
filter does not accept, and prints the select list evaluated over the rest as
JSON lines. Without a select list every column is printed.

Columns without an alias are named KSQL_COL_<n>.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Evaluator.Run(context.Background())
		},
	}
	addConfigFlags(evalCmd.Flags(), &Evaluator.Config)
	return evalCmd
}
