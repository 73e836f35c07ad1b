// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/streamsql/ctl"
	"github.com/spf13/cobra"
)

var Decoder *ctl.DecodeCommand

func newDecodeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	Decoder = ctl.NewDecodeCommand(stdin, stdout, stderr)
	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode records into rows of a schema.",
		Long: `
Decodes each input record into a row of the given schema and prints the rows
as JSON lines, in input order. Records that cannot be decoded are reported to
the processing log and skipped; null records are skipped.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Decoder.Run(context.Background())
		},
	}
	addConfigFlags(decodeCmd.Flags(), &Decoder.Config)
	return decodeCmd
}
