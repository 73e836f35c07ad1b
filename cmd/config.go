// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/streamsql/ctl"
	"github.com/spf13/cobra"
)

var Conf *ctl.ConfigCommand

func newConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	Conf = ctl.NewConfigCommand(stdin, stdout, stderr)
	confCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the current configuration.",
		Long: `config prints the configuration read from flags, environment and
configuration file to stdout. Without any of those it prints the defaults.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Conf.Run(context.Background())
		},
	}
	addConfigFlags(confCmd.Flags(), Conf.Config)
	return confCmd
}
