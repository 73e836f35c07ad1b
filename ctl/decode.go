// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"io"

	"github.com/featurebasedb/streamsql"
)

// DecodeCommand decodes records into rows of a schema and prints them as
// JSON lines.
type DecodeCommand struct {
	Config

	// Standard input/output
	*streamsql.CmdIO
}

// NewDecodeCommand returns a new instance of DecodeCommand.
func NewDecodeCommand(stdin io.Reader, stdout, stderr io.Writer) *DecodeCommand {
	return &DecodeCommand{
		Config: *NewConfig(),
		CmdIO:  streamsql.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run executes the decode.
func (cmd *DecodeCommand) Run(ctx context.Context) error {
	s, err := newSession(&cmd.Config, cmd.CmdIO)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.run(ctx, nil)
}
