// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/serde"
	"github.com/featurebasedb/streamsql/toml"
	gotoml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config holds the options shared by the commands that read records.
type Config struct {
	// Input is the file records are read from. Empty or "-" reads stdin.
	Input string `toml:"input"`

	// Schema is the target column list, e.g. "ID BIGINT, NAME VARCHAR".
	Schema string `toml:"schema"`

	// Format is JSON or AVRO.
	Format string `toml:"format"`

	// Topic names the record source in log messages and errors.
	Topic string `toml:"topic"`

	// AvroSchema is the writer schema, inline or as a file path. When set,
	// AVRO input is one base64 encoded binary datum per line; otherwise it
	// is an object container file.
	AvroSchema string `toml:"avro-schema"`

	Workers   int `toml:"workers"`
	BatchSize int `toml:"batch-size"`

	// IncludeRows adds the raw record to processing log messages.
	IncludeRows bool `toml:"include-rows"`

	// Verbose logs at debug level regardless of LogLevel.
	Verbose  bool   `toml:"verbose"`
	LogLevel string `toml:"log-level"`
	LogPath  string `toml:"log-path"`

	ProgressInterval toml.Duration `toml:"progress-interval"`

	// Expressions and Filter are read by eval, inline or as file paths.
	// Expressions holds a JSON array of {"alias": ..., "expr": ...} items
	// and Filter one JSON expression tree.
	Expressions string `toml:"expressions"`
	Filter      string `toml:"filter"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Format:           serde.FormatJSON,
		Topic:            "stdin",
		Workers:          4,
		BatchSize:        1000,
		LogLevel:         "info",
		ProgressInterval: toml.Duration(10 * time.Second),
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Schema) == "" {
		return fmt.Errorf("%w: schema is required", UsageError)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", UsageError, c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch-size must be at least 1, got %d", UsageError, c.BatchSize)
	}
	switch strings.ToUpper(c.Format) {
	case serde.FormatJSON, serde.FormatAvro:
	default:
		return fmt.Errorf("%w: %v", UsageError, streamsql.NewErrUnknownFormat(c.Format))
	}
	return nil
}

// ConfigCommand represents a command for printing a default config.
type ConfigCommand struct {
	*streamsql.CmdIO
	Config *Config
}

// NewConfigCommand returns a new instance of ConfigCommand.
func NewConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		CmdIO:  streamsql.NewCmdIO(stdin, stdout, stderr),
		Config: NewConfig(),
	}
}

// Run prints out the config.
func (cmd *ConfigCommand) Run(_ context.Context) error {
	buf, err := gotoml.Marshal(*cmd.Config)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	fmt.Fprintln(cmd.Stdout, string(buf))
	return nil
}
