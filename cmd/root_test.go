// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/featurebasedb/streamsql/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execRootCommand executes the streamsql root command with the given stdin
// and arguments and returns its stdout and stderr.
func execRootCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := cmd.NewRootCommand(strings.NewReader(stdin), &stdout, &stderr)
	rc.SetArgs(args)
	err := rc.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamsql.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRootCommand(t *testing.T) {
	_, stderr, err := execRootCommand(t, "", "--help")
	require.NoError(t, err)
	for _, want := range []string{"Usage:", "Available Commands:", "decode", "eval", "config"} {
		assert.Contains(t, stderr, want)
	}
}

func TestDecode(t *testing.T) {
	stdout, stderr, err := execRootCommand(t, `{"id":1,"tags":["a"]}`+"\n",
		"decode", "--schema", "ID BIGINT, TAGS ARRAY<VARCHAR>", "--topic", "t1")
	require.NoError(t, err)
	assert.Equal(t, `{"ID":1,"TAGS":["a"]}`+"\n", stdout)
	assert.Contains(t, stderr, "topic t1: read 1 records, wrote 1 rows")
}

func TestEval(t *testing.T) {
	stdout, _, err := execRootCommand(t, `{"a":2,"b":3}`,
		"eval", "--schema", "A INTEGER, B INTEGER",
		"-e", `[{"alias":"SUM","expr":{"kind":"arithmetic","op":"+","left":{"kind":"column","name":"A"},"right":{"kind":"column","name":"B"}}}]`)
	require.NoError(t, err)
	assert.Equal(t, `{"SUM":5}`+"\n", stdout)
}

func TestConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `
schema = "ID BIGINT"
workers = 2
batch-size = 10
progress-interval = "1m0s"
`)

	t.Run("File", func(t *testing.T) {
		stdout, _, err := execRootCommand(t, "", "config", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, `schema = "ID BIGINT"`)
		assert.Contains(t, stdout, "workers = 2")
		assert.Contains(t, stdout, "batch-size = 10")
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		t.Setenv("STREAMSQL_WORKERS", "5")
		t.Setenv("STREAMSQL_BATCH_SIZE", "20")
		stdout, _, err := execRootCommand(t, "", "config", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, "workers = 5")
		assert.Contains(t, stdout, "batch-size = 20")
	})

	t.Run("FlagOverridesEnv", func(t *testing.T) {
		t.Setenv("STREAMSQL_WORKERS", "5")
		stdout, _, err := execRootCommand(t, "", "config", "--config", path, "--workers", "7")
		require.NoError(t, err)
		assert.Contains(t, stdout, "workers = 7")
	})
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		wantErr string
	}{
		{
			name: "InvalidKey",
			args: func(t *testing.T) []string {
				return []string{"config", "--config", writeConfig(t, "bogus = 1\n")}
			},
			wantErr: "invalid option in configuration file: bogus",
		},
		{
			name: "MissingFile",
			args: func(t *testing.T) []string {
				return []string{"config", "--config", filepath.Join(t.TempDir(), "none.toml")}
			},
			wantErr: "error reading configuration file",
		},
		{
			name: "BadDuration",
			args: func(t *testing.T) []string {
				return []string{"config", "--config", writeConfig(t, "progress-interval = \"often\"\n")}
			},
			wantErr: "invalid value for progress-interval",
		},
		{
			name: "MissingSchema",
			args: func(t *testing.T) []string {
				return []string{"decode"}
			},
			wantErr: "schema is required",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execRootCommand(t, "", tc.args(t)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
