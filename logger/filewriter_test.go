// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriterReopenAppends(t *testing.T) {
	name := filepath.Join(t.TempDir(), "streamsql.log")
	require.NoError(t, os.WriteFile(name, []byte("line0\n"), 0600))

	f, err := NewFileWriter(name)
	require.NoError(t, err)
	_, err = f.Write([]byte("line1\n"))
	require.NoError(t, err)
	require.NoError(t, f.Reopen())
	_, err = f.Write([]byte("line2\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "line0\nline1\nline2\n", string(out))
}

// A rotated file is left alone and a fresh one is created on Reopen.
func TestFileWriterReopenAfterRename(t *testing.T) {
	name := filepath.Join(t.TempDir(), "streamsql.log")

	f, err := NewFileWriter(name)
	require.NoError(t, err)
	_, err = f.Write([]byte("line1\n"))
	require.NoError(t, err)

	require.NoError(t, os.Rename(name, name+".1"))
	require.NoError(t, f.Reopen())
	_, err = f.Write([]byte("line2\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "line2\n", string(out))

	old, err := os.ReadFile(name + ".1")
	require.NoError(t, err)
	assert.Equal(t, "line1\n", string(old))
}
