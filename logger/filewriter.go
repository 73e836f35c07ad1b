// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package logger

import (
	"os"
	"sync"
)

// FileWriter appends to a named file and can reopen it by name, so log
// output follows a file that was rotated away.
type FileWriter struct {
	name string
	mode os.FileMode

	mu sync.Mutex // guards f
	f  *os.File
}

// NewFileWriter opens name for appending, creating it with mode 0600.
func NewFileWriter(name string) (*FileWriter, error) {
	return NewFileWriterMode(name, 0600)
}

// NewFileWriterMode opens name for appending, creating it with mode.
func NewFileWriterMode(name string, mode os.FileMode) (*FileWriter, error) {
	fw := &FileWriter{name: name, mode: mode}
	if err := fw.Reopen(); err != nil {
		return nil, err
	}
	return fw, nil
}

// Name returns the path the writer opens.
func (fw *FileWriter) Name() string { return fw.name }

// Reopen closes the current file and opens the path again.
func (fw *FileWriter) Reopen() error {
	f, err := os.OpenFile(fw.name, os.O_WRONLY|os.O_APPEND|os.O_CREATE, fw.mode)
	if err != nil {
		return err
	}
	fw.mu.Lock()
	old := fw.f
	fw.f = f
	fw.mu.Unlock()
	if old != nil {
		return old.Close()
	}
	return nil
}

func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.f.Write(p)
}

// Close closes the current file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.f.Close()
}
