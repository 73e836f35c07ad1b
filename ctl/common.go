// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/featurebasedb/streamsql/logger"
	"github.com/pkg/errors"
)

// UsageError is wrapped by errors caused by invalid command options.
var UsageError = errors.New("usage error")

// loadArg returns v itself when it holds inline JSON, otherwise the contents
// of the file it names.
func loadArg(name, v string) ([]byte, error) {
	t := strings.TrimSpace(v)
	if t == "" {
		return nil, nil
	}
	switch t[0] {
	case '{', '[', '"':
		return []byte(t), nil
	}
	b, err := os.ReadFile(t)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return b, nil
}

// openInput opens path for reading. Empty or "-" means stdin.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}
	return f, nil
}

// newLogger builds the command logger from the config. The returned function
// closes the log file, if any.
func newLogger(c *Config, stderr io.Writer) (logger.Logger, func() error, error) {
	var w io.Writer = stderr
	closeFn := func() error { return nil }
	if c.LogPath != "" {
		fw, err := logger.NewFileWriter(c.LogPath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening log file")
		}
		stop := reopenOnHangup(fw)
		w = fw
		closeFn = func() error {
			stop()
			return fw.Close()
		}
	}
	if c.Verbose {
		return logger.NewVerboseLogger(w), closeFn, nil
	}
	level := logger.LevelInfo
	if c.LogLevel != "" {
		var err error
		if level, err = logger.ParseLevel(c.LogLevel); err != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("%w: %v", UsageError, err)
		}
	}
	return logger.NewLevelLogger(w, level), closeFn, nil
}

// reopenOnHangup reopens fw whenever the process receives SIGHUP, until the
// returned function is called.
func reopenOnHangup(fw *logger.FileWriter) func() {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sighup:
				if err := fw.Reopen(); err != nil {
					fmt.Fprintf(os.Stderr, "reopening %s: %v\n", fw.Name(), err)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sighup)
		close(done)
	}
}
