// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package toml holds configuration value types readable from TOML files,
// environment variables and command line flags alike.
package toml

import "time"

// Duration is a TOML wrapper type for time.Duration. It also satisfies
// pflag.Value so it can back a command line flag.
type Duration time.Duration

// String returns the string representation of the duration.
func (d Duration) String() string { return time.Duration(d).String() }

// Set parses s into the duration. An empty string leaves it unchanged.
func (d *Duration) Set(s string) error {
	if s == "" {
		return nil
	}
	return d.UnmarshalText([]byte(s))
}

// Type names the flag value type.
func (d *Duration) Type() string { return "duration" }

// UnmarshalText parses a TOML value into a duration value.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(v)
	return nil
}

// MarshalText writes duration value in text format.
func (d Duration) MarshalText() (text []byte, err error) {
	return []byte(d.String()), nil
}

// MarshalTOML write duration into valid TOML.
func (d Duration) MarshalTOML() ([]byte, error) {
	return []byte(d.String()), nil
}
