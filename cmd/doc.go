// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd contains the streamsql subcommand definitions (1 per file).

Each command file has a new*Command function which returns a cobra.Command
wrapping a command from the ctl package, as well as a global exported
instance of the ctl command so that it can be tested.

Options are read from flags, STREAMSQL_* environment variables and a TOML
configuration file, in that priority order.
*/
package cmd
