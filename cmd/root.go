// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/ctl"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "STREAMSQL"

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "streamsql",
		Short: "streamsql decodes streamed records and evaluates SQL expressions over them.",
		Long: `streamsql decodes streamed records and evaluates SQL expressions over them.

Records are read as newline delimited JSON, base64 encoded Avro datums or
Avro object container files, decoded into rows of a declared schema, and
printed as JSON lines. Expressions are given as JSON expression trees.

` + streamsql.VersionInfo() + "\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			return setAllConfig(v, cmd.Flags())
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")

	rc.AddCommand(newDecodeCommand(stdin, stdout, stderr))
	rc.AddCommand(newEvalCommand(stdin, stdout, stderr))
	rc.AddCommand(newConfigCommand(stdin, stdout, stderr))

	rc.SetOutput(stderr)
	return rc
}

// addConfigFlags defines the flags backing every field of c.
func addConfigFlags(flags *pflag.FlagSet, c *ctl.Config) {
	flags.StringVarP(&c.Input, "input", "i", c.Input, "File to read records from - default stdin.")
	flags.StringVarP(&c.Schema, "schema", "s", c.Schema, `Target columns, e.g. "ID BIGINT, NAME VARCHAR".`)
	flags.StringVarP(&c.Format, "format", "f", c.Format, "Record format: JSON or AVRO.")
	flags.StringVar(&c.Topic, "topic", c.Topic, "Topic name used in log messages and errors.")
	flags.StringVar(&c.AvroSchema, "avro-schema", c.AvroSchema, "Avro writer schema, inline or a file path. When set, AVRO input is one base64 encoded datum per line.")
	flags.IntVar(&c.Workers, "workers", c.Workers, "Number of records processed concurrently.")
	flags.IntVar(&c.BatchSize, "batch-size", c.BatchSize, "Number of records read per batch.")
	flags.BoolVar(&c.IncludeRows, "include-rows", c.IncludeRows, "Include raw records in processing log messages.")
	flags.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Enable debug logging.")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: error, warn, info or debug.")
	flags.StringVar(&c.LogPath, "log-path", c.LogPath, "File to write logs to - default stderr.")
	flags.Var(&c.ProgressInterval, "progress-interval", "How often to log progress. Zero disables progress logging.")
	flags.StringVarP(&c.Expressions, "expressions", "e", c.Expressions, `Select list for eval: JSON array of {"alias":..., "expr":...}, inline or a file path.`)
	flags.StringVar(&c.Filter, "filter", c.Filter, "Filter for eval: JSON expression tree, inline or a file path.")
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults. It then reads from the command line, the
// environment, and a config file (if specified), and applies the configuration
// in that priority order. Since each flag in the set contains a pointer to
// where its value should be stored, setAllConfig can directly modify the value
// of each config variable.
//
// setAllConfig looks for environment variables which are capitalized versions
// of the flag names with dashes replaced by underscores, and prefixed with
// envPrefix plus an underscore.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	// add cmd line flag def to viper
	err := v.BindPFlags(flags)
	if err != nil {
		return err
	}

	// add env to viper
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	c := v.GetString("config")
	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	// add config file to viper
	if c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}

		for _, key := range v.AllKeys() {
			if _, ok := validTags[key]; !ok {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	// set all values from viper
	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			// A changed flag was set on the command line, which has the
			// highest priority.
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			flagErr = fmt.Errorf("invalid value for %s: %v", f.Name, err)
		}
	})
	return flagErr
}
