package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/docframe/pkg/config"
	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/source"
)

// envPrefix prefixes environment overrides: --connection-str maps to
// DOCFRAME_CONNECTION_STR.
const envPrefix = "DOCFRAME"

// addSourceFlags registers the flags shared by schema and read.
func addSourceFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Path to a YAML configuration file")
	fs.String("options", "", "Path to a JSON file with connection_str, db and collection")
	fs.String("connection-str", "", "MongoDB connection string")
	fs.String("db", "", "Database name")
	fs.String("collection", "", "Collection name")
	fs.StringP("input", "i", "", "Read Extended JSON documents, one per line, from this file instead of MongoDB")
	fs.Int("infer-schema-len", 0, "Number of documents sampled to infer the schema")
	fs.StringSlice("columns", nil, "Fields to read (default: every field seen in the sample)")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-encoding", "", "Log encoding (console, json)")
	fs.Bool("trace", false, "Print OpenTelemetry spans to stderr")
	fs.Duration("timeout", 0, "Abort the command after this long (0 = no timeout)")
}

// loadConfig builds the effective configuration: defaults, then the YAML
// file, then the options file, then DOCFRAME_* variables and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to bind flags")
	}

	cfg := config.NewConfig()
	if path := v.GetString("config"); path != "" {
		if err := config.LoadInto(path, cfg); err != nil {
			return nil, err
		}
	}
	if path := v.GetString("options"); path != "" {
		opts, err := source.LoadOptions(path)
		if err != nil {
			return nil, err
		}
		cfg.Source.ConnectionStr = opts.ConnectionStr
		cfg.Source.Database = opts.Database
		cfg.Source.Collection = opts.Collection
	}

	overlay(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlay(v *viper.Viper, cfg *config.Config) {
	setString(v, "connection-str", &cfg.Source.ConnectionStr)
	setString(v, "db", &cfg.Source.Database)
	setString(v, "collection", &cfg.Source.Collection)
	setString(v, "input", &cfg.Source.Input)
	setInt(v, "infer-schema-len", &cfg.Read.InferSchemaLength)
	setInt(v, "limit", &cfg.Read.Limit)
	setInt(v, "workers", &cfg.Read.Workers)
	setInt(v, "batch-size", &cfg.Read.BatchSize)
	if v.IsSet("columns") {
		cfg.Read.Columns = v.GetStringSlice("columns")
	}
	if v.IsSet("timeout") {
		cfg.Read.Timeout = v.GetDuration("timeout")
	}
	setString(v, "output", &cfg.Output.Path)
	setString(v, "format", &cfg.Output.Format)
	setString(v, "codec", &cfg.Output.Codec)
	setString(v, "compression", &cfg.Output.Compression)
	setInt(v, "compression-level", &cfg.Output.CompressionLevel)
	setInt(v, "preview", &cfg.Output.Preview)
	setString(v, "log-level", &cfg.Observability.LogLevel)
	setString(v, "log-encoding", &cfg.Observability.LogEncoding)
	setString(v, "metrics-addr", &cfg.Observability.MetricsAddr)
	if v.IsSet("trace") {
		cfg.Observability.EnableTracing = v.GetBool("trace")
	}
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}
