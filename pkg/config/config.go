// Package config provides the configuration for docframe reads.
// A single Config structure covers the whole read:
//   - Source: where documents come from (MongoDB or an Extended JSON file)
//   - Read: schema sample size, row limit, projection, parallelism
//   - Output: table format, codec, destination
//   - Observability: logging, metrics, tracing
//
// Example usage:
//
//	cfg := config.NewConfig()
//	cfg.Source.ConnectionStr = "mongodb://localhost:27017"
//	cfg.Source.Database = "shop"
//	cfg.Source.Collection = "orders"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"runtime"
	"time"

	"github.com/ajitpratap0/docframe/pkg/compression"
	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/formats"
	"github.com/ajitpratap0/docframe/pkg/logger"
	"github.com/ajitpratap0/docframe/pkg/observability"
	"github.com/ajitpratap0/docframe/pkg/reader"
	"github.com/ajitpratap0/docframe/pkg/source"
)

// Config is the complete configuration of one docframe run.
type Config struct {
	// Source selects the document source
	Source SourceConfig `yaml:"source" json:"source"`

	// Read controls schema inference and materialization
	Read ReadConfig `yaml:"read" json:"read"`

	// Output controls how the table is written
	Output OutputConfig `yaml:"output" json:"output"`

	// Observability settings for monitoring and debugging
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// SourceConfig identifies the documents to read. Either Input or the
// connection fields are set.
type SourceConfig struct {
	// ConnectionStr is a MongoDB connection string
	ConnectionStr string `yaml:"connection_str" json:"connection_str"`
	// Database is the database name
	Database string `yaml:"db" json:"db"`
	// Collection is the collection name
	Collection string `yaml:"collection" json:"collection"`
	// Input is a file of Extended JSON documents, one per line
	Input string `yaml:"input" json:"input"`
	// CursorBatchSize is the MongoDB cursor batch size
	CursorBatchSize int32 `yaml:"cursor_batch_size" json:"cursor_batch_size"`
	// ConnectTimeout bounds connecting and pinging the deployment
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
}

// ReadConfig contains the read settings.
type ReadConfig struct {
	// InferSchemaLength is the number of documents sampled for the schema
	InferSchemaLength int `yaml:"infer_schema_len" json:"infer_schema_len"`
	// Limit bounds the documents read (-1 = unlimited)
	Limit int `yaml:"limit" json:"limit"`
	// Columns restricts the read to these fields
	Columns []string `yaml:"columns" json:"columns"`
	// Workers is the number of column groups filled in parallel
	Workers int `yaml:"workers" json:"workers"`
	// BatchSize is the parallel batch size
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// Timeout bounds the whole read (0 = none)
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig describes where the table goes.
type OutputConfig struct {
	// Path is the destination file; empty or "-" means stdout
	Path string `yaml:"path" json:"path"`
	// Format is arrow, parquet, avro, json or csv
	Format string `yaml:"format" json:"format"`
	// Codec is the format's internal compression codec
	Codec string `yaml:"codec" json:"codec"`
	// Compression wraps the whole output stream (gzip, zstd, lz4, snappy, s2)
	Compression string `yaml:"compression" json:"compression"`
	// CompressionLevel trades ratio for speed (1-9)
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
	// Preview is the number of rows printed when no format is set
	Preview int `yaml:"preview" json:"preview"`
}

// ObservabilityConfig contains monitoring and observability settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding is json or console
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090"
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
	// EnableTracing activates OpenTelemetry tracing
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Source: SourceConfig{
			CursorBatchSize: source.DefaultBatchSize,
			ConnectTimeout:  10 * time.Second,
		},
		Read: ReadConfig{
			InferSchemaLength: reader.DefaultInferSchemaLength,
			Limit:             reader.DefaultLimit,
			Workers:           1,
			BatchSize:         1024,
		},
		Output: OutputConfig{
			Compression:      string(compression.None),
			CompressionLevel: int(compression.Default),
			Preview:          10,
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogEncoding:       "console",
			EnableTracing:     false,
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Source.Input == "" {
		if err := c.SourceOptions().Validate(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid source")
		}
	}
	if c.Read.InferSchemaLength <= 0 {
		return configError("infer_schema_len must be positive")
	}
	if c.Read.Limit == 0 || c.Read.Limit < -1 {
		return configError("limit must be positive or -1")
	}
	if c.Read.Workers <= 0 {
		return configError("workers must be positive")
	}
	if c.Read.BatchSize <= 0 {
		return configError("batch_size must be positive")
	}
	if c.Read.Timeout < 0 {
		return configError("timeout cannot be negative")
	}
	if c.Output.Format != "" {
		if _, err := formats.ParseFormat(c.Output.Format); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid output format")
		}
	}
	if _, err := compression.ParseAlgorithm(c.Output.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid output compression")
	}
	if c.Output.CompressionLevel < 1 || c.Output.CompressionLevel > 9 {
		return configError("compression_level must be between 1 and 9")
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		return configError("tracing_sample_rate must be between 0 and 1")
	}
	return nil
}

func configError(msg string) error {
	return errors.New(errors.ErrorTypeConfig, msg)
}

// GetWorkers returns the number of workers, capped at the CPU count.
func (r *ReadConfig) GetWorkers() int {
	if r.Workers <= 0 {
		return 1
	}
	if n := runtime.NumCPU(); r.Workers > n {
		return n
	}
	return r.Workers
}

// SourceOptions returns the MongoDB connection options.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		ConnectionStr: c.Source.ConnectionStr,
		Database:      c.Source.Database,
		Collection:    c.Source.Collection,
	}
}

// ReadOptions returns the reader options.
func (c *Config) ReadOptions() reader.ReadOptions {
	return reader.ReadOptions{
		InferSchemaLength: c.Read.InferSchemaLength,
		Limit:             c.Read.Limit,
		Columns:           c.Read.Columns,
		Workers:           c.Read.GetWorkers(),
		BatchSize:         c.Read.BatchSize,
	}
}

// LoggerConfig returns the logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Observability.LogLevel,
		Encoding:    c.Observability.LogEncoding,
		OutputPaths: []string{"stderr"},
	}
}

// TracingConfig returns the tracing configuration.
func (c *Config) TracingConfig() observability.TracingConfig {
	tc := observability.DefaultTracingConfig()
	tc.Enabled = c.Observability.EnableTracing
	tc.SamplingRate = c.Observability.TracingSampleRate
	return tc
}
