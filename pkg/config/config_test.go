package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/docframe/pkg/errors"
)

func validConfig() *Config {
	cfg := NewConfig()
	cfg.Source.Input = "docs.jsonl"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults with input", func(*Config) {}, true},
		{"mongo source", func(c *Config) {
			c.Source.Input = ""
			c.Source.ConnectionStr = "mongodb://localhost"
			c.Source.Database = "d"
			c.Source.Collection = "c"
		}, true},
		{"missing source", func(c *Config) { c.Source.Input = "" }, false},
		{"zero sample", func(c *Config) { c.Read.InferSchemaLength = 0 }, false},
		{"unlimited", func(c *Config) { c.Read.Limit = -1 }, true},
		{"zero limit", func(c *Config) { c.Read.Limit = 0 }, false},
		{"zero workers", func(c *Config) { c.Read.Workers = 0 }, false},
		{"bad format", func(c *Config) { c.Output.Format = "orc" }, false},
		{"parquet", func(c *Config) { c.Output.Format = "parquet" }, true},
		{"bad compression", func(c *Config) { c.Output.Compression = "rar" }, false},
		{"bad level", func(c *Config) { c.Output.CompressionLevel = 12 }, false},
		{"bad sample rate", func(c *Config) { c.Observability.TracingSampleRate = 2 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("DOCFRAME_TEST_HOST", "db.internal")
	t.Setenv("DOCFRAME_TEST_EMPTY", "")

	assert.Equal(t, "mongodb://db.internal:27017", substituteEnvVars("mongodb://${DOCFRAME_TEST_HOST}:27017"))
	assert.Equal(t, "limit: 42", substituteEnvVars("limit: ${DOCFRAME_TEST_EMPTY:-42}"))
	assert.Equal(t, "x=", substituteEnvVars("x=${DOCFRAME_TEST_UNSET}"))
	assert.Equal(t, "a ${unterminated", substituteEnvVars("a ${unterminated"))
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docframe.yaml")

	cfg := validConfig()
	cfg.Read.Columns = []string{"ticker", "peers"}
	cfg.Output.Format = "avro"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("read: [oops"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestConversions(t *testing.T) {
	cfg := validConfig()
	cfg.Source.ConnectionStr = "mongodb://localhost"
	cfg.Source.Database = "shop"
	cfg.Source.Collection = "orders"
	cfg.Read.Columns = []string{"a"}
	cfg.Observability.EnableTracing = true
	cfg.Observability.TracingSampleRate = 0.5

	opts := cfg.SourceOptions()
	assert.Equal(t, "shop", opts.Database)
	assert.Equal(t, "orders", opts.Collection)

	ro := cfg.ReadOptions()
	assert.Equal(t, 100, ro.InferSchemaLength)
	assert.Equal(t, []string{"a"}, ro.Columns)
	assert.Equal(t, 1, ro.Workers)

	tc := cfg.TracingConfig()
	assert.True(t, tc.Enabled)
	assert.Equal(t, 0.5, tc.SamplingRate)

	assert.Equal(t, "info", cfg.LoggerConfig().Level)
}
