// Package formats writes finalized tables to files in columnar and row
// formats: Arrow IPC, Parquet, Avro, JSON lines and CSV.
package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/docframe/pkg/columnar"
)

// Format represents an output format
type Format string

const (
	// Arrow is the Apache Arrow IPC file format
	Arrow Format = "arrow"
	// Parquet is Apache Parquet format
	Parquet Format = "parquet"
	// Avro is an Avro object container file
	Avro Format = "avro"
	// JSON is newline-delimited JSON, one object per row
	JSON Format = "json"
	// CSV is comma-separated values with a header row
	CSV Format = "csv"
)

// ParseFormat parses a format name. File extensions are accepted too.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "arrow", "ipc", "feather":
		return Arrow, nil
	case "parquet", "pq":
		return Parquet, nil
	case "avro":
		return Avro, nil
	case "json", "jsonl", "ndjson":
		return JSON, nil
	case "csv":
		return CSV, nil
	}
	return "", fmt.Errorf("unsupported output format: %q", s)
}

// Writer writes tables in one format. Writers never close the destination
// io.Writer.
type Writer interface {
	// WriteTable appends every row of t. All tables must share a schema.
	WriteTable(t *columnar.Table) error
	// Close flushes buffered data and writes any footer
	Close() error
	// Format returns the output format
	Format() Format
	// RowsWritten returns rows written so far
	RowsWritten() int64
}

// WriterConfig configures writers
type WriterConfig struct {
	Format Format
	// Compression is the format's internal codec: "snappy", "gzip", "zstd",
	// "lz4", "deflate" or "none". Empty selects the format default.
	Compression  string
	RowGroupSize int64
	// RecordName names the Avro record.
	RecordName string
	Allocator  memory.Allocator
}

// DefaultWriterConfig returns default writer configuration
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		Format:       Parquet,
		RowGroupSize: 64 * 1024,
		RecordName:   "document",
		Allocator:    memory.DefaultAllocator,
	}
}

func (c *WriterConfig) withDefaults() *WriterConfig {
	out := DefaultWriterConfig()
	if c == nil {
		return out
	}
	cp := *c
	if cp.Format == "" {
		cp.Format = out.Format
	}
	if cp.RowGroupSize <= 0 {
		cp.RowGroupSize = out.RowGroupSize
	}
	if cp.RecordName == "" {
		cp.RecordName = out.RecordName
	}
	if cp.Allocator == nil {
		cp.Allocator = out.Allocator
	}
	return &cp
}

// NewWriter creates a writer for tables of schema t.
func NewWriter(w io.Writer, t *columnar.Table, config *WriterConfig) (Writer, error) {
	config = config.withDefaults()

	switch config.Format {
	case Arrow:
		return newArrowWriter(w, t.ArrowSchema(), config)
	case Parquet:
		return newParquetWriter(w, t.ArrowSchema(), config)
	case Avro:
		return newAvroWriter(w, t.Schema(), config)
	case JSON:
		return newJSONWriter(w, t.Schema().Names()), nil
	case CSV:
		return newCSVWriter(w, t.ArrowSchema()), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// WriteTable writes t to w in a single call and returns the rows written.
func WriteTable(w io.Writer, t *columnar.Table, config *WriterConfig) (int64, error) {
	fw, err := NewWriter(w, t, config)
	if err != nil {
		return 0, err
	}
	if err := fw.WriteTable(t); err != nil {
		_ = fw.Close()
		return fw.RowsWritten(), err
	}
	if err := fw.Close(); err != nil {
		return fw.RowsWritten(), err
	}
	return fw.RowsWritten(), nil
}

// FormatInfo provides information about output formats
type FormatInfo struct {
	Format           Format
	Name             string
	FileExtension    string
	MIMEType         string
	Columnar         bool
	SupportsCompress bool
}

// GetFormatInfo returns information about a format, or nil if unknown.
func GetFormatInfo(format Format) *FormatInfo {
	switch format {
	case Arrow:
		return &FormatInfo{
			Format:           Arrow,
			Name:             "Apache Arrow IPC",
			FileExtension:    ".arrow",
			MIMEType:         "application/vnd.apache.arrow.file",
			Columnar:         true,
			SupportsCompress: true,
		}
	case Parquet:
		return &FormatInfo{
			Format:           Parquet,
			Name:             "Apache Parquet",
			FileExtension:    ".parquet",
			MIMEType:         "application/x-parquet",
			Columnar:         true,
			SupportsCompress: true,
		}
	case Avro:
		return &FormatInfo{
			Format:           Avro,
			Name:             "Apache Avro",
			FileExtension:    ".avro",
			MIMEType:         "application/avro",
			SupportsCompress: true,
		}
	case JSON:
		return &FormatInfo{
			Format:        JSON,
			Name:          "JSON lines",
			FileExtension: ".jsonl",
			MIMEType:      "application/x-ndjson",
		}
	case CSV:
		return &FormatInfo{
			Format:        CSV,
			Name:          "CSV",
			FileExtension: ".csv",
			MIMEType:      "text/csv",
		}
	default:
		return nil
	}
}

// writerOnly hides Close from libraries that close the sink they write to.
type writerOnly struct {
	io.Writer
}
