package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/docframe/pkg/columnar"
)

// parquetWriter implements Writer for Parquet format
type parquetWriter struct {
	fileWriter     *pqarrow.FileWriter
	recordsWritten int64
}

func newParquetWriter(w io.Writer, s *arrow.Schema, config *WriterConfig) (*parquetWriter, error) {
	codec, err := getParquetCompression(config.Compression)
	if err != nil {
		return nil, err
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithDictionaryDefault(true),
		parquet.WithMaxRowGroupLength(config.RowGroupSize),
		parquet.WithAllocator(config.Allocator),
		parquet.WithCreatedBy("docframe"),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(config.Allocator),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(s, writerOnly{w}, props, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	return &parquetWriter{fileWriter: fw}, nil
}

func (pw *parquetWriter) WriteTable(t *columnar.Table) error {
	if err := pw.fileWriter.Write(t.Record()); err != nil {
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	pw.recordsWritten += int64(t.NumRows())
	return nil
}

func (pw *parquetWriter) Close() error {
	if err := pw.fileWriter.Close(); err != nil {
		return fmt.Errorf("failed to close Parquet writer: %w", err)
	}
	return nil
}

func (pw *parquetWriter) Format() Format { return Parquet }

func (pw *parquetWriter) RowsWritten() int64 { return pw.recordsWritten }

func getParquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "none":
		return compress.Codecs.Uncompressed, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	}
	return compress.Codecs.Uncompressed, fmt.Errorf("unsupported parquet compression: %q", name)
}
