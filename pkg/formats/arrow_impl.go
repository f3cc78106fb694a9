package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/ajitpratap0/docframe/pkg/columnar"
)

// arrowWriter implements Writer for the Arrow IPC file format
type arrowWriter struct {
	fileWriter     *ipc.FileWriter
	recordsWritten int64
}

func newArrowWriter(w io.Writer, s *arrow.Schema, config *WriterConfig) (*arrowWriter, error) {
	opts := []ipc.Option{ipc.WithSchema(s), ipc.WithAllocator(config.Allocator)}
	switch strings.ToLower(config.Compression) {
	case "", "none":
	case "lz4":
		opts = append(opts, ipc.WithLZ4())
	case "zstd":
		opts = append(opts, ipc.WithZstd())
	default:
		return nil, fmt.Errorf("unsupported arrow compression: %q", config.Compression)
	}

	fw, err := ipc.NewFileWriter(w, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow writer: %w", err)
	}
	return &arrowWriter{fileWriter: fw}, nil
}

func (aw *arrowWriter) WriteTable(t *columnar.Table) error {
	if err := aw.fileWriter.Write(t.Record()); err != nil {
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	aw.recordsWritten += int64(t.NumRows())
	return nil
}

func (aw *arrowWriter) Close() error {
	if err := aw.fileWriter.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow writer: %w", err)
	}
	return nil
}

func (aw *arrowWriter) Format() Format { return Arrow }

func (aw *arrowWriter) RowsWritten() int64 { return aw.recordsWritten }
