package formats

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"

	"github.com/ajitpratap0/docframe/pkg/columnar"
)

// csvWriter implements Writer for CSV with a header row
type csvWriter struct {
	writer         *csv.Writer
	recordsWritten int64
}

func newCSVWriter(w io.Writer, s *arrow.Schema) *csvWriter {
	return &csvWriter{
		writer: csv.NewWriter(w, s,
			csv.WithHeader(true),
			csv.WithNullWriter(""),
		),
	}
}

func (cw *csvWriter) WriteTable(t *columnar.Table) error {
	if err := cw.writer.Write(t.Record()); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	cw.recordsWritten += int64(t.NumRows())
	return nil
}

func (cw *csvWriter) Close() error {
	if err := cw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return cw.writer.Error()
}

func (cw *csvWriter) Format() Format { return CSV }

func (cw *csvWriter) RowsWritten() int64 { return cw.recordsWritten }
