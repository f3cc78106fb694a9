package formats

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/ajitpratap0/docframe/pkg/columnar"
	jsonpool "github.com/ajitpratap0/docframe/pkg/json"
)

// jsonWriter implements Writer for newline-delimited JSON
type jsonWriter struct {
	encoder        *jsonpool.StreamingEncoder
	keys           [][]byte
	recordsWritten int64
}

func newJSONWriter(w io.Writer, names []string) *jsonWriter {
	keys := make([][]byte, len(names))
	for i, name := range names {
		// Marshaling a string cannot fail.
		keys[i], _ = jsonpool.Marshal(name)
	}
	return &jsonWriter{
		encoder: jsonpool.NewStreamingEncoder(w, false),
		keys:    keys,
	}
}

func (jw *jsonWriter) WriteTable(t *columnar.Table) error {
	for row := 0; row < t.NumRows(); row++ {
		if err := jw.encoder.Encode(orderedRow{keys: jw.keys, table: t, row: row}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		jw.recordsWritten++
	}
	return nil
}

func (jw *jsonWriter) Close() error { return jw.encoder.Close() }

func (jw *jsonWriter) Format() Format { return JSON }

func (jw *jsonWriter) RowsWritten() int64 { return jw.recordsWritten }

// orderedRow encodes one table row as an object with keys in column order.
type orderedRow struct {
	keys  [][]byte
	table *columnar.Table
	row   int
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	buf := jsonpool.GetBuffer()
	defer jsonpool.PutBuffer(buf)

	buf.WriteByte('{')
	for col, key := range r.keys {
		if col > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeJSONValue(buf, r.table.Value(col, r.row)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func writeJSONValue(buf *bytes.Buffer, v interface{}) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case time.Time:
		buf.WriteByte('"')
		buf.WriteString(x.Format(time.RFC3339Nano))
		buf.WriteByte('"')
		return nil
	}
	data, err := jsonpool.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
