package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/docframe/pkg/schema"
)

// Table is the finalized, immutable result of a read: equal-length columns
// in schema order, backed by an Arrow record.
type Table struct {
	schema schema.Schema
	record arrow.Record
}

// Schema returns the schema the table was built with.
func (t *Table) Schema() schema.Schema { return t.schema }

// ArrowSchema returns the Arrow schema of the backing record.
func (t *Table) ArrowSchema() *arrow.Schema { return t.record.Schema() }

// NumRows returns the row count.
func (t *Table) NumRows() int { return int(t.record.NumRows()) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return int(t.record.NumCols()) }

// Column returns the i-th column. The table keeps ownership.
func (t *Table) Column(i int) arrow.Array { return t.record.Column(i) }

// ColumnByName returns the named column.
func (t *Table) ColumnByName(name string) (arrow.Array, bool) {
	i := t.schema.Index(name)
	if i < 0 {
		return nil, false
	}
	return t.record.Column(i), true
}

// Record returns the backing record. Callers that keep it beyond the table's
// lifetime must Retain it.
func (t *Table) Record() arrow.Record { return t.record }

// Value returns a cell as a Go value: nil for null, time.Time (UTC) for
// temporal columns, the native Go type otherwise.
func (t *Table) Value(col, row int) interface{} {
	return valueAt(t.record.Column(col), row)
}

// Release frees the table's memory.
func (t *Table) Release() {
	if t.record != nil {
		t.record.Release()
		t.record = nil
	}
}

func valueAt(arr arrow.Array, row int) interface{} {
	if arr.IsNull(row) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return a.Value(row)
	case *array.Int32:
		return a.Value(row)
	case *array.Int64:
		return a.Value(row)
	case *array.Uint32:
		return a.Value(row)
	case *array.Uint64:
		return a.Value(row)
	case *array.Float32:
		return a.Value(row)
	case *array.Float64:
		return a.Value(row)
	case *array.String:
		return a.Value(row)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(row).ToTime(unit).UTC()
	case *array.Date32:
		return a.Value(row).ToTime().UTC()
	}
	return arr.ValueStr(row)
}
