package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/schema"
)

const (
	// maxReserve caps the up-front reservation taken from a capacity hint.
	maxReserve = 1 << 16
	// avgStringBytes is the per-row byte estimate used to size string data.
	avgStringBytes = 25
)

// Buffer accumulates the values of one column. Storage is an Arrow builder
// picked by the field kind: Datetime values are kept as int64 in the column's
// unit and Date values as int32 days, both reinterpreted on Finish.
//
// A Buffer is not safe for concurrent use; distinct buffers are independent.
type Buffer struct {
	field schema.Field
	kind  schema.Kind
	unit  schema.TimeUnit
	mem   memory.Allocator

	builder array.Builder
	bools   *array.BooleanBuilder
	i32     *array.Int32Builder
	i64     *array.Int64Builder
	u32     *array.Uint32Builder
	u64     *array.Uint64Builder
	f32     *array.Float32Builder
	f64     *array.Float64Builder
	strs    *array.StringBuilder

	coercionNulls int64
	closed        bool
}

// NewBuffer creates an empty buffer for field. capacity is a hint used to
// reserve builder space.
func NewBuffer(mem memory.Allocator, field schema.Field, capacity int) (*Buffer, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	b := &Buffer{
		field: field,
		kind:  field.Type.Kind,
		unit:  field.Type.Unit,
		mem:   mem,
	}

	switch b.kind {
	case schema.KindBool:
		b.bools = array.NewBooleanBuilder(mem)
		b.builder = b.bools
	case schema.KindInt32, schema.KindDate:
		b.i32 = array.NewInt32Builder(mem)
		b.builder = b.i32
	case schema.KindInt64, schema.KindDatetime:
		b.i64 = array.NewInt64Builder(mem)
		b.builder = b.i64
	case schema.KindUInt32:
		b.u32 = array.NewUint32Builder(mem)
		b.builder = b.u32
	case schema.KindUInt64:
		b.u64 = array.NewUint64Builder(mem)
		b.builder = b.u64
	case schema.KindFloat32:
		b.f32 = array.NewFloat32Builder(mem)
		b.builder = b.f32
	case schema.KindFloat64:
		b.f64 = array.NewFloat64Builder(mem)
		b.builder = b.f64
	case schema.KindString:
		b.strs = array.NewStringBuilder(mem)
		b.builder = b.strs
	default:
		return nil, errors.Computef("unsupported data type %s for a column", field.Type).
			WithDetail("field", field.Name)
	}

	if capacity > 0 {
		if capacity > maxReserve {
			capacity = maxReserve
		}
		b.builder.Reserve(capacity)
		if b.strs != nil {
			b.strs.ReserveData(capacity * avgStringBytes)
		}
	}

	return b, nil
}

// Field returns the field the buffer was created for.
func (b *Buffer) Field() schema.Field { return b.field }

// Len returns the number of appended entries, nulls included.
func (b *Buffer) Len() int { return b.builder.Len() }

// NullN returns the number of null entries.
func (b *Buffer) NullN() int { return b.builder.NullN() }

// CoercionNulls returns how many nulls came from values the column could not
// hold, as opposed to absent or null source values.
func (b *Buffer) CoercionNulls() int64 { return b.coercionNulls }

// AppendNull appends a null entry.
func (b *Buffer) AppendNull() error {
	if b.closed {
		return ErrFinalized
	}
	b.builder.AppendNull()
	return nil
}

// Add coerces raw to the column type and appends it. A value that cannot be
// coerced is appended as null; only use after Finish is an error.
func (b *Buffer) Add(raw interface{}) error {
	if b.closed {
		return ErrFinalized
	}
	if isNull(raw) {
		b.builder.AppendNull()
		return nil
	}
	if !b.add(raw) {
		b.builder.AppendNull()
		b.coercionNulls++
	}
	return nil
}

func (b *Buffer) add(raw interface{}) bool {
	switch b.kind {
	case schema.KindBool:
		v, ok := raw.(bool)
		if ok {
			b.bools.Append(v)
		}
		return ok

	case schema.KindString:
		v, ok := asText(raw)
		if ok {
			b.strs.Append(v)
		}
		return ok

	case schema.KindDatetime:
		sec, nsec, ok := instant(raw)
		if !ok {
			return false
		}
		v, ok := toUnit(sec, nsec, b.unit)
		if ok {
			b.i64.Append(v)
		}
		return ok

	case schema.KindDate:
		sec, _, ok := instant(raw)
		if !ok {
			return false
		}
		v, ok := toDays(sec)
		if ok {
			b.i32.Append(v)
		}
		return ok
	}

	n, ok := asNumber(raw)
	if !ok {
		return false
	}

	switch b.kind {
	case schema.KindInt32:
		v, ok := n.int32()
		if ok {
			b.i32.Append(v)
		}
		return ok
	case schema.KindInt64:
		v, ok := n.int64()
		if ok {
			b.i64.Append(v)
		}
		return ok
	case schema.KindUInt32:
		v, ok := n.uint32()
		if ok {
			b.u32.Append(v)
		}
		return ok
	case schema.KindUInt64:
		v, ok := n.uint64()
		if ok {
			b.u64.Append(v)
		}
		return ok
	case schema.KindFloat32:
		v, ok := n.float32()
		if ok {
			b.f32.Append(v)
		}
		return ok
	case schema.KindFloat64:
		b.f64.Append(n.float64())
		return true
	}
	return false
}

// Finish closes the buffer and returns its column. The caller owns the
// returned array and must release it.
func (b *Buffer) Finish() (arrow.Array, error) {
	if b.closed {
		return nil, ErrFinalized
	}
	b.closed = true
	defer b.builder.Release()

	arr := b.builder.NewArray()
	if b.kind != schema.KindDatetime && b.kind != schema.KindDate {
		return arr, nil
	}
	dt, err := schema.ToArrow(b.field.Type)
	if err != nil {
		arr.Release()
		return nil, err
	}
	return reinterpret(arr, dt), nil
}

// Release discards a buffer that will not be finished.
func (b *Buffer) Release() {
	if b.closed {
		return
	}
	b.closed = true
	b.builder.Release()
}

// reinterpret gives arr's buffers a different logical type of the same
// physical width. arr is released.
func reinterpret(arr arrow.Array, dt arrow.DataType) arrow.Array {
	defer arr.Release()
	src := arr.Data()
	data := array.NewData(dt, src.Len(), src.Buffers(), nil, src.NullN(), src.Offset())
	defer data.Release()
	return array.MakeFromData(data)
}
