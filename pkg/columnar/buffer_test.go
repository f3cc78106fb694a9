package columnar

import (
	"math"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/schema"
)

// fill builds a one-column buffer of type ft from values and returns each
// resulting cell as a Go value (nil for null).
func fill(t *testing.T, ft schema.FieldType, values ...interface{}) ([]interface{}, *Buffer) {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b, err := NewBuffer(mem, schema.Field{Name: "c", Type: ft}, len(values))
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, b.Add(v))
	}
	require.Equal(t, len(values), b.Len())

	arr, err := b.Finish()
	require.NoError(t, err)
	defer arr.Release()

	out := make([]interface{}, arr.Len())
	for i := range out {
		out[i] = valueAt(arr, i)
	}
	return out, b
}

func TestBufferNumericCoercion(t *testing.T) {
	tests := []struct {
		name     string
		ft       schema.FieldType
		in       []interface{}
		expected []interface{}
		nulls    int64
	}{
		{
			name:     "int32 overflow from int64",
			ft:       schema.Int32(),
			in:       []interface{}{int64(math.MaxInt32) + 1, int32(5), int64(-7)},
			expected: []interface{}{nil, int32(5), int32(-7)},
			nulls:    1,
		},
		{
			name:     "bool into numbers",
			ft:       schema.Int64(),
			in:       []interface{}{true, false},
			expected: []interface{}{int64(1), int64(0)},
		},
		{
			name:     "bool into float",
			ft:       schema.Float64(),
			in:       []interface{}{true},
			expected: []interface{}{1.0},
		},
		{
			name:     "float truncates toward zero",
			ft:       schema.Int64(),
			in:       []interface{}{2.9, -2.9},
			expected: []interface{}{int64(2), int64(-2)},
		},
		{
			name:     "non finite into integer",
			ft:       schema.Int64(),
			in:       []interface{}{math.NaN(), math.Inf(1), 1e19},
			expected: []interface{}{nil, nil, nil},
			nulls:    3,
		},
		{
			name:     "negative into unsigned",
			ft:       schema.UInt32(),
			in:       []interface{}{int32(-1), int64(math.MaxUint32) + 1, int32(3)},
			expected: []interface{}{nil, nil, uint32(3)},
			nulls:    2,
		},
		{
			name:     "uint64 from double",
			ft:       schema.UInt64(),
			in:       []interface{}{42.5, -0.5},
			expected: []interface{}{uint64(42), uint64(0)},
		},
		{
			name:     "float32 range",
			ft:       schema.Float32(),
			in:       []interface{}{1.5, 1e300, int32(2)},
			expected: []interface{}{float32(1.5), nil, float32(2)},
			nulls:    1,
		},
		{
			name:     "text into number",
			ft:       schema.Int32(),
			in:       []interface{}{"12"},
			expected: []interface{}{nil},
			nulls:    1,
		},
		{
			name:     "null and absent markers",
			ft:       schema.Float64(),
			in:       []interface{}{nil, primitive.Null{}, primitive.Undefined{}},
			expected: []interface{}{nil, nil, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, b := fill(t, tt.ft, tt.in...)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.nulls, b.CoercionNulls())
		})
	}
}

func TestBufferBool(t *testing.T) {
	got, b := fill(t, schema.Bool(), true, int32(1), false)
	assert.Equal(t, []interface{}{true, nil, false}, got)
	assert.Equal(t, int64(1), b.CoercionNulls())
}

func TestBufferString(t *testing.T) {
	oid := primitive.NewObjectID()

	got, b := fill(t, schema.String(),
		"plain",
		primitive.Symbol("sym"),
		oid,
		primitive.Regex{Pattern: "^a", Options: "i"},
		primitive.JavaScript("f()"),
		primitive.Timestamp{T: 10, I: 2},
		bson.D{{Key: "a", Value: int32(1)}},
		bson.A{int32(1), "x"},
		primitive.Binary{Data: []byte{1}},
		int32(5),
		primitive.MaxKey{},
	)

	assert.Equal(t, []interface{}{
		"plain",
		"sym",
		oid.Hex(),
		"/^a/i",
		"f()",
		"Timestamp(10, 2)",
		`{"a":1}`,
		`[1,"x"]`,
		nil,
		nil,
		nil,
	}, got)
	assert.Equal(t, int64(3), b.CoercionNulls())
}

func TestBufferDatetime(t *testing.T) {
	at := time.Date(2021, 3, 4, 5, 6, 7, 8_000_000, time.UTC)

	got, _ := fill(t, schema.Datetime(schema.Millisecond),
		primitive.NewDateTimeFromTime(at),
		at,
		primitive.Timestamp{T: 2},
		"2021-03-04T05:06:07.008Z",
		"2021-03-04",
		"not a date",
		int64(5),
	)

	assertTime(t, at, got[0])
	assertTime(t, at, got[1])
	assertTime(t, time.Unix(2, 0).UTC(), got[2])
	assertTime(t, at, got[3])
	assertTime(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), got[4])
	assert.Nil(t, got[5])
	assert.Nil(t, got[6])
}

func TestBufferDatetimeUnits(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b, err := NewBuffer(mem, schema.Field{Name: "ts", Type: schema.Datetime(schema.Nanosecond)}, 0)
	require.NoError(t, err)

	require.NoError(t, b.Add(primitive.DateTime(1500)))
	require.NoError(t, b.Add(time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)))

	arr, err := b.Finish()
	require.NoError(t, err)
	defer arr.Release()

	ts := arr.(*array.Timestamp)
	assert.Equal(t, arrow.Nanosecond, ts.DataType().(*arrow.TimestampType).Unit)
	assert.Equal(t, arrow.Timestamp(1_500_000_000), ts.Value(0))
	assert.True(t, ts.IsNull(1), "year 3000 does not fit nanoseconds")
	assert.Equal(t, int64(1), b.CoercionNulls())
}

func TestBufferDate(t *testing.T) {
	got, _ := fill(t, schema.Date(),
		primitive.DateTime(-1),
		"1970-01-03 12:00:00",
		primitive.NewDateTimeFromTime(time.Date(2020, 2, 29, 23, 59, 0, 0, time.UTC)),
		true,
	)

	assertTime(t, time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC), got[0])
	assertTime(t, time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC), got[1])
	assertTime(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), got[2])
	assert.Nil(t, got[3])
}

func TestBufferRejectsUseAfterFinish(t *testing.T) {
	b, err := NewBuffer(nil, schema.Field{Name: "c", Type: schema.Int32()}, 4)
	require.NoError(t, err)
	require.NoError(t, b.Add(int32(1)))

	arr, err := b.Finish()
	require.NoError(t, err)
	arr.Release()

	assert.ErrorIs(t, b.Add(int32(2)), ErrFinalized)
	assert.ErrorIs(t, b.AppendNull(), ErrFinalized)
	_, err = b.Finish()
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestNewBufferRejectsCompound(t *testing.T) {
	_, err := NewBuffer(nil, schema.Field{Name: "l", Type: schema.List(schema.Int32())}, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCompute(err))
}

func TestBufferCapacityIsClamped(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b, err := NewBuffer(mem, schema.Field{Name: "s", Type: schema.String()}, math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
	b.Release()
}

func assertTime(t *testing.T, expected time.Time, got interface{}) {
	t.Helper()
	actual, ok := got.(time.Time)
	require.True(t, ok, "expected time.Time, got %T", got)
	assert.True(t, expected.Equal(actual), "expected %s, got %s", expected, actual)
}
