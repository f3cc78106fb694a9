package formats

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ajitpratap0/docframe/pkg/columnar"
	jsonpool "github.com/ajitpratap0/docframe/pkg/json"
	"github.com/ajitpratap0/docframe/pkg/schema"
)

var createdAt = time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

func testTable(t *testing.T) *columnar.Table {
	t.Helper()
	s := schema.MustSchema(
		schema.Field{Name: "n", Type: schema.Int32()},
		schema.Field{Name: "s", Type: schema.String()},
		schema.Field{Name: "at", Type: schema.Datetime(schema.Millisecond)},
		schema.Field{Name: "ok", Type: schema.Bool()},
	)
	reg, err := columnar.NewRegistry(s, 3)
	require.NoError(t, err)

	docs := []bson.D{
		{{Key: "n", Value: int32(1)}, {Key: "s", Value: "hi"}, {Key: "at", Value: primitive.NewDateTimeFromTime(createdAt)}, {Key: "ok", Value: true}},
		{{Key: "n", Value: int32(2)}},
		{{Key: "n", Value: int32(3)}, {Key: "s", Value: "bye"}, {Key: "ok", Value: false}},
	}
	for _, doc := range docs {
		require.NoError(t, reg.Append(doc))
	}
	table, err := reg.Finish()
	require.NoError(t, err)
	t.Cleanup(table.Release)
	return table
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"arrow":    Arrow,
		".parquet": Parquet,
		"AVRO":     Avro,
		"jsonl":    JSON,
		"csv":      CSV,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("orc")
	assert.Error(t, err)
}

func TestGetFormatInfo(t *testing.T) {
	for _, f := range []Format{Arrow, Parquet, Avro, JSON, CSV} {
		info := GetFormatInfo(f)
		require.NotNil(t, info, f)
		assert.Equal(t, f, info.Format)
	}
	assert.Nil(t, GetFormatInfo("orc"))
}

func TestArrowRoundTrip(t *testing.T) {
	for _, codec := range []string{"", "lz4", "zstd"} {
		t.Run("codec="+codec, func(t *testing.T) {
			table := testTable(t)

			var buf bytes.Buffer
			n, err := WriteTable(&buf, table, &WriterConfig{Format: Arrow, Compression: codec})
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)

			r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			defer r.Close()

			require.Equal(t, 1, r.NumRecords())
			rec, err := r.Record(0)
			require.NoError(t, err)
			assert.True(t, rec.Schema().Equal(table.ArrowSchema()))
			assert.True(t, array.RecordEqual(rec, table.Record()))
		})
	}
}

func TestArrowRejectsUnknownCodec(t *testing.T) {
	_, err := WriteTable(&bytes.Buffer{}, testTable(t), &WriterConfig{Format: Arrow, Compression: "brotli"})
	assert.Error(t, err)
}

func TestParquetRoundTrip(t *testing.T) {
	for _, codec := range []string{"", "none", "gzip", "zstd"} {
		t.Run("codec="+codec, func(t *testing.T) {
			table := testTable(t)

			var buf bytes.Buffer
			_, err := WriteTable(&buf, table, &WriterConfig{Format: Parquet, Compression: codec})
			require.NoError(t, err)

			rdr, err := file.NewParquetReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			defer rdr.Close()
			assert.Equal(t, int64(3), rdr.NumRows())

			fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
			require.NoError(t, err)
			got, err := fr.ReadTable(context.Background())
			require.NoError(t, err)
			defer got.Release()

			assert.Equal(t, int64(4), got.NumCols())
			names := make([]string, 0, 4)
			for _, f := range got.Schema().Fields() {
				names = append(names, f.Name)
			}
			assert.Equal(t, []string{"n", "s", "at", "ok"}, names)

			s := got.Column(1).Data().Chunk(0).(*array.String)
			assert.Equal(t, "hi", s.Value(0))
			assert.True(t, s.IsNull(1))
		})
	}
}

func TestAvroRoundTrip(t *testing.T) {
	table := testTable(t)

	var buf bytes.Buffer
	n, err := WriteTable(&buf, table, &WriterConfig{Format: Avro, Compression: "deflate"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ocf, err := goavro.NewOCFReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var rows []map[string]interface{}
	for ocf.Scan() {
		datum, err := ocf.Read()
		require.NoError(t, err)
		rows = append(rows, datum.(map[string]interface{}))
	}
	require.NoError(t, ocf.Err())
	require.Len(t, rows, 3)

	assert.Equal(t, map[string]interface{}{"int": int32(1)}, rows[0]["n"])
	assert.Equal(t, map[string]interface{}{"string": "hi"}, rows[0]["s"])
	assert.Nil(t, rows[1]["s"])
	at := rows[0]["at"].(map[string]interface{})["long.timestamp-millis"].(time.Time)
	assert.True(t, createdAt.Equal(at))
}

func TestAvroSanitizesNames(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "a_b", uniqueName(sanitizeAvroName("a.b"), used))
	assert.Equal(t, "a_b_1", uniqueName(sanitizeAvroName("a-b"), used))
	assert.Equal(t, "_1x", sanitizeAvroName("1x"))
	assert.Equal(t, "_", sanitizeAvroName(""))
}

func TestJSONLines(t *testing.T) {
	table := testTable(t)

	var buf bytes.Buffer
	n, err := WriteTable(&buf, table, &WriterConfig{Format: JSON})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var lines []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 3)
	assert.Equal(t, `{"n":1,"s":"hi","at":"2024-02-29T12:00:00Z","ok":true}`, lines[0])
	assert.Equal(t, `{"n":2,"s":null,"at":null,"ok":null}`, lines[1])

	var row map[string]interface{}
	require.NoError(t, jsonpool.Unmarshal([]byte(lines[2]), &row))
	assert.Equal(t, "bye", row["s"])
	assert.Equal(t, false, row["ok"])
}

func TestCSV(t *testing.T) {
	table := testTable(t)

	var buf bytes.Buffer
	n, err := WriteTable(&buf, table, &WriterConfig{Format: CSV})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "n,s,at,ok", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,hi,2024-02-29"))
	assert.Equal(t, "2,,,", lines[2])
}
