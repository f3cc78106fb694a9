package formats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/docframe/pkg/columnar"
	jsonpool "github.com/ajitpratap0/docframe/pkg/json"
	"github.com/ajitpratap0/docframe/pkg/schema"
)

// avroWriter implements Writer for Avro object container files
type avroWriter struct {
	ocfWriter      *goavro.OCFWriter
	fields         []avroField
	batchSize      int
	recordsWritten int64
}

// avroField maps one column onto an Avro record field.
type avroField struct {
	name   string // sanitized Avro name
	branch string // union branch for non-null values
	dtype  schema.FieldType
}

func newAvroWriter(w io.Writer, s schema.Schema, config *WriterConfig) (*avroWriter, error) {
	fields, avroSchema, err := toAvroSchema(s, config.RecordName)
	if err != nil {
		return nil, err
	}

	codec, err := goavro.NewCodec(avroSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to create Avro codec: %w", err)
	}

	compression, err := getAvroCompression(config.Compression)
	if err != nil {
		return nil, err
	}

	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: compression,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Avro writer: %w", err)
	}

	return &avroWriter{
		ocfWriter: ocfWriter,
		fields:    fields,
		batchSize: 1024,
	}, nil
}

func (aw *avroWriter) WriteTable(t *columnar.Table) error {
	batch := make([]interface{}, 0, aw.batchSize)
	for row := 0; row < t.NumRows(); row++ {
		native := make(map[string]interface{}, len(aw.fields))
		for col, f := range aw.fields {
			v, err := avroValue(f, t.Value(col, row))
			if err != nil {
				return fmt.Errorf("row %d, field %s: %w", row, f.name, err)
			}
			native[f.name] = v
		}
		batch = append(batch, native)

		if len(batch) == aw.batchSize {
			if err := aw.flushBatch(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return aw.flushBatch(batch)
}

func (aw *avroWriter) flushBatch(batch []interface{}) error {
	if len(batch) == 0 {
		return nil
	}
	if err := aw.ocfWriter.Append(batch); err != nil {
		return fmt.Errorf("failed to write Avro records: %w", err)
	}
	aw.recordsWritten += int64(len(batch))
	return nil
}

// Close is a no-op: OCF blocks are complete once appended.
func (aw *avroWriter) Close() error { return nil }

func (aw *avroWriter) Format() Format { return Avro }

func (aw *avroWriter) RowsWritten() int64 { return aw.recordsWritten }

// toAvroSchema builds a record schema where every field is a union of null
// and the column type.
func toAvroSchema(s schema.Schema, recordName string) ([]avroField, string, error) {
	fields := make([]avroField, 0, s.Len())
	defs := make([]map[string]interface{}, 0, s.Len())
	used := make(map[string]int, s.Len())

	for _, f := range s.Fields() {
		avroType, branch, err := toAvroType(f.Type)
		if err != nil {
			return nil, "", fmt.Errorf("field %s: %w", f.Name, err)
		}
		name := uniqueName(sanitizeAvroName(f.Name), used)

		def := map[string]interface{}{
			"name":    name,
			"type":    []interface{}{"null", avroType},
			"default": nil,
		}
		if name != f.Name {
			def["doc"] = f.Name
		}
		defs = append(defs, def)
		fields = append(fields, avroField{name: name, branch: branch, dtype: f.Type})
	}

	schemaBytes, err := jsonpool.Marshal(map[string]interface{}{
		"type":   "record",
		"name":   sanitizeAvroName(recordName),
		"fields": defs,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode Avro schema: %w", err)
	}
	return fields, string(schemaBytes), nil
}

func toAvroType(t schema.FieldType) (interface{}, string, error) {
	switch t.Kind {
	case schema.KindBool:
		return "boolean", "boolean", nil
	case schema.KindInt32:
		return "int", "int", nil
	case schema.KindInt64, schema.KindUInt32, schema.KindUInt64:
		return "long", "long", nil
	case schema.KindFloat32:
		return "float", "float", nil
	case schema.KindFloat64:
		return "double", "double", nil
	case schema.KindString:
		return "string", "string", nil
	case schema.KindDate:
		return map[string]interface{}{"type": "int", "logicalType": "date"}, "int.date", nil
	case schema.KindDatetime:
		switch t.Unit {
		case schema.Microsecond:
			return map[string]interface{}{"type": "long", "logicalType": "timestamp-micros"}, "long.timestamp-micros", nil
		case schema.Nanosecond:
			// Avro has no nanosecond timestamp; the raw epoch count is kept.
			return "long", "long", nil
		default:
			return map[string]interface{}{"type": "long", "logicalType": "timestamp-millis"}, "long.timestamp-millis", nil
		}
	}
	return nil, "", fmt.Errorf("unsupported data type %s for Avro", t)
}

func avroValue(f avroField, v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case uint32:
		return goavro.Union(f.branch, int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("value %d out of range for Avro long", x)
		}
		return goavro.Union(f.branch, int64(x)), nil
	case time.Time:
		if f.branch == "long" {
			return goavro.Union(f.branch, x.UnixNano()), nil
		}
		return goavro.Union(f.branch, x), nil
	}
	return goavro.Union(f.branch, v), nil
}

func getAvroCompression(compression string) (string, error) {
	switch strings.ToLower(compression) {
	case "", "snappy":
		return goavro.CompressionSnappyLabel, nil
	case "deflate", "gzip":
		return goavro.CompressionDeflateLabel, nil
	case "none", "null":
		return goavro.CompressionNullLabel, nil
	}
	return "", fmt.Errorf("unsupported avro compression: %q", compression)
}

// sanitizeAvroName maps a field name onto [A-Za-z_][A-Za-z0-9_]*.
func sanitizeAvroName(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(s) + 1)
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func uniqueName(name string, used map[string]int) string {
	n, ok := used[name]
	used[name] = n + 1
	if !ok {
		return name
	}
	for {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if _, taken := used[candidate]; !taken {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}
