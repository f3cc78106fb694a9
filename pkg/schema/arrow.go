package schema

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/docframe/pkg/errors"
)

// ToArrow maps a column type to its Arrow representation. List, Struct, Null
// and Unknown have none and yield a compute error.
func ToArrow(t FieldType) (arrow.DataType, error) {
	switch t.Kind {
	case KindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case KindInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case KindInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case KindUInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case KindUInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case KindFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case KindFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case KindString:
		return arrow.BinaryTypes.String, nil
	case KindDate:
		return arrow.FixedWidthTypes.Date32, nil
	case KindDatetime:
		return &arrow.TimestampType{Unit: arrowUnit(t.Unit)}, nil
	}
	return nil, errors.Computef("unsupported data type %s for a column", t)
}

func arrowUnit(u TimeUnit) arrow.TimeUnit {
	switch u {
	case Second:
		return arrow.Second
	case Microsecond:
		return arrow.Microsecond
	case Nanosecond:
		return arrow.Nanosecond
	default:
		return arrow.Millisecond
	}
}

// ToArrow converts the schema to an Arrow schema. Every field is nullable.
func (s Schema) ToArrow() (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(s.fields))
	for _, f := range s.fields {
		dt, err := ToArrow(f.Type)
		if err != nil {
			return nil, errors.WrapCompute(err, "unable to build table schema").WithDetail("field", f.Name)
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: dt, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}
