// Package schema holds the type model shared by inference and materialization:
// the FieldType tagged variant, ordered schemas, the value classifier and the
// promotion lattice used to merge per-field type candidates.
package schema

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/docframe/pkg/errors"
)

// Kind is the tag of a FieldType.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindString
	KindDatetime
	KindDate
	KindList
	KindStruct
	KindUnknown
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUInt32:   "uint32",
	KindUInt64:   "uint64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindString:   "string",
	KindDatetime: "datetime",
	KindDate:     "date",
	KindList:     "list",
	KindStruct:   "struct",
	KindUnknown:  "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// TimeUnit is the resolution of a Datetime column.
type TimeUnit uint8

const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "s"
	case Millisecond:
		return "ms"
	case Microsecond:
		return "us"
	case Nanosecond:
		return "ns"
	default:
		return fmt.Sprintf("unit(%d)", uint8(u))
	}
}

// ParseTimeUnit accepts s, ms, us and ns.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch strings.ToLower(s) {
	case "s", "second", "seconds":
		return Second, nil
	case "ms", "millisecond", "milliseconds", "":
		return Millisecond, nil
	case "us", "microsecond", "microseconds":
		return Microsecond, nil
	case "ns", "nanosecond", "nanoseconds":
		return Nanosecond, nil
	}
	return Millisecond, errors.New(errors.ErrorTypeConfig, "unknown time unit").WithDetail("unit", s)
}

// PerMilli is how many units fit in one millisecond. Zero for Second.
func (u TimeUnit) PerMilli() int64 {
	switch u {
	case Microsecond:
		return 1_000
	case Nanosecond:
		return 1_000_000
	case Millisecond:
		return 1
	default:
		return 0
	}
}

// FieldType is the inferred type of one field. Elem is set for List, Fields
// for Struct and Unit for Datetime. Values are treated as immutable.
type FieldType struct {
	Kind   Kind
	Unit   TimeUnit
	Elem   *FieldType
	Fields []Field
}

func Null() FieldType    { return FieldType{Kind: KindNull} }
func Bool() FieldType    { return FieldType{Kind: KindBool} }
func Int32() FieldType   { return FieldType{Kind: KindInt32} }
func Int64() FieldType   { return FieldType{Kind: KindInt64} }
func UInt32() FieldType  { return FieldType{Kind: KindUInt32} }
func UInt64() FieldType  { return FieldType{Kind: KindUInt64} }
func Float32() FieldType { return FieldType{Kind: KindFloat32} }
func Float64() FieldType { return FieldType{Kind: KindFloat64} }
func String() FieldType  { return FieldType{Kind: KindString} }
func Date() FieldType    { return FieldType{Kind: KindDate} }
func Unknown() FieldType { return FieldType{Kind: KindUnknown} }

// Datetime returns a datetime type with the given unit.
func Datetime(unit TimeUnit) FieldType {
	return FieldType{Kind: KindDatetime, Unit: unit}
}

// List returns a list type with the given element type.
func List(elem FieldType) FieldType {
	return FieldType{Kind: KindList, Elem: &elem}
}

// Struct returns a struct type with the given ordered fields.
func Struct(fields ...Field) FieldType {
	return FieldType{Kind: KindStruct, Fields: fields}
}

// IsNumeric reports whether t is an integer or floating point type.
func (t FieldType) IsNumeric() bool {
	switch t.Kind {
	case KindInt32, KindInt64, KindUInt32, KindUInt64, KindFloat32, KindFloat64:
		return true
	}
	return false
}

// IsInteger reports whether t is a signed or unsigned integer type.
func (t FieldType) IsInteger() bool {
	return t.IsNumeric() && !t.IsFloat()
}

// IsFloat reports whether t is Float32 or Float64.
func (t FieldType) IsFloat() bool {
	return t.Kind == KindFloat32 || t.Kind == KindFloat64
}

// IsTemporal reports whether t is Datetime or Date.
func (t FieldType) IsTemporal() bool {
	return t.Kind == KindDatetime || t.Kind == KindDate
}

// IsCompound reports whether t is List or Struct.
func (t FieldType) IsCompound() bool {
	return t.Kind == KindList || t.Kind == KindStruct
}

// Equal compares two types structurally.
func (t FieldType) Equal(o FieldType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindDatetime:
		return t.Unit == o.Unit
	case KindList:
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equal(*o.Elem)
	case KindStruct:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
	}
	return true
}

func (t FieldType) String() string {
	switch t.Kind {
	case KindDatetime:
		return fmt.Sprintf("datetime[%s]", t.Unit)
	case KindList:
		if t.Elem == nil {
			return "list[null]"
		}
		return fmt.Sprintf("list[%s]", t.Elem.String())
	case KindStruct:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Name + ": " + f.Type.String()
		}
		return "struct{" + strings.Join(parts, ", ") + "}"
	default:
		return t.Kind.String()
	}
}

// Field is a named type. Inferred keeps the merged type seen during
// inference when Type had to be degraded for materialization.
type Field struct {
	Name     string
	Type     FieldType
	Inferred *FieldType
}

// Schema is an ordered set of uniquely named fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema, rejecting duplicate names.
func NewSchema(fields ...Field) (Schema, error) {
	s := Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			return Schema{}, errors.Computef("duplicate field %q in schema", f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is NewSchema for static schemas in tests and examples.
func MustSchema(fields ...Field) Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.fields) }

// Field returns the i-th field.
func (s Schema) Field(i int) Field { return s.fields[i] }

// Fields returns a copy of the fields in order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup finds a field by name.
func (s Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Names returns the field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func (s Schema) String() string {
	var b strings.Builder
	b.WriteString("schema:\n")
	for _, f := range s.fields {
		fmt.Fprintf(&b, "  %s: %s", f.Name, f.Type)
		if f.Inferred != nil && !f.Inferred.Equal(f.Type) {
			fmt.Fprintf(&b, " (inferred %s)", f.Inferred)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
