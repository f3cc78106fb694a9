package schema

// Merge combines two type candidates for the same field.
//
//   - Null is the identity; Unknown is the identity against any non-null type.
//   - Equal types merge to themselves.
//   - Numeric pairs widen: signed ints to Int64, unsigned to UInt64, UInt32
//     with a signed int to Int64, UInt64 with a signed int to Float64 and
//     anything with a float to Float64.
//   - Datetimes keep the finer unit; Date with Datetime becomes the Datetime.
//   - Lists merge element-wise; structs merge field-wise when both carry the
//     same field names.
//   - Every other pair falls back to String.
func Merge(a, b FieldType) FieldType {
	switch {
	case a.Kind == KindNull:
		return b
	case b.Kind == KindNull:
		return a
	case a.Kind == KindUnknown:
		return b
	case b.Kind == KindUnknown:
		return a
	case a.Equal(b):
		return a
	case a.IsNumeric() && b.IsNumeric():
		return mergeNumeric(a.Kind, b.Kind)
	case a.IsTemporal() && b.IsTemporal():
		return mergeTemporal(a, b)
	case a.Kind == KindList && b.Kind == KindList:
		return List(Merge(elemOf(a), elemOf(b)))
	case a.Kind == KindStruct && b.Kind == KindStruct:
		return mergeStruct(a, b)
	}
	return String()
}

func mergeNumeric(a, b Kind) FieldType {
	if isFloatKind(a) || isFloatKind(b) {
		return Float64()
	}

	aSigned, bSigned := isSignedKind(a), isSignedKind(b)
	switch {
	case aSigned && bSigned:
		return Int64()
	case !aSigned && !bSigned:
		return UInt64()
	}

	unsigned := a
	if aSigned {
		unsigned = b
	}
	if unsigned == KindUInt32 {
		return Int64()
	}
	return Float64()
}

func mergeTemporal(a, b FieldType) FieldType {
	switch {
	case a.Kind == KindDatetime && b.Kind == KindDatetime:
		if b.Unit > a.Unit {
			return b
		}
		return a
	case a.Kind == KindDatetime:
		return a
	case b.Kind == KindDatetime:
		return b
	}
	return Date()
}

func mergeStruct(a, b FieldType) FieldType {
	if len(a.Fields) != len(b.Fields) {
		return String()
	}

	other := make(map[string]FieldType, len(b.Fields))
	for _, f := range b.Fields {
		other[f.Name] = f.Type
	}

	fields := make([]Field, 0, len(a.Fields))
	for _, f := range a.Fields {
		bt, ok := other[f.Name]
		if !ok {
			return String()
		}
		fields = append(fields, Field{Name: f.Name, Type: Merge(f.Type, bt)})
	}
	return Struct(fields...)
}

func elemOf(t FieldType) FieldType {
	if t.Elem == nil {
		return Null()
	}
	return *t.Elem
}

func isFloatKind(k Kind) bool {
	return k == KindFloat32 || k == KindFloat64
}

func isSignedKind(k Kind) bool {
	return k == KindInt32 || k == KindInt64
}

// Resolve maps a merged type onto one a column buffer can hold. Compound,
// null-only and unknown types degrade to String.
func Resolve(t FieldType) FieldType {
	switch t.Kind {
	case KindNull, KindUnknown, KindList, KindStruct:
		return String()
	}
	return t
}
