package schema

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Classify maps one decoded BSON value to its FieldType. It never fails:
// value kinds without a column representation classify as String.
func Classify(value interface{}) FieldType {
	switch v := value.(type) {
	case float64, float32:
		return Float64()
	case string:
		return String()
	case bool:
		return Bool()
	case nil, primitive.Null:
		return Null()
	case int32:
		return Int32()
	case int64, int:
		return Int64()
	case primitive.Timestamp:
		// stringified, not parsed
		return String()
	case primitive.D:
		return classifyDocument(v)
	case primitive.M:
		return classifyMap(v)
	case map[string]interface{}:
		return classifyMap(v)
	case primitive.A:
		return classifyArray(v)
	case []interface{}:
		return classifyArray(v)
	case primitive.DateTime, time.Time:
		return Datetime(Millisecond)
	case primitive.Undefined:
		return Unknown()
	default:
		// ObjectID, Symbol, Regex, JavaScript, Binary, Decimal128, MinKey...
		return String()
	}
}

func classifyDocument(doc primitive.D) FieldType {
	return Struct(ClassifyDocument(doc)...)
}

// classifyMap has no key order to preserve, so keys are sorted to keep the
// result deterministic. Decoding into bson.D never produces maps.
func classifyMap(m map[string]interface{}) FieldType {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(m))
	for _, k := range keys {
		fields = append(fields, Field{Name: k, Type: Classify(m[k])})
	}
	return Struct(fields...)
}

func classifyArray(arr []interface{}) FieldType {
	if len(arr) == 0 {
		return List(Null())
	}
	return List(Classify(arr[0]))
}

// ClassifyDocument classifies every field of doc in order.
func ClassifyDocument(doc primitive.D) []Field {
	fields := make([]Field, 0, len(doc))
	for _, e := range doc {
		fields = append(fields, Field{Name: e.Key, Type: Classify(e.Value)})
	}
	return fields
}
