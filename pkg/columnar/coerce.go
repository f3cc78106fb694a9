package columnar

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// number is a numeric source value before it is cast to a column type.
type number struct {
	i       int64
	u       uint64
	f       float64
	isFloat bool
	isU     bool
}

// asNumber accepts the numeric values a decoded document can carry. Bool
// counts as 0 or 1.
func asNumber(raw interface{}) (number, bool) {
	switch v := raw.(type) {
	case int32:
		return number{i: int64(v)}, true
	case int64:
		return number{i: v}, true
	case int:
		return number{i: int64(v)}, true
	case int16:
		return number{i: int64(v)}, true
	case int8:
		return number{i: int64(v)}, true
	case uint32:
		return number{i: int64(v)}, true
	case uint16:
		return number{i: int64(v)}, true
	case uint8:
		return number{i: int64(v)}, true
	case uint64:
		return number{u: v, isU: true}, true
	case uint:
		return number{u: uint64(v), isU: true}, true
	case float64:
		return number{f: v, isFloat: true}, true
	case float32:
		return number{f: float64(v), isFloat: true}, true
	case bool:
		if v {
			return number{i: 1}, true
		}
		return number{}, true
	}
	return number{}, false
}

func (n number) int64() (int64, bool) {
	switch {
	case n.isFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return 0, false
		}
		t := math.Trunc(n.f)
		if t < -9223372036854775808.0 || t >= 9223372036854775808.0 {
			return 0, false
		}
		return int64(t), true
	case n.isU:
		if n.u > math.MaxInt64 {
			return 0, false
		}
		return int64(n.u), true
	}
	return n.i, true
}

func (n number) uint64() (uint64, bool) {
	switch {
	case n.isFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return 0, false
		}
		t := math.Trunc(n.f)
		if t < 0 || t >= 18446744073709551616.0 {
			return 0, false
		}
		return uint64(t), true
	case n.isU:
		return n.u, true
	}
	if n.i < 0 {
		return 0, false
	}
	return uint64(n.i), true
}

func (n number) int32() (int32, bool) {
	v, ok := n.int64()
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

func (n number) uint32() (uint32, bool) {
	v, ok := n.uint64()
	if !ok || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

func (n number) float64() float64 {
	switch {
	case n.isFloat:
		return n.f
	case n.isU:
		return float64(n.u)
	}
	return float64(n.i)
}

// float32 rejects finite values whose magnitude float32 cannot hold. NaN and
// the infinities carry over.
func (n number) float32() (float32, bool) {
	f := n.float64()
	if !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return float32(f), true
}

// isNull reports values that mean "no value" rather than a failed coercion.
func isNull(raw interface{}) bool {
	switch raw.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return true
	}
	return false
}

// asText renders the value kinds a String column accepts. Embedded documents
// and arrays become relaxed Extended JSON.
func asText(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case primitive.Symbol:
		return string(v), true
	case primitive.ObjectID:
		return v.Hex(), true
	case primitive.Regex:
		return "/" + v.Pattern + "/" + v.Options, true
	case primitive.JavaScript:
		return string(v), true
	case primitive.CodeWithScope:
		return string(v.Code), true
	case primitive.Timestamp:
		return fmt.Sprintf("Timestamp(%d, %d)", v.T, v.I), true
	case primitive.D, primitive.M, map[string]interface{}:
		out, err := bson.MarshalExtJSON(v, false, false)
		if err != nil {
			return "", false
		}
		return string(out), true
	case primitive.A:
		return arrayText(v)
	case []interface{}:
		return arrayText(primitive.A(v))
	}
	return "", false
}

// arrayText renders an array by wrapping it in a one-field document, since
// Extended JSON marshaling needs a document at the top level.
func arrayText(a primitive.A) (string, bool) {
	out, err := bson.MarshalExtJSON(primitive.D{{Key: "v", Value: a}}, false, false)
	if err != nil {
		return "", false
	}
	const prefix = `{"v":`
	s := string(out)
	if len(s) < len(prefix)+1 || s[:len(prefix)] != prefix {
		return "", false
	}
	return s[len(prefix) : len(s)-1], true
}
