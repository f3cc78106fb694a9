package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected FieldType
	}{
		{"double", 1.5, Float64()},
		{"string", "hi", String()},
		{"bool", true, Bool()},
		{"null", nil, Null()},
		{"bson null", primitive.Null{}, Null()},
		{"int32", int32(7), Int32()},
		{"int64", int64(7), Int64()},
		{"timestamp", primitive.Timestamp{T: 1, I: 2}, String()},
		{"datetime", primitive.NewDateTimeFromTime(time.Unix(0, 0)), Datetime(Millisecond)},
		{"time", time.Now(), Datetime(Millisecond)},
		{"object id", primitive.NewObjectID(), String()},
		{"symbol", primitive.Symbol("sym"), String()},
		{"regex", primitive.Regex{Pattern: "^a", Options: "i"}, String()},
		{"binary", primitive.Binary{Data: []byte{1}}, String()},
		{"min key", primitive.MinKey{}, String()},
		{"undefined", primitive.Undefined{}, Unknown()},
		{"empty array", bson.A{}, List(Null())},
		{"int array", bson.A{int32(1), "x"}, List(Int32())},
		{
			"document",
			bson.D{{Key: "a", Value: int32(1)}, {Key: "b", Value: "x"}},
			Struct(Field{Name: "a", Type: Int32()}, Field{Name: "b", Type: String()}),
		},
		{
			"nested",
			bson.D{{Key: "tags", Value: bson.A{"x"}}},
			Struct(Field{Name: "tags", Type: List(String())}),
		},
		{
			"map",
			bson.M{"z": 1.0, "a": true},
			Struct(Field{Name: "a", Type: Bool()}, Field{Name: "z", Type: Float64()}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.value)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestClassifyDocumentKeepsOrder(t *testing.T) {
	fields := ClassifyDocument(bson.D{
		{Key: "z", Value: int32(1)},
		{Key: "a", Value: "x"},
	})

	assert.Equal(t, "z", fields[0].Name)
	assert.Equal(t, "a", fields[1].Name)
}
