package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/docframe/pkg/compression"
	"github.com/ajitpratap0/docframe/pkg/errors"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions([]byte(`{"connection_str":"mongodb://localhost:27017","db":"shop","collection":"orders"}`))
	require.NoError(t, err)
	assert.Equal(t, Options{
		ConnectionStr: "mongodb://localhost:27017",
		Database:      "shop",
		Collection:    "orders",
	}, opts)
}

func TestParseOptionsFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"connection_str":`},
		{"unknown key", `{"connection_str":"mongodb://x","db":"a","collection":"b","extra":1}`},
		{"missing db", `{"connection_str":"mongodb://x","collection":"b"}`},
		{"missing collection", `{"connection_str":"mongodb://x","db":"a"}`},
		{"missing uri", `{"db":"a","collection":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsCompute(err))
			assert.Contains(t, err.Error(), "unable to parse options")
		})
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"connection_str":"mongodb://h","db":"d","collection":"c"}`), 0o600))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "c", opts.Collection)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.IsCompute(err))
}

func TestProjection(t *testing.T) {
	assert.Nil(t, Projection(nil).ToBSON())

	assert.Equal(t, bson.D{
		{Key: "a", Value: 1},
		{Key: "b", Value: 1},
		{Key: "_id", Value: 0},
	}, Projection{"a", "b"}.ToBSON())

	assert.Equal(t, bson.D{
		{Key: "_id", Value: 1},
		{Key: "a", Value: 1},
	}, Projection{"_id", "a"}.ToBSON())

	doc := Document{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "b", Value: 2},
		{Key: "a", Value: 1},
		{Key: "c", Value: 3},
	}
	assert.Equal(t, Document{{Key: "b", Value: 2}, {Key: "a", Value: 1}}, Projection{"a", "b"}.Apply(doc))
	assert.Len(t, Projection(nil).Apply(doc), 4)
}

func memoryDocs() []Document {
	return []Document{
		{{Key: "n", Value: int32(1)}, {Key: "s", Value: "hi"}},
		{{Key: "n", Value: int32(2)}},
		{{Key: "n", Value: int32(3)}, {Key: "s", Value: "bye"}},
	}
}

func drain(t *testing.T, cur Cursor) []Document {
	t.Helper()
	ctx := context.Background()
	defer cur.Close(ctx)

	var out []Document
	for cur.Next(ctx) {
		out = append(out, cur.Document())
	}
	require.NoError(t, cur.Err())
	return out
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource("mem", memoryDocs())
	assert.Equal(t, "mem", src.Name())

	sample, err := src.Sample(ctx, 2, nil)
	require.NoError(t, err)
	assert.Len(t, sample, 2)

	sample, err = src.Sample(ctx, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, sample)

	cur, err := src.Stream(ctx, 0, Projection{"s"})
	require.NoError(t, err)
	docs := drain(t, cur)
	require.Len(t, docs, 3)
	assert.Equal(t, Document{{Key: "s", Value: "hi"}}, docs[0])
	assert.Empty(t, docs[1])

	cur, err = src.Stream(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, drain(t, cur), 1)
}

func TestMemorySourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cur, err := NewMemorySource("mem", memoryDocs()).Stream(ctx, 0, nil)
	require.NoError(t, err)
	assert.False(t, cur.Next(ctx))
	assert.ErrorIs(t, cur.Err(), context.Canceled)
}

const extJSONLines = `{"_id":{"$oid":"5f1d7f3e9c1b2a0001a1b2c3"},"n":{"$numberInt":"1"},"s":"hi","at":{"$date":"2021-01-02T03:04:05Z"}}

{"n":2}
{"n":{"$numberLong":"3"},"s":"bye"}
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	src, err := OpenFile(writeFile(t, "docs.jsonl", []byte(extJSONLines)), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "docs.jsonl", src.Name())

	cur, err := src.Stream(ctx, 0, nil)
	require.NoError(t, err)
	docs := drain(t, cur)
	require.Len(t, docs, 3)

	first := docs[0].Map()
	assert.IsType(t, primitive.ObjectID{}, first["_id"])
	assert.Equal(t, int32(1), first["n"])
	assert.IsType(t, primitive.DateTime(0), first["at"])
	assert.Equal(t, int64(3), docs[2].Map()["n"])

	sample, err := src.Sample(ctx, 2, Projection{"n"})
	require.NoError(t, err)
	require.Len(t, sample, 2)
	assert.Equal(t, Document{{Key: "n", Value: int32(1)}}, sample[0])
}

func TestFileSourceCompressed(t *testing.T) {
	data, err := compression.Compress([]byte(extJSONLines), compression.Zstd, compression.Default)
	require.NoError(t, err)

	src, err := OpenFile(writeFile(t, "docs.jsonl.zst", data), nil)
	require.NoError(t, err)

	cur, err := src.Stream(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Len(t, drain(t, cur), 2)
}

func TestFileSourceBadLine(t *testing.T) {
	src, err := OpenFile(writeFile(t, "bad.jsonl", []byte("{\"n\":1}\nnot json\n")), nil)
	require.NoError(t, err)

	ctx := context.Background()
	cur, err := src.Stream(ctx, 0, nil)
	require.NoError(t, err)
	defer cur.Close(ctx)

	assert.True(t, cur.Next(ctx))
	assert.False(t, cur.Next(ctx))
	require.Error(t, cur.Err())
	assert.True(t, errors.IsCompute(cur.Err()))
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "nope.jsonl"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCompute(err))

	_, err = OpenFile(t.TempDir(), nil)
	assert.Error(t, err)
}
