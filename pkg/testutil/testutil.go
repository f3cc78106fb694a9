// Package testutil provides testing utilities for docframe
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/docframe/pkg/compression"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// CheckedAllocator returns an Arrow allocator that fails the test if any
// allocation is still live when the test ends.
func CheckedAllocator(t *testing.T) *memory.CheckedAllocator {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

// Orders returns n documents shaped like an orders collection. Every third
// document lacks "note", and "qty" switches to int64 from the tenth.
func Orders(n int) []bson.D {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]bson.D, n)
	for i := range docs {
		var qty interface{} = int32(i)
		if i >= 10 {
			qty = int64(i)
		}
		doc := bson.D{
			{Key: "_id", Value: primitive.NewObjectIDFromTimestamp(base.Add(time.Duration(i) * time.Second))},
			{Key: "sku", Value: "sku-" + string(rune('a'+i%26))},
			{Key: "qty", Value: qty},
			{Key: "price", Value: float64(i) * 1.5},
			{Key: "paid", Value: i%2 == 0},
			{Key: "at", Value: primitive.NewDateTimeFromTime(base.Add(time.Duration(i) * time.Hour))},
		}
		if i%3 != 0 {
			doc = append(doc, bson.E{Key: "note", Value: "n" + string(rune('0'+i%10))})
		}
		docs[i] = doc
	}
	return docs
}

// WriteExtJSON writes docs as canonical Extended JSON, one per line, to
// dir/name. The file is compressed when name carries a known extension.
func WriteExtJSON(t *testing.T, dir, name string, docs []bson.D) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test file
	require.NoError(t, err)
	defer f.Close()

	w, err := compression.NewWriter(f, compression.FromPath(path), compression.Default)
	require.NoError(t, err)

	for _, doc := range docs {
		line, err := bson.MarshalExtJSON(doc, true, false)
		require.NoError(t, err)
		_, err = w.Write(append(line, '\n'))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

// AssertEventually asserts that a condition becomes true within the specified timeout.
// It checks the condition every 10ms until it succeeds or the timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
