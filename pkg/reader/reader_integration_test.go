package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/docframe/pkg/schema"
	"github.com/ajitpratap0/docframe/pkg/testutil"
)

type mongoReadSuite struct {
	testutil.MongoSuite
}

func TestMongoRead(t *testing.T) {
	suite.Run(t, new(mongoReadSuite))
}

func (s *mongoReadSuite) TestReadOrders() {
	opts := s.Seed(testutil.Orders(50))

	r, err := Connect(s.Context(), opts, testutil.TestLogger(s.T()))
	require.NoError(s.T(), err)
	defer r.Close(s.Context())

	table, err := r.Read(s.Context(), ReadOptions{
		InferSchemaLength: 20,
		Columns:           []string{"qty", "note", "at"},
		Workers:           2,
		BatchSize:         16,
		Allocator:         testutil.CheckedAllocator(s.T()),
	})
	require.NoError(s.T(), err)
	defer table.Release()

	assert.Equal(s.T(), 50, table.NumRows())
	// Columns follow document order, not request order.
	assert.Equal(s.T(), []string{"qty", "at", "note"}, table.Schema().Names())

	qty, _ := table.Schema().Lookup("qty")
	assert.Equal(s.T(), schema.KindInt64, qty.Type.Kind)
	assert.Nil(s.T(), table.Value(2, 0))
	assert.Equal(s.T(), int64(49), table.Value(0, 49))
}

func (s *mongoReadSuite) TestReadEmptyCollection() {
	opts := s.Seed(nil)

	r, err := Connect(s.Context(), opts, nil)
	require.NoError(s.T(), err)
	defer r.Close(s.Context())

	table, err := r.Read(s.Context(), ReadOptions{})
	require.NoError(s.T(), err)
	defer table.Release()
	assert.Equal(s.T(), 0, table.NumRows())
	assert.Equal(s.T(), 0, table.NumCols())
}

func TestFileRead(t *testing.T) {
	path := testutil.WriteExtJSON(t, t.TempDir(), "orders.jsonl.zst", testutil.Orders(30))

	r, err := OpenFile(path, testutil.TestLogger(t))
	require.NoError(t, err)
	defer r.Close(context.Background())

	table, err := r.Read(context.Background(), ReadOptions{Allocator: testutil.CheckedAllocator(t)})
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, 30, table.NumRows())
	assert.Equal(t, []string{"_id", "sku", "qty", "price", "paid", "at", "note"}, table.Schema().Names())

	id, _ := table.Schema().Lookup("_id")
	assert.Equal(t, schema.KindString, id.Type.Kind)
	qty, _ := table.Schema().Lookup("qty")
	assert.Equal(t, schema.KindInt64, qty.Type.Kind)
}
