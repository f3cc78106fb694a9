package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/docframe/pkg/errors"
)

func TestMongoSource(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sample", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}, {Key: "s", Value: "hi"}},
			bson.D{{Key: "n", Value: int32(2)}},
		))

		src := NewMongoSource(mt.Coll, zaptest.NewLogger(mt), WithBatchSize(10))
		assert.Equal(mt, ns, src.Name())

		docs, err := src.Sample(context.Background(), 2, Projection{"n", "s"})
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.Equal(mt, int32(1), docs[0].Map()["n"])
		assert.Equal(mt, "hi", docs[0].Map()["s"])
	})

	mt.Run("stream across batches", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(42, ns, mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(1)}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
				bson.D{{Key: "n", Value: int32(2)}},
				bson.D{{Key: "n", Value: int32(3)}},
			),
		)

		src := NewMongoSource(mt.Coll, nil)
		cur, err := src.Stream(context.Background(), 0, nil)
		require.NoError(mt, err)

		var got []int32
		for _, doc := range drain(mt.T, cur) {
			got = append(got, doc.Map()["n"].(int32))
		}
		assert.Equal(mt, []int32{1, 2, 3}, got)
	})

	mt.Run("find failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad projection",
		}))

		src := NewMongoSource(mt.Coll, nil)
		_, err := src.Sample(context.Background(), 10, Projection{"n"})
		require.Error(mt, err)
		assert.True(mt, errors.IsCompute(err))
	})

	mt.Run("close leaves borrowed client", func(mt *mtest.T) {
		src := NewMongoSource(mt.Coll, nil)
		assert.NoError(mt, src.Close(context.Background()))
	})
}

func TestConnectRejectsBadOptions(t *testing.T) {
	_, err := Connect(context.Background(), Options{
		ConnectionStr: "not-a-uri",
		Database:      "d",
		Collection:    "c",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCompute(err))
	assert.Contains(t, err.Error(), "unable to parse options")

	_, err = Connect(context.Background(), Options{ConnectionStr: "mongodb://localhost"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCompute(err))
}
