package source

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ajitpratap0/docframe/pkg/errors"
)

// DefaultBatchSize is the cursor batch size requested from the server.
const DefaultBatchSize int32 = 1000

// MongoSource reads documents from a MongoDB collection.
type MongoSource struct {
	client    *mongo.Client
	coll      *mongo.Collection
	logger    *zap.Logger
	batchSize int32
}

// MongoOption configures a MongoSource.
type MongoOption func(*MongoSource)

// WithBatchSize sets the cursor batch size.
func WithBatchSize(n int32) MongoOption {
	return func(s *MongoSource) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// Connect parses opts, connects and pings the deployment. The returned
// source owns the client and disconnects it on Close.
func Connect(ctx context.Context, opts Options, logger *zap.Logger, mopts ...MongoOption) (*MongoSource, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	clientOpts := options.Client().ApplyURI(opts.ConnectionStr)
	if err := clientOpts.Validate(); err != nil {
		return nil, errors.WrapCompute(err, "unable to parse options")
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.WrapCompute(err, "unable to build client")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.WrapCompute(err, "unable to reach deployment")
	}

	s := NewMongoSource(client.Database(opts.Database).Collection(opts.Collection), logger, mopts...)
	s.client = client
	s.logger.Info("connected to MongoDB")
	return s, nil
}

// NewMongoSource wraps an existing collection. Close leaves the client
// connected.
func NewMongoSource(coll *mongo.Collection, logger *zap.Logger, opts ...MongoOption) *MongoSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MongoSource{
		coll:      coll,
		batchSize: DefaultBatchSize,
		logger: logger.With(
			zap.String("component", "mongo_source"),
			zap.String("collection", coll.Database().Name()+"."+coll.Name()),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "<db>.<collection>".
func (s *MongoSource) Name() string {
	return s.coll.Database().Name() + "." + s.coll.Name()
}

// Sample returns up to n documents.
func (s *MongoSource) Sample(ctx context.Context, n int, projection Projection) ([]Document, error) {
	if n <= 0 {
		return nil, nil
	}
	cur, err := s.Stream(ctx, n, projection)
	if err != nil {
		return nil, err
	}
	return collectSample(ctx, cur, n)
}

// Stream runs a find over the collection.
func (s *MongoSource) Stream(ctx context.Context, limit int, projection Projection) (Cursor, error) {
	findOpts := options.Find().SetBatchSize(s.batchSize)
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	if p := projection.ToBSON(); p != nil {
		findOpts.SetProjection(p)
	}

	cur, err := s.coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, errors.WrapCompute(err, "find failed").WithDetail("collection", s.Name())
	}

	s.logger.Debug("opened cursor",
		zap.Int("limit", limit),
		zap.Strings("projection", projection))

	return &mongoCursor{cur: cur}, nil
}

// Close disconnects the client when the source created it.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.WrapCompute(err, "unable to disconnect")
	}
	return nil
}

type mongoCursor struct {
	cur *mongo.Cursor
	doc Document
	err error
}

func (c *mongoCursor) Next(ctx context.Context) bool {
	if c.err != nil || !c.cur.Next(ctx) {
		return false
	}
	var doc Document
	if err := c.cur.Decode(&doc); err != nil {
		c.err = errors.WrapCompute(err, "unable to decode document")
		return false
	}
	c.doc = doc
	return true
}

func (c *mongoCursor) Document() Document { return c.doc }

func (c *mongoCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.cur.Err(); err != nil {
		return errors.WrapCompute(err, "cursor failed")
	}
	return nil
}

func (c *mongoCursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}
