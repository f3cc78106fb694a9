package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ajitpratap0/docframe/pkg/source"
)

// MongoURIEnv names the variable holding the connection string of a live
// deployment for integration tests.
const MongoURIEnv = "DOCFRAME_TEST_MONGO_URI"

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// MongoURI returns the integration deployment, skipping the test when none
// is configured.
func MongoURI(t *testing.T) string {
	IntegrationTest(t)
	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set", MongoURIEnv)
	}
	return uri
}

// MongoSuite provides a throwaway database on a live deployment. Each test
// gets a fresh collection.
type MongoSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	client    *mongo.Client
	uri       string
	database  string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *MongoSuite) SetupSuite() {
	s.uri = MongoURI(s.T())
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	client, err := mongo.Connect(s.ctx, options.Client().ApplyURI(s.uri))
	require.NoError(s.T(), err)
	require.NoError(s.T(), client.Ping(s.ctx, nil))
	s.client = client
	s.database = "docframe_test_" + uuid.NewString()[:8]

	s.T().Logf("Integration suite using database %s", s.database)
}

// TearDownSuite runs after all tests in the suite
func (s *MongoSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Database(s.database).Drop(s.ctx)
		_ = s.client.Disconnect(s.ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.T().Logf("Integration suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *MongoSuite) Context() context.Context {
	return s.ctx
}

// Seed inserts docs into a new collection and returns options pointing at it.
func (s *MongoSuite) Seed(docs []bson.D) source.Options {
	name := "c_" + uuid.NewString()[:8]
	if len(docs) > 0 {
		batch := make([]interface{}, len(docs))
		for i, d := range docs {
			batch[i] = d
		}
		_, err := s.client.Database(s.database).Collection(name).InsertMany(s.ctx, batch)
		require.NoError(s.T(), err)
	}
	return source.Options{
		ConnectionStr: s.uri,
		Database:      s.database,
		Collection:    name,
	}
}
