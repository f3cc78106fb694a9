// Package source provides the document sources a read pulls from: a MongoDB
// collection, an Extended JSON lines file and an in-memory slice.
//
// Every source serves two calls per read: a bounded Sample used for schema
// inference and a Stream that yields the documents to materialize, in
// arrival order.
package source

import (
	"context"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/json"
)

// Document is one source record: an ordered mapping from field name to a
// dynamically typed value.
type Document = bson.D

// Source is a collection of documents.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Sample returns up to n documents from the front of the collection.
	Sample(ctx context.Context, n int, projection Projection) ([]Document, error)
	// Stream opens a cursor over up to limit documents; limit <= 0 means all.
	Stream(ctx context.Context, limit int, projection Projection) (Cursor, error)
	// Close releases the source.
	Close(ctx context.Context) error
}

// Cursor iterates over streamed documents.
type Cursor interface {
	// Next advances to the next document, returning false when the stream
	// is exhausted or failed.
	Next(ctx context.Context) bool
	// Document returns the current document.
	Document() Document
	// Err returns the error that stopped iteration, if any.
	Err() error
	// Close releases the cursor.
	Close(ctx context.Context) error
}

// Options locate a MongoDB collection.
type Options struct {
	ConnectionStr string `json:"connection_str" yaml:"connection_str"`
	Database      string `json:"db" yaml:"db"`
	Collection    string `json:"collection" yaml:"collection"`
}

// ParseOptions decodes options from JSON.
func ParseOptions(data []byte) (Options, error) {
	var opts Options
	if err := json.UnmarshalStrict(data, &opts); err != nil {
		return Options{}, errors.WrapCompute(err, "unable to parse options")
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadOptions reads a JSON options file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.WrapCompute(err, "unable to parse options").WithDetail("path", path)
	}
	return ParseOptions(data)
}

// Validate checks that every location field is set.
func (o Options) Validate() error {
	switch {
	case o.ConnectionStr == "":
		return errors.Compute("unable to parse options: connection_str is required")
	case o.Database == "":
		return errors.Compute("unable to parse options: db is required")
	case o.Collection == "":
		return errors.Compute("unable to parse options: collection is required")
	}
	return nil
}

// collectSample drains up to n documents from a cursor.
func collectSample(ctx context.Context, cur Cursor, n int) ([]Document, error) {
	defer cur.Close(ctx)

	if n <= 0 {
		return nil, nil
	}
	docs := make([]Document, 0, min(n, 1024))
	for len(docs) < n && cur.Next(ctx) {
		docs = append(docs, cur.Document())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
