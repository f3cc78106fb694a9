package source

import (
	"context"
)

// MemorySource serves documents from a slice.
type MemorySource struct {
	name string
	docs []Document
}

// NewMemorySource wraps docs. The slice is not copied.
func NewMemorySource(name string, docs []Document) *MemorySource {
	return &MemorySource{name: name, docs: docs}
}

// Name returns the source name.
func (s *MemorySource) Name() string { return s.name }

// Sample returns the first n documents.
func (s *MemorySource) Sample(ctx context.Context, n int, projection Projection) ([]Document, error) {
	cur, err := s.Stream(ctx, n, projection)
	if err != nil {
		return nil, err
	}
	return collectSample(ctx, cur, n)
}

// Stream iterates over the documents in order.
func (s *MemorySource) Stream(_ context.Context, limit int, projection Projection) (Cursor, error) {
	docs := s.docs
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return &sliceCursor{docs: docs, projection: projection, pos: -1}, nil
}

// Close is a no-op.
func (s *MemorySource) Close(context.Context) error { return nil }

type sliceCursor struct {
	docs       []Document
	projection Projection
	pos        int
	err        error
}

func (c *sliceCursor) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	if c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Document() Document {
	return c.projection.Apply(c.docs[c.pos])
}

func (c *sliceCursor) Err() error { return c.err }

func (c *sliceCursor) Close(context.Context) error { return nil }
