package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/schema"
)

// ErrFinalized is returned by any append or finish after the registry (or a
// buffer) has been finished.
var ErrFinalized = errors.Compute("buffers already finalized")

// Registry owns one Buffer per schema field, in schema order.
type Registry struct {
	schema  schema.Schema
	buffers []*Buffer
	logger  *zap.Logger
	rows    int
	seen    []bool
	done    bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	mem    memory.Allocator
	logger *zap.Logger
}

// WithAllocator sets the Arrow allocator backing every buffer.
func WithAllocator(mem memory.Allocator) RegistryOption {
	return func(c *registryConfig) { c.mem = mem }
}

// WithLogger sets the logger used when the registry is finished.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(c *registryConfig) { c.logger = logger }
}

// NewRegistry allocates a buffer for each field of s. capacity is the
// expected row count.
func NewRegistry(s schema.Schema, capacity int, opts ...RegistryOption) (*Registry, error) {
	cfg := registryConfig{mem: memory.DefaultAllocator, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		schema:  s,
		buffers: make([]*Buffer, 0, s.Len()),
		logger:  cfg.logger.With(zap.String("component", "buffer_registry")),
		seen:    make([]bool, s.Len()),
	}
	for _, f := range s.Fields() {
		b, err := NewBuffer(cfg.mem, f, capacity)
		if err != nil {
			r.Release()
			return nil, err
		}
		r.buffers = append(r.buffers, b)
	}
	return r, nil
}

// Schema returns the schema the registry was built from.
func (r *Registry) Schema() schema.Schema { return r.schema }

// Len returns the number of documents consumed.
func (r *Registry) Len() int { return r.rows }

// Buffers returns the buffers in schema order.
func (r *Registry) Buffers() []*Buffer { return r.buffers }

// Buffer returns the buffer for name.
func (r *Registry) Buffer(name string) (*Buffer, bool) {
	i := r.schema.Index(name)
	if i < 0 {
		return nil, false
	}
	return r.buffers[i], true
}

// Append consumes one document: every schema field present in doc is
// coerced into its buffer, every absent one gets a null. Fields outside the
// schema are ignored, and of repeated keys the first wins.
func (r *Registry) Append(doc bson.D) error {
	if r.done {
		return ErrFinalized
	}

	for _, elem := range doc {
		i := r.schema.Index(elem.Key)
		if i < 0 || r.seen[i] {
			continue
		}
		r.seen[i] = true
		if err := r.buffers[i].Add(elem.Value); err != nil {
			return err
		}
	}

	for i, ok := range r.seen {
		if ok {
			r.seen[i] = false
			continue
		}
		if err := r.buffers[i].AppendNull(); err != nil {
			return err
		}
	}

	r.rows++
	return nil
}

// AppendColumns fills the given columns from docs, leaving the others alone.
// Calls touching disjoint column sets may run concurrently; CommitBatch must
// follow once every column has seen the batch.
func (r *Registry) AppendColumns(docs []bson.D, columns []int) error {
	if r.done {
		return ErrFinalized
	}
	for _, i := range columns {
		b := r.buffers[i]
		name := r.schema.Field(i).Name
		for _, doc := range docs {
			v, ok := lookup(doc, name)
			var err error
			if ok {
				err = b.Add(v)
			} else {
				err = b.AppendNull()
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// CommitBatch records n documents appended through AppendColumns and checks
// that every buffer has caught up.
func (r *Registry) CommitBatch(n int) error {
	if r.done {
		return ErrFinalized
	}
	want := r.rows + n
	for _, b := range r.buffers {
		if b.Len() != want {
			return errors.Computef("column %q has %d values, expected %d", b.Field().Name, b.Len(), want)
		}
	}
	r.rows = want
	return nil
}

func lookup(doc bson.D, key string) (interface{}, bool) {
	for _, elem := range doc {
		if elem.Key == key {
			return elem.Value, true
		}
	}
	return nil, false
}

// Finish closes every buffer and assembles the table. It can be called once;
// later calls, and appends, return ErrFinalized.
func (r *Registry) Finish() (*Table, error) {
	if r.done {
		return nil, ErrFinalized
	}
	r.done = true

	arrowSchema, err := r.schema.ToArrow()
	if err != nil {
		r.releaseBuffers()
		return nil, err
	}

	cols := make([]arrow.Array, 0, len(r.buffers))
	release := func() {
		for _, c := range cols {
			c.Release()
		}
		r.releaseBuffers()
	}

	for _, b := range r.buffers {
		if b.Len() != r.rows {
			release()
			return nil, errors.Computef("could not create table: column %q has %d values, expected %d",
				b.Field().Name, b.Len(), r.rows)
		}
		if n := b.CoercionNulls(); n > 0 {
			r.logger.Debug("values coerced to null",
				zap.String("field", b.Field().Name),
				zap.Int64("count", n))
		}
		col, err := b.Finish()
		if err != nil {
			release()
			return nil, errors.WrapCompute(err, "could not create table")
		}
		cols = append(cols, col)
	}

	rec := array.NewRecord(arrowSchema, cols, int64(r.rows))
	for _, c := range cols {
		c.Release()
	}

	r.logger.Debug("finalized buffers",
		zap.Int("rows", r.rows),
		zap.Int("columns", len(cols)))

	return &Table{schema: r.schema, record: rec}, nil
}

// Release discards all buffers without building a table. It is a no-op
// after Finish.
func (r *Registry) Release() {
	if r.done {
		return
	}
	r.done = true
	r.releaseBuffers()
}

func (r *Registry) releaseBuffers() {
	for _, b := range r.buffers {
		b.Release()
	}
}
