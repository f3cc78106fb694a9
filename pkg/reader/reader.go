// Package reader reads a document collection into a typed columnar table.
//
// A read infers a schema from a bounded sample, opens one buffer per field,
// streams the documents into the buffers and finalizes them into a Table:
//
//	r, err := reader.Connect(ctx, opts, logger)
//	if err != nil {
//		return err
//	}
//	defer r.Close(ctx)
//
//	table, err := r.Read(ctx, reader.ReadOptions{
//		InferSchemaLength: 100,
//		Limit:             10000,
//		Columns:           []string{"ticker", "peers"},
//	})
//	if err != nil {
//		return err
//	}
//	defer table.Release()
package reader

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/docframe/internal/pipeline"
	"github.com/ajitpratap0/docframe/pkg/columnar"
	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/logger"
	"github.com/ajitpratap0/docframe/pkg/metrics"
	"github.com/ajitpratap0/docframe/pkg/observability"
	"github.com/ajitpratap0/docframe/pkg/schema"
	"github.com/ajitpratap0/docframe/pkg/source"
)

// Defaults applied to zero ReadOptions fields.
const (
	DefaultInferSchemaLength = schema.DefaultSampleSize
	DefaultLimit             = 10000
)

// ReadOptions controls one read.
type ReadOptions struct {
	// InferSchemaLength bounds the schema sample; <= 0 means the default.
	InferSchemaLength int
	// Limit bounds the documents read; < 0 means unlimited, 0 the default.
	Limit int
	// Columns restricts the read to the named fields, in any order.
	Columns []string
	// Workers selects parallel materialization when greater than one.
	Workers int
	// BatchSize is the parallel batch size.
	BatchSize int
	// Allocator backs the column buffers; nil means the Go allocator.
	Allocator memory.Allocator
}

func (o ReadOptions) withDefaults() ReadOptions {
	if o.InferSchemaLength <= 0 {
		o.InferSchemaLength = DefaultInferSchemaLength
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit < 0 {
		o.Limit = 0
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.BatchSize <= 0 {
		o.BatchSize = pipeline.DefaultBatchSize
	}
	return o
}

// Reader reads tables from a document source.
type Reader struct {
	src    source.Source
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures a Reader.
type Option func(*Reader)

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reader) { r.tracer = t }
}

// New creates a reader over src.
func New(src source.Source, log *zap.Logger, opts ...Option) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reader{
		src:    src,
		logger: log.With(zap.String("component", "reader")),
		tracer: observability.Tracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect opens a MongoDB collection and returns a reader over it.
func Connect(ctx context.Context, opts source.Options, log *zap.Logger, ropts ...Option) (*Reader, error) {
	src, err := source.Connect(ctx, opts, log)
	if err != nil {
		return nil, err
	}
	return New(src, log, ropts...), nil
}

// OpenFile returns a reader over a file of Extended JSON documents.
func OpenFile(path string, log *zap.Logger, ropts ...Option) (*Reader, error) {
	src, err := source.OpenFile(path, log)
	if err != nil {
		return nil, err
	}
	return New(src, log, ropts...), nil
}

// Source returns the underlying document source.
func (r *Reader) Source() source.Source { return r.src }

// InferSchema samples up to n documents, restricted to projection, and
// infers their schema.
func (r *Reader) InferSchema(ctx context.Context, n int, projection source.Projection) (schema.Schema, error) {
	ctx, span := observability.StartSpan(ctx, r.tracer, "infer_schema")
	defer span.End()
	timer := metrics.NewTimer("infer_schema")
	defer timer.ObserveDuration()

	log := logger.FromContext(ctx, r.logger)

	docs, err := r.src.Sample(ctx, n, projection)
	if err != nil {
		err = errors.WrapCompute(err, "unable to fetch rows for determining schema")
		span.RecordError(err)
		return schema.Schema{}, err
	}

	s, err := schema.NewInferrer(log, schema.WithSampleSize(n)).Infer(docs)
	if err != nil {
		span.RecordError(err)
		return schema.Schema{}, err
	}

	span.SetAttribute("sample.documents", len(docs))
	span.SetAttribute("schema.fields", s.Len())
	metrics.SchemaFields.WithLabelValues(r.src.Name()).Set(float64(s.Len()))
	log.Debug("inferred schema",
		zap.Int("sample", len(docs)),
		zap.Stringer("schema", s))
	return s, nil
}

// Read infers a schema and materializes the source into a table. The caller
// owns the returned table and must Release it.
func (r *Reader) Read(ctx context.Context, opts ReadOptions) (table *columnar.Table, err error) {
	opts = opts.withDefaults()
	collection := r.src.Name()

	ctx = logger.WithReadID(ctx, uuid.NewString())
	ctx = logger.WithCollection(ctx, collection)
	log := logger.FromContext(ctx, r.logger)

	ctx, span := observability.StartSpan(ctx, r.tracer, "docframe.read")
	span.SetAttribute("collection", collection)
	span.SetAttribute("limit", opts.Limit)
	span.SetAttribute("workers", opts.Workers)
	if len(opts.Columns) > 0 {
		span.SetAttribute("columns", opts.Columns)
	}
	defer func() {
		span.RecordError(err)
		span.End()
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailure
			log.Error("read failed", zap.Error(err))
		}
		metrics.ReadsTotal.WithLabelValues(status).Inc()
	}()

	st := newReadState()
	projection := source.Projection(opts.Columns)

	s, err := r.InferSchema(ctx, opts.InferSchemaLength, projection)
	if err != nil {
		return nil, err
	}
	if err := st.advance(stateSchemaInferred); err != nil {
		return nil, err
	}

	reg, err := columnar.NewRegistry(s, opts.Limit,
		columnar.WithAllocator(opts.Allocator),
		columnar.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := st.advance(stateBuffersOpen); err != nil {
		reg.Release()
		return nil, err
	}

	n, err := r.materialize(ctx, reg, projection, opts)
	if err != nil {
		reg.Release()
		return nil, err
	}

	table, err = r.finalize(ctx, reg, st)
	if err != nil {
		reg.Release()
		return nil, err
	}

	metrics.DocumentsRead.WithLabelValues(collection).Add(float64(n))
	for _, buf := range reg.Buffers() {
		if c := buf.CoercionNulls(); c > 0 {
			metrics.CoercionNulls.WithLabelValues(collection, buf.Field().Type.String()).Add(float64(c))
		}
	}
	span.SetAttribute("documents", n)

	log.Info("read complete",
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumCols()))
	return table, nil
}

func (r *Reader) materialize(ctx context.Context, reg *columnar.Registry, projection source.Projection, opts ReadOptions) (int, error) {
	ctx, span := observability.StartSpan(ctx, r.tracer, "materialize")
	defer span.End()
	timer := metrics.NewTimer("materialize")
	defer timer.ObserveDuration()

	cur, err := r.src.Stream(ctx, opts.Limit, projection)
	if err != nil {
		err = errors.WrapCompute(err, "unable to stream documents")
		span.RecordError(err)
		return 0, err
	}
	defer func() {
		if cerr := cur.Close(ctx); cerr != nil {
			r.logger.Warn("failed to close cursor", zap.Error(cerr))
		}
	}()

	m := pipeline.NewMaterializer(reg, logger.FromContext(ctx, r.logger),
		pipeline.WithWorkers(opts.Workers),
		pipeline.WithBatchSize(opts.BatchSize),
		pipeline.WithRowLimit(opts.Limit))

	n, err := m.Run(ctx, cur)
	span.SetAttribute("documents", n)
	span.RecordError(err)
	if err == nil {
		m.LogSummary()
	}
	return n, err
}

func (r *Reader) finalize(ctx context.Context, reg *columnar.Registry, st *readState) (*columnar.Table, error) {
	_, span := observability.StartSpan(ctx, r.tracer, "finalize")
	defer span.End()
	timer := metrics.NewTimer("finalize")
	defer timer.ObserveDuration()

	if err := st.advance(stateFinalized); err != nil {
		span.RecordError(err)
		return nil, err
	}
	table, err := reg.Finish()
	span.RecordError(err)
	return table, err
}

// Close releases the source.
func (r *Reader) Close(ctx context.Context) error {
	return r.src.Close(ctx)
}

// readState is the lifecycle of a single read. It only moves forward.
type readState struct {
	current state
}

type state uint8

const (
	stateUninitialized state = iota
	stateSchemaInferred
	stateBuffersOpen
	stateFinalized
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateSchemaInferred:
		return "schema_inferred"
	case stateBuffersOpen:
		return "buffers_open"
	case stateFinalized:
		return "finalized"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func newReadState() *readState {
	return &readState{current: stateUninitialized}
}

func (rs *readState) advance(next state) error {
	if next != rs.current+1 {
		return errors.Computef("invalid read transition from %s to %s", rs.current, next)
	}
	rs.current = next
	return nil
}
