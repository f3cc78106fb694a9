// Package pipeline streams documents from a cursor into a buffer registry,
// either one document at a time or in batches fanned out over column groups.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/docframe/pkg/columnar"
	"github.com/ajitpratap0/docframe/pkg/errors"
	"github.com/ajitpratap0/docframe/pkg/pool"
	"github.com/ajitpratap0/docframe/pkg/source"
)

const (
	// DefaultBatchSize is the number of documents per parallel batch.
	DefaultBatchSize = 1024
	// cancelCheckInterval is how often the sequential path polls ctx.
	cancelCheckInterval = 1024
)

// batches recycles parallel batch slices across runs.
var batches = pool.NewSlicePool[source.Document](DefaultBatchSize)

// Materializer consumes a cursor into a registry. Row order in every column
// is cursor order.
type Materializer struct {
	registry  *columnar.Registry
	logger    *zap.Logger
	metrics   *StreamingMetrics
	workers   int
	batchSize int
	rowLimit  int
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithWorkers sets the number of column groups filled concurrently. One or
// fewer selects the sequential path.
func WithWorkers(n int) Option {
	return func(m *Materializer) { m.workers = n }
}

// WithBatchSize sets the parallel batch size.
func WithBatchSize(n int) Option {
	return func(m *Materializer) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithRowLimit stops after n documents; n <= 0 means no limit.
func WithRowLimit(n int) Option {
	return func(m *Materializer) { m.rowLimit = n }
}

// NewMaterializer creates a materializer for reg.
func NewMaterializer(reg *columnar.Registry, logger *zap.Logger, opts ...Option) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Materializer{
		registry:  reg,
		logger:    logger.With(zap.String("component", "materializer")),
		workers:   1,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics = NewStreamingMetrics("materialize", m.logger)
	return m
}

// Stats returns counters for the last run.
func (m *Materializer) Stats() StreamingStats { return m.metrics.Stats() }

// LogSummary logs the counters for the last run.
func (m *Materializer) LogSummary() { m.metrics.LogSummary() }

// Run consumes cur until it is exhausted, the row limit is reached or ctx is
// done, and returns the number of documents consumed. On error the registry
// holds a partial result the caller should release.
func (m *Materializer) Run(ctx context.Context, cur source.Cursor) (int, error) {
	m.metrics.start()
	defer m.metrics.stop()

	var (
		n   int
		err error
	)
	if m.workers > 1 {
		n, err = m.runParallel(ctx, cur)
	} else {
		n, err = m.runSequential(ctx, cur)
	}
	if err != nil {
		m.logger.Warn("materialization aborted", zap.Int("documents", n), zap.Error(err))
		return n, err
	}

	m.logger.Debug("materialized documents",
		zap.Int("documents", n),
		zap.Int("workers", m.workers))
	return n, nil
}

func (m *Materializer) limitReached(n int) bool {
	return m.rowLimit > 0 && n >= m.rowLimit
}

func (m *Materializer) runSequential(ctx context.Context, cur source.Cursor) (int, error) {
	n := 0
	for !m.limitReached(n) {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, errors.WrapCompute(err, "materialization cancelled")
			}
		}
		if !cur.Next(ctx) {
			break
		}
		if err := m.registry.Append(cur.Document()); err != nil {
			return n, err
		}
		n++
	}
	m.metrics.recordDocuments(n)
	return n, m.cursorErr(ctx, cur)
}

func (m *Materializer) runParallel(ctx context.Context, cur source.Cursor) (int, error) {
	groups := columnGroups(m.registry.Schema().Len(), m.workers)
	pooled := batches.GetCap(m.batchSize)
	defer batches.Put(pooled)
	batch := *pooled
	n := 0

	for {
		batch = batch[:0]
		for len(batch) < m.batchSize && !m.limitReached(n+len(batch)) && cur.Next(ctx) {
			batch = append(batch, cur.Document())
		}
		if len(batch) > 0 {
			if err := m.flush(ctx, batch, groups); err != nil {
				return n, err
			}
			n += len(batch)
		}
		if len(batch) < m.batchSize || m.limitReached(n) {
			break
		}
	}
	*pooled = batch
	return n, m.cursorErr(ctx, cur)
}

// flush fills every column group from batch and waits for all of them
// before committing; no group starts the next batch early.
func (m *Materializer) flush(ctx context.Context, batch []source.Document, groups [][]int) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapCompute(err, "materialization cancelled")
	}
	started := time.Now()

	g := new(errgroup.Group)
	for _, cols := range groups {
		cols := cols
		g.Go(func() error {
			return m.registry.AppendColumns(batch, cols)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := m.registry.CommitBatch(len(batch)); err != nil {
		return err
	}

	m.metrics.recordDocuments(len(batch))
	m.metrics.recordBatch(time.Since(started))
	return nil
}

func (m *Materializer) cursorErr(ctx context.Context, cur source.Cursor) error {
	if err := cur.Err(); err != nil {
		return errors.WrapCompute(err, "unable to stream documents")
	}
	if err := ctx.Err(); err != nil {
		return errors.WrapCompute(err, "materialization cancelled")
	}
	return nil
}

// columnGroups splits ncols column indexes round-robin into at most workers
// non-empty groups.
func columnGroups(ncols, workers int) [][]int {
	if workers > ncols {
		workers = ncols
	}
	if workers < 1 {
		return nil
	}
	groups := make([][]int, workers)
	for i := 0; i < ncols; i++ {
		groups[i%workers] = append(groups[i%workers], i)
	}
	return groups
}
