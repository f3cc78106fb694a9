// Package pool provides type-safe object pooling with usage statistics.
//
// Example usage:
//
//	batches := pool.NewSlicePool[bson.D](1024)
//	batch := batches.Get()
//	defer batches.Put(batch)
//
//	*batch = append(*batch, doc)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a generic object pool. It wraps sync.Pool with statistics and an
// optional reset hook, and is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
		misses    int64
	}
}

// New creates a pool. newFn builds an object when the pool is empty; reset,
// if not nil, runs on every object handed back through Put.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		atomic.AddInt64(&p.stats.misses, 1)
		return newFn()
	}
	return p
}

// Get takes an object from the pool, allocating one if needed.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	before := atomic.LoadInt64(&p.stats.misses)
	obj := p.pool.Get().(T)
	if atomic.LoadInt64(&p.stats.misses) == before {
		atomic.AddInt64(&p.stats.hits, 1)
	}
	return obj
}

// Put resets obj and returns it to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the number of objects allocated, currently checked out,
// and the Get calls served from the pool (hits) or by allocation (misses).
// Under concurrent Gets hits and misses are approximate.
func (p *Pool[T]) Stats() (allocated, inUse, hits, misses int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits),
		atomic.LoadInt64(&p.stats.misses)
}

// SlicePool pools slices of E with a minimum capacity. Slices come back with
// length zero and their elements cleared so pooled slices hold no references.
type SlicePool[E any] struct {
	*Pool[*[]E]
}

// NewSlicePool creates a SlicePool whose fresh slices have the given capacity.
func NewSlicePool[E any](capacity int) *SlicePool[E] {
	return &SlicePool[E]{
		Pool: New(
			func() *[]E {
				s := make([]E, 0, capacity)
				return &s
			},
			func(s *[]E) {
				clear((*s)[:cap(*s)])
				*s = (*s)[:0]
			},
		),
	}
}

// GetCap returns an empty slice with room for at least n elements.
func (p *SlicePool[E]) GetCap(n int) *[]E {
	s := p.Get()
	if cap(*s) < n {
		*s = make([]E, 0, n)
	}
	return s
}
