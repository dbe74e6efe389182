// Package pool provides typed object pooling for buffers reused across calls.
//
//	buffers := pool.New(
//	    func() *bytes.Buffer { return new(bytes.Buffer) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
//	b := buffers.Get()
//	defer buffers.Put(b)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool that resets objects on Put
// and tracks usage. It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated atomic.Int64
		inUse     atomic.Int64
		gets      atomic.Int64
	}
}

// New creates a pool. reset may be nil.
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() any {
		p.stats.allocated.Add(1)
		return new()
	}
	return p
}

// Get takes an object from the pool, allocating one if it is empty.
func (p *Pool[T]) Get() T {
	p.stats.gets.Add(1)
	p.stats.inUse.Add(1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	p.stats.inUse.Add(-1)
	p.pool.Put(obj)
}

// Stats describes pool usage.
type Stats struct {
	Allocated int64
	InUse     int64
	Hits      int64
	Misses    int64
}

// Stats returns a snapshot of the pool counters. A miss is a Get that had to
// allocate.
func (p *Pool[T]) Stats() Stats {
	allocated := p.stats.allocated.Load()
	gets := p.stats.gets.Load()
	hits := gets - allocated
	if hits < 0 {
		hits = 0
	}
	return Stats{
		Allocated: allocated,
		InUse:     p.stats.inUse.Load(),
		Hits:      hits,
		Misses:    allocated,
	}
}
