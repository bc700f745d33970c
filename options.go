// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "code.hybscloud.com/worklist/topo"

// Builder creates worklist policies with fluent configuration.
//
// The builder carries the knobs shared across policies (chunk size,
// distribution, drain order, steal threshold); the generic Build
// functions pick the policy and item type:
//
//	pool := topo.New(8, topo.WithPackageSize(4))
//
//	// Distributed chunked queue, 128-item chunks
//	wl := worklist.BuildChunked[Node](worklist.New(pool).ChunkSize(128).Distributed())
//
//	// Priority buckets over Fifo children
//	b := worklist.New(pool)
//	obim := worklist.BuildOrderedByMetric[Node](b, func(n Node) uint { return n.Level })
type Builder struct {
	pool        *topo.Pool
	chunkSize   int
	minsize     int
	distributed bool
	stack       bool
}

// New creates a policy builder over the given topology.
// Defaults: chunk size 64, one global chunk container, FIFO drain,
// steal threshold 16.
func New(pool *topo.Pool) *Builder {
	return &Builder{pool: pool, chunkSize: 64, minsize: 16}
}

// ChunkSize sets the chunk capacity for chunked policies. Larger chunks
// mean less contention and worse balance. Rounds up to a power of 2, with
// a minimum of 2.
func (b *Builder) ChunkSize(n int) *Builder {
	if n < 1 {
		panic("worklist: chunk size must be >= 1")
	}
	b.chunkSize = n
	return b
}

// Distributed selects one chunk container per package instead of one
// global container.
func (b *Builder) Distributed() *Builder {
	b.distributed = true
	return b
}

// Stack selects LIFO chunk draining and a stack of chunks.
func (b *Builder) Stack() *Builder {
	b.stack = true
	return b
}

// MinSize sets the smallest range slice worth stealing.
func (b *Builder) MinSize(n int) *Builder {
	if n < 1 {
		panic("worklist: minsize must be >= 1")
	}
	b.minsize = n
	return b
}

// Pool returns the topology the builder constructs for.
func (b *Builder) Pool() *topo.Pool { return b.pool }

// BuildLifo creates a synchronized Lifo.
func BuildLifo[T any](b *Builder) *Lifo[T] {
	return NewLifo[T]()
}

// BuildFifo creates a synchronized Fifo.
func BuildFifo[T any](b *Builder) *Fifo[T] {
	return NewFifo[T]()
}

// BuildChunked creates the chunked policy selected by the builder:
//
//	(default)                  → global queue of chunks, FIFO drain
//	Stack()                    → global stack of chunks, LIFO drain
//	Distributed()              → per-package queues, FIFO drain
//	Distributed() + Stack()    → per-package stacks, LIFO drain
func BuildChunked[T any](b *Builder) *Chunked[T] {
	switch {
	case b.distributed && b.stack:
		return NewDistChunkedLIFO[T](b.pool, b.chunkSize)
	case b.distributed:
		return NewDistChunkedFIFO[T](b.pool, b.chunkSize)
	case b.stack:
		return NewChunkedLIFO[T](b.pool, b.chunkSize)
	default:
		return NewChunkedFIFO[T](b.pool, b.chunkSize)
	}
}

// BuildLocalQueues creates a LocalQueues policy with Fifo containers.
func BuildLocalQueues[T any](b *Builder) *LocalQueues[T] {
	return NewDefaultLocalQueues[T](b.pool)
}

// innerFactory picks the inner container for the stealing policies:
// Lifo when the builder selected Stack, Fifo otherwise.
func innerFactory[T any](b *Builder) func() Worklist[T] {
	if b.stack {
		return func() Worklist[T] { return NewLifo[T]() }
	}
	return func() Worklist[T] { return NewFifo[T]() }
}

// BuildLocalStealing creates a LocalStealing policy with one inner
// container per thread.
func BuildLocalStealing[T any](b *Builder) *LocalStealing[T] {
	return NewLocalStealing[T](b.pool, innerFactory[T](b))
}

// BuildLevelStealing creates a LevelStealing policy with one inner
// container per package.
func BuildLevelStealing[T any](b *Builder) *LevelStealing[T] {
	return NewLevelStealing[T](b.pool, innerFactory[T](b))
}

// BuildOrderedByMetric creates a priority-bucketed worklist with the
// given indexer. Buckets are Fifo.
func BuildOrderedByMetric[T any](b *Builder, indexer IndexerFn[T]) *OrderedByMetric[T] {
	return NewDefaultOrderedByMetric[T](b.pool, indexer)
}

// BuildOwnerComputes creates an OwnerComputes policy with the given owner
// function.
func BuildOwnerComputes[T any](b *Builder, owner OwnerFn[T]) *OwnerComputes[T] {
	return NewDefaultOwnerComputes[T](b.pool, owner)
}

// BuildRandomAccessRange creates a stealing range source with the
// builder's minsize.
func BuildRandomAccessRange[T any](b *Builder) *RandomAccessRange[T] {
	return NewRandomAccessRange[T](b.pool, b.minsize)
}

// BuildForwardAccessRange creates a strided range source.
func BuildForwardAccessRange[T any](b *Builder) *ForwardAccessRange[T] {
	return NewForwardAccessRange[T](b.pool)
}

// BuildStaticRandomAccessRange creates a statically partitioned range
// source.
func BuildStaticRandomAccessRange[T any](b *Builder) *StaticRandomAccessRange[T] {
	return NewStaticRandomAccessRange[T](b.pool)
}
