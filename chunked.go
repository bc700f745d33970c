// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "code.hybscloud.com/worklist/topo"

// Chunked is a bulk-transfer worklist. Items move between workers in
// fixed-capacity chunks: a worker fills a private chunk and publishes it
// whole; a worker out of local work claims a published chunk and drains it
// privately. Contention is paid once per chunk instead of once per item.
//
// Variants are fixed by the constructors:
//
//	NewChunkedFIFO      global queue of chunks, chunks drained FIFO
//	NewChunkedLIFO      global stack of chunks, chunks drained LIFO
//	NewDistChunkedFIFO  one chunk queue per package, FIFO drain
//	NewDistChunkedLIFO  one chunk stack per package, LIFO drain
//
// Within one chunk the drain order is strict FIFO or LIFO; between chunks
// the order is the chunk container's; across workers there is no ordering
// guarantee.
type Chunked[T any] struct {
	heap       *chunkHeap[T]
	slots      *topo.PerThread[chunkSlot[T]]
	containers []chunkContainer[T]
	pool       *topo.Pool
	isStack    bool
	distribute bool
}

// chunkSlot is a worker's pair of private chunks: cur drains, next fills.
// In LIFO mode next serves both roles.
type chunkSlot[T any] struct {
	cur  *chunk[T]
	next *chunk[T]
}

// NewChunkedFIFO creates a Chunked worklist with one global queue of
// chunks and FIFO drain order. chunkSize is rounded up to a power of 2,
// with a minimum of 2; 64 is the conventional default.
func NewChunkedFIFO[T any](pool *topo.Pool, chunkSize int) *Chunked[T] {
	return newChunked[T](pool, chunkSize, false, false)
}

// NewChunkedLIFO creates a Chunked worklist with one global stack of
// chunks and LIFO drain order.
func NewChunkedLIFO[T any](pool *topo.Pool, chunkSize int) *Chunked[T] {
	return newChunked[T](pool, chunkSize, false, true)
}

// NewDistChunkedFIFO creates a Chunked worklist with one chunk queue per
// package. Workers prefer chunks published by their own package and steal
// from other packages only when it runs dry.
func NewDistChunkedFIFO[T any](pool *topo.Pool, chunkSize int) *Chunked[T] {
	return newChunked[T](pool, chunkSize, true, false)
}

// NewDistChunkedLIFO creates a Chunked worklist with one chunk stack per
// package and LIFO drain order.
func NewDistChunkedLIFO[T any](pool *topo.Pool, chunkSize int) *Chunked[T] {
	return newChunked[T](pool, chunkSize, true, true)
}

func newChunked[T any](pool *topo.Pool, chunkSize int, distribute, isStack bool) *Chunked[T] {
	n := 1
	if distribute {
		n = pool.Packages()
	}
	containers := make([]chunkContainer[T], n)
	for i := range containers {
		if isStack {
			containers[i] = &chunkStack[T]{}
		} else {
			containers[i] = &chunkQueue[T]{}
		}
	}
	return &Chunked[T]{
		heap:       newChunkHeap[T](chunkSize),
		slots:      topo.NewPerThread[chunkSlot[T]](pool),
		containers: containers,
		pool:       pool,
		isStack:    isStack,
		distribute: distribute,
	}
}

func (w *Chunked[T]) containerID(t *topo.Thread) int {
	if w.distribute {
		return t.Package()
	}
	return 0
}

func (w *Chunked[T]) pushChunk(t *topo.Thread, c *chunk[T]) {
	w.containers[w.containerID(t)].push(c)
}

// popChunk claims a published chunk, preferring the worker's own
// container, then scanning every other container exactly once in the
// order [id+1..N-1] ++ [0..id-1].
func (w *Chunked[T]) popChunk(t *topo.Thread) *chunk[T] {
	id := w.containerID(t)
	if c := w.containers[id].pop(); c != nil {
		return c
	}
	for i := id + 1; i < len(w.containers); i++ {
		if c := w.containers[i].pop(); c != nil {
			return c
		}
	}
	for i := 0; i < id; i++ {
		if c := w.containers[i].pop(); c != nil {
			return c
		}
	}
	return nil
}

// Push inserts one item into the worker's fill chunk, publishing the
// chunk when full.
func (w *Chunked[T]) Push(t *topo.Thread, v T) {
	s := w.slots.Get(t)
	if s.next != nil && s.next.pushBack(v) {
		return
	}
	if s.next != nil {
		w.pushChunk(t, s.next)
	}
	s.next = w.heap.get()
	if !s.next.pushBack(v) {
		panic("worklist: fresh chunk rejected push")
	}
}

// PushMany inserts a finite sequence.
func (w *Chunked[T]) PushMany(t *topo.Thread, vs []T) {
	for _, v := range vs {
		w.Push(t, v)
	}
}

// PushInitial seeds the worklist before workers start; identical to
// PushMany.
func (w *Chunked[T]) PushInitial(t *topo.Thread, vs []T) {
	w.PushMany(t, vs)
}

// Pop removes and returns an item. The drain chunk is refilled from the
// chunk containers, falling back to the worker's own unpublished fill
// chunk before reporting empty.
func (w *Chunked[T]) Pop(t *topo.Thread) (T, error) {
	s := w.slots.Get(t)
	var zero T
	if w.isStack {
		if s.next != nil {
			if v, ok := s.next.popBack(); ok {
				return v, nil
			}
			// A drained stack-mode chunk goes to the GC, not the recycler:
			// a racing chunkStack.pop may still hold it, and handing it out
			// again would let that pop's CAS succeed on a stale link.
			s.next = nil
		}
		s.next = w.popChunk(t)
		if s.next == nil {
			return zero, ErrWouldBlock
		}
		if v, ok := s.next.popBack(); ok {
			return v, nil
		}
		return zero, ErrWouldBlock
	}

	if s.cur != nil {
		if v, ok := s.cur.popFront(); ok {
			return v, nil
		}
		w.heap.put(s.cur)
		s.cur = nil
	}
	s.cur = w.popChunk(t)
	if s.cur == nil {
		s.cur = s.next
		s.next = nil
	}
	if s.cur == nil {
		return zero, ErrWouldBlock
	}
	if v, ok := s.cur.popFront(); ok {
		return v, nil
	}
	return zero, ErrWouldBlock
}
