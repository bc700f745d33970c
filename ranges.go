// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/worklist/topo"
)

// Range sources feed items that already exist in an input slice. They are
// read-only: Push and PushMany are programming errors and panic.

// RandomAccessRange partitions a slice among workers with two levels of
// stealing. At seed time a residue of n/16 elements stays unassigned and
// the rest splits into one block per thread. A thread that drains its
// block carves a share from its package's slice; a package that drains
// its slice halves the global residue with a CAS. A thread that finds
// both empty fails sticky and reports empty forever after.
type RandomAccessRange[T any] struct {
	minsize int
	pool    *topo.Pool
	tlds    *topo.PerThread[raThread[T]]
	plds    *topo.PerPackage[raPackage]
	_       pad
	total   atomix.Int64
	_       pad
}

type raThread[T any] struct {
	data   []T
	begin  int
	end    int
	failed bool
}

type raPackage struct {
	mu    sync.Mutex
	begin int
	end   int
}

// NewRandomAccessRange creates a RandomAccessRange. minsize is the
// smallest slice worth stealing; 16 is the conventional default.
func NewRandomAccessRange[T any](pool *topo.Pool, minsize int) *RandomAccessRange[T] {
	if minsize < 1 {
		minsize = 16
	}
	return &RandomAccessRange[T]{
		minsize: minsize,
		pool:    pool,
		tlds:    topo.NewPerThread[raThread[T]](pool),
		plds:    topo.NewPerPackage[raPackage](pool),
	}
}

// Push is not supported on a range source.
func (w *RandomAccessRange[T]) Push(t *topo.Thread, v T) {
	panic("worklist: push on a range source")
}

// PushMany is not supported on a range source.
func (w *RandomAccessRange[T]) PushMany(t *topo.Thread, vs []T) {
	panic("worklist: push on a range source")
}

// PushInitial assigns the calling worker its block of vs. Every worker
// must call it exactly once, before any worker pops, all with the same
// slice. Thread 0 additionally publishes the global residue.
func (w *RandomAccessRange[T]) PushInitial(t *topo.Thread, vs []T) {
	n := len(vs)
	numThreads := w.pool.Threads()
	rest := n / 16
	tail := n - rest
	block := (tail + numThreads - 1) / numThreads
	tid := t.ID()

	if tid == 0 {
		w.total.StoreRelease(int64(rest))
	}

	tld := w.tlds.Get(t)
	tld.data = vs
	tld.failed = false
	tld.begin = rest + min(tid*block, tail)
	tld.end = rest + min((tid+1)*block, tail)
}

// tryGlobalSteal claims the upper half of the remaining residue for the
// package, or all of it when that half would hold fewer than minsize
// elements.
func (w *RandomAccessRange[T]) tryGlobalSteal(pld *raPackage) bool {
	var b, e int64
	for {
		e = w.total.LoadAcquire()
		if e == 0 {
			return false
		}
		b = e / 2
		if e-b < int64(w.minsize) {
			b = 0
		}
		if w.total.CompareAndSwapAcqRel(e, b) {
			break
		}
	}
	pld.begin = int(b)
	pld.end = int(e)
	return true
}

// tryPackageSteal carves the thread's next block from the package slice,
// refilling the slice from the global residue when empty.
func (w *RandomAccessRange[T]) tryPackageSteal(t *topo.Thread, tld *raThread[T]) bool {
	pld := w.plds.Get(t)
	pld.mu.Lock()
	for {
		if pld.begin == pld.end {
			if w.tryGlobalSteal(pld) {
				continue
			}
			pld.mu.Unlock()
			return false
		}

		mp := w.pool.MaxPackage(w.pool.Threads()-1) + 1
		e := pld.end
		avail := e - pld.begin
		block := (avail + mp - 1) / mp
		if block < w.minsize {
			block = avail
		}
		pld.end -= block
		pld.mu.Unlock()

		tld.begin = e - block
		tld.end = e
		return true
	}
}

// Pop returns the next element of the thread's block, stealing when the
// block is exhausted.
func (w *RandomAccessRange[T]) Pop(t *topo.Thread) (T, error) {
	tld := w.tlds.Get(t)
	if !tld.failed {
		for {
			if tld.begin != tld.end {
				v := tld.data[tld.begin]
				tld.begin++
				return v, nil
			}
			if w.tryPackageSteal(t, tld) {
				continue
			}
			tld.failed = true
			break
		}
	}
	var zero T
	return zero, ErrWouldBlock
}

// PopRange atomically returns the thread's entire remaining subslice and
// empties it, for operators that want bulk ranges.
func (w *RandomAccessRange[T]) PopRange(t *topo.Thread) ([]T, error) {
	tld := w.tlds.Get(t)
	if !tld.failed {
		for {
			if tld.begin != tld.end {
				r := tld.data[tld.begin:tld.end]
				tld.begin = tld.end
				return r, nil
			}
			if w.tryPackageSteal(t, tld) {
				continue
			}
			tld.failed = true
			break
		}
	}
	return nil, ErrWouldBlock
}

// ForwardAccessRange strides a slice: thread i starts at element i and
// advances by the thread count, so the threads cover the range
// disjointly. Use it for forward-only inputs where work per item is
// cheap and uniform.
type ForwardAccessRange[T any] struct {
	tlds *topo.PerThread[faThread[T]]
	pool *topo.Pool
	num  int
}

type faThread[T any] struct {
	data []T
	pos  int
}

// NewForwardAccessRange creates a ForwardAccessRange.
func NewForwardAccessRange[T any](pool *topo.Pool) *ForwardAccessRange[T] {
	return &ForwardAccessRange[T]{
		tlds: topo.NewPerThread[faThread[T]](pool),
		pool: pool,
	}
}

// Push is not supported on a range source.
func (w *ForwardAccessRange[T]) Push(t *topo.Thread, v T) {
	panic("worklist: push on a range source")
}

// PushMany is not supported on a range source.
func (w *ForwardAccessRange[T]) PushMany(t *topo.Thread, vs []T) {
	panic("worklist: push on a range source")
}

// PushInitial staggers every thread's start position through vs. Call it
// once, from one caller, before any worker pops; the stagger plus the
// common stride is what keeps deliveries disjoint.
func (w *ForwardAccessRange[T]) PushInitial(t *topo.Thread, vs []T) {
	w.num = w.pool.Threads()
	for i := 0; i < w.tlds.Len(); i++ {
		tld := w.tlds.ByID(i)
		tld.data = vs
		tld.pos = min(i, len(vs))
	}
}

// Pop returns the element at the thread's cursor and advances it by the
// thread count.
func (w *ForwardAccessRange[T]) Pop(t *topo.Thread) (T, error) {
	tld := w.tlds.Get(t)
	if tld.pos < len(tld.data) {
		v := tld.data[tld.pos]
		tld.pos += w.num
		return v, nil
	}
	var zero T
	return zero, ErrWouldBlock
}

// StaticRandomAccessRange splits a slice into one equal block per thread
// with no stealing. Suitable when work per item is balanced.
type StaticRandomAccessRange[T any] struct {
	tlds *topo.PerThread[raThread[T]]
	pool *topo.Pool
}

// NewStaticRandomAccessRange creates a StaticRandomAccessRange.
func NewStaticRandomAccessRange[T any](pool *topo.Pool) *StaticRandomAccessRange[T] {
	return &StaticRandomAccessRange[T]{
		tlds: topo.NewPerThread[raThread[T]](pool),
		pool: pool,
	}
}

// Push is not supported on a range source.
func (w *StaticRandomAccessRange[T]) Push(t *topo.Thread, v T) {
	panic("worklist: push on a range source")
}

// PushMany is not supported on a range source.
func (w *StaticRandomAccessRange[T]) PushMany(t *topo.Thread, vs []T) {
	panic("worklist: push on a range source")
}

// PushInitial assigns every thread its static block of vs. Call it once,
// from one caller, before any worker pops.
func (w *StaticRandomAccessRange[T]) PushInitial(t *topo.Thread, vs []T) {
	num := w.pool.Threads()
	n := len(vs)
	per := (n + num - 1) / num
	for i := 0; i < w.tlds.Len(); i++ {
		tld := w.tlds.ByID(i)
		tld.data = vs
		tld.begin = min(per*i, n)
		tld.end = min(per*(i+1), n)
	}
}

// Pop returns the next element of the thread's block.
func (w *StaticRandomAccessRange[T]) Pop(t *topo.Thread) (T, error) {
	tld := w.tlds.Get(t)
	if tld.begin != tld.end {
		v := tld.data[tld.begin]
		tld.begin++
		return v, nil
	}
	var zero T
	return zero, ErrWouldBlock
}
