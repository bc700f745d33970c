// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sort"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/worklist/topo"
)

// IndexerFn maps an item to its non-negative priority key.
// Lower key means higher priority.
type IndexerFn[T any] func(v T) uint

// OrderedByMetric is a priority-bucketed worklist. The indexer assigns
// each item a key; items with equal keys share a child container
// (bucket). Buckets are created on first push to their key and shared by
// all workers through an append-only master log; each worker mirrors the
// log privately and scans its mirror in ascending key order on pop.
//
// The priority is intentionally relaxed: a worker pops from the lowest
// non-empty bucket it has observed, which may lag pushes by other workers
// until its next mirror sync. There is no global monotonicity across
// workers; on a single worker with static keys, pop keys are
// non-decreasing until the lowest bucket drains.
type OrderedByMetric[T any] struct {
	indexer  IndexerFn[T]
	newChild func() Worklist[T]

	_             pad
	masterLock    sync.Mutex
	masterLog     []obimEntry[T] // append-only, guarded by masterLock
	masterVersion atomix.Uint64  // == len(masterLog) after each append
	_             pad

	perWorker *topo.PerThread[obimLocal[T]]
}

type obimEntry[T any] struct {
	key    uint
	bucket Worklist[T]
}

// obimLocal is one worker's mirror of the master log.
type obimLocal[T any] struct {
	current           Worklist[T] // focused bucket, nil before first use
	curKey            uint
	lastMasterVersion uint64
	buckets           map[uint]Worklist[T]
	keys              []uint // sorted mirror of the bucket keys
}

// NewOrderedByMetric creates a priority-bucketed worklist. newChild is
// invoked once per distinct key and must return a synchronized container;
// any worker may push into any bucket.
func NewOrderedByMetric[T any](pool *topo.Pool, indexer IndexerFn[T], newChild func() Worklist[T]) *OrderedByMetric[T] {
	w := &OrderedByMetric[T]{
		indexer:   indexer,
		newChild:  newChild,
		perWorker: topo.NewPerThread[obimLocal[T]](pool),
	}
	for i := 0; i < w.perWorker.Len(); i++ {
		w.perWorker.ByID(i).buckets = make(map[uint]Worklist[T])
	}
	return w
}

// NewDefaultOrderedByMetric creates an OrderedByMetric policy over Fifo
// buckets.
func NewDefaultOrderedByMetric[T any](pool *topo.Pool, indexer IndexerFn[T]) *OrderedByMetric[T] {
	return NewOrderedByMetric[T](pool, indexer, func() Worklist[T] { return NewFifo[T]() })
}

// mirror inserts a log entry into the worker's private view.
func (p *obimLocal[T]) mirror(key uint, bucket Worklist[T]) {
	if _, ok := p.buckets[key]; !ok {
		i := sort.Search(len(p.keys), func(i int) bool { return p.keys[i] >= key })
		p.keys = append(p.keys, 0)
		copy(p.keys[i+1:], p.keys[i:])
		p.keys[i] = key
	}
	p.buckets[key] = bucket
}

// syncLocked replays the master log suffix the worker has not seen.
// Caller holds masterLock.
func (w *OrderedByMetric[T]) syncLocked(p *obimLocal[T]) {
	for n := uint64(len(w.masterLog)); p.lastMasterVersion < n; p.lastMasterVersion++ {
		e := w.masterLog[p.lastMasterVersion]
		p.mirror(e.key, e.bucket)
	}
}

// sync catches the mirror up when the version counter says it lags.
func (w *OrderedByMetric[T]) sync(p *obimLocal[T]) {
	if p.lastMasterVersion != w.masterVersion.LoadAcquire() {
		w.masterLock.Lock()
		w.syncLocked(p)
		w.masterLock.Unlock()
	}
}

// bucketFor returns the bucket for key, creating and committing it to the
// master log if no worker made one yet.
func (w *OrderedByMetric[T]) bucketFor(p *obimLocal[T], key uint) Worklist[T] {
	if b, ok := p.buckets[key]; ok {
		return b
	}
	w.masterLock.Lock()
	w.syncLocked(p)
	b, ok := p.buckets[key]
	if !ok {
		b = w.newChild()
		w.masterLog = append(w.masterLog, obimEntry[T]{key: key, bucket: b})
		w.masterVersion.StoreRelease(uint64(len(w.masterLog)))
		p.mirror(key, b)
		p.lastMasterVersion = uint64(len(w.masterLog))
	}
	w.masterLock.Unlock()
	return b
}

// Push inserts v into the bucket for its key. Pushing to the worker's
// focused bucket takes no lock.
func (w *OrderedByMetric[T]) Push(t *topo.Thread, v T) {
	key := w.indexer(v)
	p := w.perWorker.Get(t)
	if p.current != nil && key == p.curKey {
		p.current.Push(t, v)
		return
	}
	w.bucketFor(p, key).Push(t, v)
}

// PushMany inserts a finite sequence.
func (w *OrderedByMetric[T]) PushMany(t *topo.Thread, vs []T) {
	for _, v := range vs {
		w.Push(t, v)
	}
}

// PushInitial seeds the worklist before workers start; identical to
// PushMany.
func (w *OrderedByMetric[T]) PushInitial(t *topo.Thread, vs []T) {
	w.PushMany(t, vs)
}

// Pop returns an item from the lowest-keyed non-empty bucket the worker
// can see. The focused bucket is tried first; on a miss the mirror is
// synced and scanned in ascending key order.
func (w *OrderedByMetric[T]) Pop(t *topo.Thread) (T, error) {
	p := w.perWorker.Get(t)
	if p.current != nil {
		if v, err := p.current.Pop(t); err == nil {
			return v, nil
		}
	}

	w.sync(p)
	for _, key := range p.keys {
		p.curKey = key
		p.current = p.buckets[key]
		if v, err := p.current.Pop(t); err == nil {
			return v, nil
		}
	}
	var zero T
	return zero, ErrWouldBlock
}
