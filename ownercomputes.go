// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "code.hybscloud.com/worklist/topo"

// OwnerFn maps an item to the worker that must execute it.
type OwnerFn[T any] func(v T) uint

// OwnerComputes routes every item to the worker the owner function names.
// A push by the owner lands directly in the owner's queue; a push by
// anyone else lands in a per-owner buffer, which the owner drains when its
// own queue runs dry (or on an explicit Flush). Pop only ever returns
// items owned by the calling worker.
//
// Items reach their owner eventually; there is no ordering across owners.
type OwnerComputes[T any] struct {
	owner   OwnerFn[T]
	items   *topo.PerThread[Worklist[T]]
	buffers *topo.PerThread[*Lifo[T]]
}

// NewOwnerComputes creates an OwnerComputes policy. newInner is invoked
// once per thread for the owner queues.
func NewOwnerComputes[T any](pool *topo.Pool, owner OwnerFn[T], newInner func() Worklist[T]) *OwnerComputes[T] {
	w := &OwnerComputes[T]{
		owner:   owner,
		items:   topo.NewPerThread[Worklist[T]](pool),
		buffers: topo.NewPerThread[*Lifo[T]](pool),
	}
	for i := 0; i < w.items.Len(); i++ {
		*w.items.ByID(i) = newInner()
		*w.buffers.ByID(i) = NewLifo[T]()
	}
	return w
}

// NewDefaultOwnerComputes creates an OwnerComputes policy over Lifo owner
// queues.
func NewDefaultOwnerComputes[T any](pool *topo.Pool, owner OwnerFn[T]) *OwnerComputes[T] {
	return NewOwnerComputes[T](pool, owner, func() Worklist[T] { return NewLifo[T]() })
}

// Push routes v to its owner: directly into the owner's queue when the
// caller is the owner, into the owner's push buffer otherwise.
func (w *OwnerComputes[T]) Push(t *topo.Thread, v T) {
	id := w.items.EffectiveIDFor(w.owner(v))
	if id == w.items.MyEffectiveID(t) {
		(*w.items.ByID(id)).Push(t, v)
	} else {
		(*w.buffers.ByID(id)).Push(t, v)
	}
}

// PushMany routes a finite sequence item by item.
func (w *OwnerComputes[T]) PushMany(t *topo.Thread, vs []T) {
	for _, v := range vs {
		w.Push(t, v)
	}
}

// PushInitial seeds the worklist before workers start; identical to
// PushMany.
func (w *OwnerComputes[T]) PushInitial(t *topo.Thread, vs []T) {
	w.PushMany(t, vs)
}

// Flush moves everything other workers buffered for the caller into the
// caller's own queue.
func (w *OwnerComputes[T]) Flush(t *topo.Thread) {
	buf := *w.buffers.Get(t)
	own := *w.items.Get(t)
	for {
		v, err := buf.Pop(t)
		if err != nil {
			return
		}
		own.Push(t, v)
	}
}

// Pop returns an item owned by the calling worker. When the own queue is
// empty the worker drains its push buffer and retries, which is what
// guarantees eventual delivery of cross-thread pushes.
func (w *OwnerComputes[T]) Pop(t *topo.Thread) (T, error) {
	if v, err := (*w.items.Get(t)).Pop(t); err == nil {
		return v, nil
	}
	w.Flush(t)
	return (*w.items.Get(t)).Pop(t)
}
