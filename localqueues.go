// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "code.hybscloud.com/worklist/topo"

// LocalQueues composes a private, unsynchronized worklist per thread with
// one shared spill worklist. Pushes during execution go to the private
// queue and never contend; the shared queue carries the initial seed and
// feeds workers whose private queue runs dry.
//
// Ordering between items pushed locally and items from the shared queue
// is unspecified.
type LocalQueues[T any] struct {
	local  *topo.PerThread[Worklist[T]]
	global Worklist[T]
}

// NewLocalQueues creates a LocalQueues policy. newLocal is invoked once
// per thread and must return an unsynchronized container (it is only ever
// touched by its owning thread). global must be synchronized.
func NewLocalQueues[T any](pool *topo.Pool, global Worklist[T], newLocal func() Worklist[T]) *LocalQueues[T] {
	w := &LocalQueues[T]{
		local:  topo.NewPerThread[Worklist[T]](pool),
		global: global,
	}
	for i := 0; i < w.local.Len(); i++ {
		*w.local.ByID(i) = newLocal()
	}
	return w
}

// NewDefaultLocalQueues creates a LocalQueues policy over Fifo containers.
func NewDefaultLocalQueues[T any](pool *topo.Pool) *LocalQueues[T] {
	return NewLocalQueues[T](pool, NewFifo[T](), func() Worklist[T] {
		return NewUnsynchronizedFifo[T]()
	})
}

// Push inserts into the calling worker's private queue.
func (w *LocalQueues[T]) Push(t *topo.Thread, v T) {
	(*w.local.Get(t)).Push(t, v)
}

// PushMany inserts a finite sequence into the private queue.
func (w *LocalQueues[T]) PushMany(t *topo.Thread, vs []T) {
	(*w.local.Get(t)).PushMany(t, vs)
}

// PushInitial seeds the shared queue; call it once, before workers start.
func (w *LocalQueues[T]) PushInitial(t *topo.Thread, vs []T) {
	w.global.PushInitial(t, vs)
}

// Pop drains the private queue first, then the shared queue.
func (w *LocalQueues[T]) Pop(t *topo.Thread) (T, error) {
	if v, err := (*w.local.Get(t)).Pop(t); err == nil {
		return v, nil
	}
	return w.global.Pop(t)
}
