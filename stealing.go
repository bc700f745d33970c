// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "code.hybscloud.com/worklist/topo"

// LocalStealing keeps one synchronized worklist per thread. Pushes are
// always local; a worker that pops empty tries its round-robin neighbor
// before giving up, so a single busy thread leaks work to the rest of the
// pool one hop at a time.
type LocalStealing[T any] struct {
	local *topo.PerThread[Worklist[T]]
	pool  *topo.Pool
}

// NewLocalStealing creates a LocalStealing policy. newInner is invoked
// once per thread and must return a synchronized container: neighbors pop
// from it concurrently with the owner.
func NewLocalStealing[T any](pool *topo.Pool, newInner func() Worklist[T]) *LocalStealing[T] {
	w := &LocalStealing[T]{
		local: topo.NewPerThread[Worklist[T]](pool),
		pool:  pool,
	}
	for i := 0; i < w.local.Len(); i++ {
		*w.local.ByID(i) = newInner()
	}
	return w
}

// NewDefaultLocalStealing creates a LocalStealing policy over Fifo inner
// containers.
func NewDefaultLocalStealing[T any](pool *topo.Pool) *LocalStealing[T] {
	return NewLocalStealing[T](pool, func() Worklist[T] { return NewFifo[T]() })
}

// Push inserts into the calling worker's own queue.
func (w *LocalStealing[T]) Push(t *topo.Thread, v T) {
	(*w.local.Get(t)).Push(t, v)
}

// PushMany inserts a finite sequence into the worker's own queue.
func (w *LocalStealing[T]) PushMany(t *topo.Thread, vs []T) {
	(*w.local.Get(t)).PushMany(t, vs)
}

// PushInitial seeds the calling worker's own queue.
func (w *LocalStealing[T]) PushInitial(t *topo.Thread, vs []T) {
	(*w.local.Get(t)).PushInitial(t, vs)
}

// Pop drains the worker's own queue, then its round-robin neighbor's.
func (w *LocalStealing[T]) Pop(t *topo.Thread) (T, error) {
	if v, err := (*w.local.Get(t)).Pop(t); err == nil {
		return v, nil
	}
	victim := w.pool.NextThread(t.ID())
	return (*w.local.ByID(victim)).Pop(t)
}

// LevelStealing partitions work per package instead of per thread: all
// threads of a package share one synchronized worklist. A worker that
// pops empty rotates through every other package in use, taking the first
// item found.
type LevelStealing[T any] struct {
	local *topo.PerPackage[Worklist[T]]
	pool  *topo.Pool
}

// NewLevelStealing creates a LevelStealing policy. newInner is invoked
// once per package and must return a synchronized container.
func NewLevelStealing[T any](pool *topo.Pool, newInner func() Worklist[T]) *LevelStealing[T] {
	w := &LevelStealing[T]{
		local: topo.NewPerPackage[Worklist[T]](pool),
		pool:  pool,
	}
	for i := 0; i < w.local.Len(); i++ {
		*w.local.ByID(i) = newInner()
	}
	return w
}

// NewDefaultLevelStealing creates a LevelStealing policy over Fifo inner
// containers.
func NewDefaultLevelStealing[T any](pool *topo.Pool) *LevelStealing[T] {
	return NewLevelStealing[T](pool, func() Worklist[T] { return NewFifo[T]() })
}

// Push inserts into the calling worker's package queue.
func (w *LevelStealing[T]) Push(t *topo.Thread, v T) {
	(*w.local.Get(t)).Push(t, v)
}

// PushMany inserts a finite sequence into the package queue.
func (w *LevelStealing[T]) PushMany(t *topo.Thread, vs []T) {
	(*w.local.Get(t)).PushMany(t, vs)
}

// PushInitial seeds the calling worker's package queue.
func (w *LevelStealing[T]) PushInitial(t *topo.Thread, vs []T) {
	(*w.local.Get(t)).PushInitial(t, vs)
}

// Pop drains the package queue, then rotates through the other packages
// in use. The scan visits each package at most once.
func (w *LevelStealing[T]) Pop(t *topo.Thread) (T, error) {
	if v, err := (*w.local.Get(t)).Pop(t); err == nil {
		return v, nil
	}

	mp := w.pool.MaxPackage(w.pool.Threads() - 1)
	id := t.Package()
	for i := 0; i < w.local.Len(); i++ {
		id = (id + 1) % w.local.Len()
		if id > mp {
			continue
		}
		if v, err := (*w.local.ByID(id)).Pop(t); err == nil {
			return v, nil
		}
	}
	var zero T
	return zero, ErrWouldBlock
}
