// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package topo

// cell pads each slot out to its own cache lines. Go cannot size padding
// from T, so the pad trails the value and may overshoot for large T.
type cell[T any] struct {
	v T
	_ [64]byte
}

// PerThread is a padded slot array with one slot per worker thread.
// Slots are written by their owning worker on hot paths; the padding keeps
// neighboring slots off the same cache line.
type PerThread[T any] struct {
	pool  *Pool
	cells []cell[T]
}

// NewPerThread allocates one slot per thread in pool.
func NewPerThread[T any](pool *Pool) *PerThread[T] {
	return &PerThread[T]{pool: pool, cells: make([]cell[T], pool.Threads())}
}

// Get returns the calling worker's slot.
func (a *PerThread[T]) Get(t *Thread) *T { return &a.cells[t.id].v }

// ByID returns thread i's slot.
func (a *PerThread[T]) ByID(i int) *T { return &a.cells[i].v }

// Len returns the slot count.
func (a *PerThread[T]) Len() int { return len(a.cells) }

// EffectiveIDFor maps an arbitrary key onto a slot index.
func (a *PerThread[T]) EffectiveIDFor(key uint) int {
	return int(key % uint(len(a.cells)))
}

// MyEffectiveID returns the slot index the token resolves to.
func (a *PerThread[T]) MyEffectiveID(t *Thread) int { return t.id }

// PerPackage is a padded slot array with one slot per package.
// All threads of a package share the slot.
type PerPackage[T any] struct {
	pool  *Pool
	cells []cell[T]
}

// NewPerPackage allocates one slot per package in pool.
func NewPerPackage[T any](pool *Pool) *PerPackage[T] {
	return &PerPackage[T]{pool: pool, cells: make([]cell[T], pool.Packages())}
}

// Get returns the slot of the calling worker's package.
func (a *PerPackage[T]) Get(t *Thread) *T { return &a.cells[t.pkg].v }

// ByID returns package i's slot.
func (a *PerPackage[T]) ByID(i int) *T { return &a.cells[i].v }

// Len returns the slot count.
func (a *PerPackage[T]) Len() int { return len(a.cells) }

// EffectiveIDFor maps an arbitrary key onto a package index by routing it
// through the owning thread.
func (a *PerPackage[T]) EffectiveIDFor(key uint) int {
	return a.pool.PackageOf(int(key % uint(a.pool.Threads())))
}

// MyEffectiveID returns the slot index the token resolves to.
func (a *PerPackage[T]) MyEffectiveID(t *Thread) int { return t.pkg }
