// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync"

	"code.hybscloud.com/worklist/topo"
)

// Fifo is a lock-protected queue of items.
//
// Push appends, Pop removes the oldest item. On a single worker the pop
// order equals the push order; across workers operations are linearizable
// but producers are unordered relative to each other.
type Fifo[T any] struct {
	_      pad
	mu     sync.Mutex
	serial bool // unsynchronized variant: lock elided
	items  []T
	head   int
	_      pad
}

// NewFifo creates a synchronized Fifo, safe for any number of workers.
func NewFifo[T any]() *Fifo[T] {
	return &Fifo[T]{}
}

// NewUnsynchronizedFifo creates a Fifo with locking elided. The caller
// guarantees single-threaded access.
func NewUnsynchronizedFifo[T any]() *Fifo[T] {
	return &Fifo[T]{serial: true}
}

// Push inserts one item.
func (f *Fifo[T]) Push(t *topo.Thread, v T) {
	if !f.serial {
		f.mu.Lock()
		defer f.mu.Unlock()
	}
	f.items = append(f.items, v)
}

// PushMany inserts a finite sequence.
func (f *Fifo[T]) PushMany(t *topo.Thread, vs []T) {
	if !f.serial {
		f.mu.Lock()
		defer f.mu.Unlock()
	}
	f.items = append(f.items, vs...)
}

// PushInitial seeds the queue before workers start; identical to PushMany.
func (f *Fifo[T]) PushInitial(t *topo.Thread, vs []T) {
	f.PushMany(t, vs)
}

// Pop removes and returns the oldest item.
func (f *Fifo[T]) Pop(t *topo.Thread) (T, error) {
	if !f.serial {
		f.mu.Lock()
		defer f.mu.Unlock()
	}
	var zero T
	if f.head == len(f.items) {
		if f.head != 0 {
			f.items = f.items[:0]
			f.head = 0
		}
		return zero, ErrWouldBlock
	}
	v := f.items[f.head]
	f.items[f.head] = zero
	f.head++
	// Reclaim the consumed prefix once it dominates the backing array.
	if f.head > 32 && f.head*2 >= len(f.items) {
		n := copy(f.items, f.items[f.head:])
		clear(f.items[n:])
		f.items = f.items[:n]
		f.head = 0
	}
	return v, nil
}
