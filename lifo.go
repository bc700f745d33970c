// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync"

	"code.hybscloud.com/worklist/topo"
)

// Lifo is a lock-protected stack of items.
//
// Push appends, Pop removes the most recently pushed item. On a single
// worker the pop order is the exact reverse of the push order; across
// workers operations are linearizable but producers are unordered relative
// to each other.
//
// Lifo is a correctness reference: policies built for scale (chunked,
// stealing) trade its strict ordering for locality and lower contention.
type Lifo[T any] struct {
	_      pad
	mu     sync.Mutex
	serial bool // unsynchronized variant: lock elided
	items  []T
	_      pad
}

// NewLifo creates a synchronized Lifo, safe for any number of workers.
func NewLifo[T any]() *Lifo[T] {
	return &Lifo[T]{}
}

// NewUnsynchronizedLifo creates a Lifo with locking elided. The caller
// guarantees single-threaded access, typically because the container sits
// in a per-thread slot of a composite policy.
func NewUnsynchronizedLifo[T any]() *Lifo[T] {
	return &Lifo[T]{serial: true}
}

// Push inserts one item.
func (l *Lifo[T]) Push(t *topo.Thread, v T) {
	if !l.serial {
		l.mu.Lock()
		defer l.mu.Unlock()
	}
	l.items = append(l.items, v)
}

// PushMany inserts a finite sequence.
func (l *Lifo[T]) PushMany(t *topo.Thread, vs []T) {
	if !l.serial {
		l.mu.Lock()
		defer l.mu.Unlock()
	}
	l.items = append(l.items, vs...)
}

// PushInitial seeds the stack before workers start; identical to PushMany.
func (l *Lifo[T]) PushInitial(t *topo.Thread, vs []T) {
	l.PushMany(t, vs)
}

// Pop removes and returns the most recently pushed item.
func (l *Lifo[T]) Pop(t *topo.Thread) (T, error) {
	if !l.serial {
		l.mu.Lock()
		defer l.mu.Unlock()
	}
	var zero T
	n := len(l.items)
	if n == 0 {
		return zero, ErrWouldBlock
	}
	v := l.items[n-1]
	l.items[n-1] = zero
	l.items = l.items[:n-1]
	return v, nil
}
