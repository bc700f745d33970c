// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// chunkContainer is an MPMC container of full chunks. Producers publish
// chunks filled by their owning worker; consumers claim whole chunks to
// drain. Ordering of chunks (LIFO vs FIFO) is the container's choice.
type chunkContainer[T any] interface {
	push(c *chunk[T])
	pop() *chunk[T]
}

// chunkStack is a Treiber stack of chunks: lock-free, intrusive, MPMC.
//
// The Go garbage collector provides the safe-memory-reclamation the
// classic algorithm needs hazard pointers for; a popped chunk cannot be
// reused while a racing pop still holds a reference to it, so the CAS on
// head is ABA-safe here.
type chunkStack[T any] struct {
	_    pad
	head atomic.Pointer[chunk[T]]
	_    pad
}

func (s *chunkStack[T]) push(c *chunk[T]) {
	sw := spin.Wait{}
	for {
		old := s.head.Load()
		c.link.Store(old)
		if s.head.CompareAndSwap(old, c) {
			return
		}
		sw.Once()
	}
}

func (s *chunkStack[T]) pop() *chunk[T] {
	sw := spin.Wait{}
	for {
		old := s.head.Load()
		if old == nil {
			return nil
		}
		next := old.link.Load()
		if s.head.CompareAndSwap(old, next) {
			old.link.Store(nil)
			return old
		}
		sw.Once()
	}
}

// chunkQueue is an intrusive FIFO of chunks under a padded spinlock.
// The critical section is a couple of pointer writes, so spinning beats
// parking the thread.
type chunkQueue[T any] struct {
	_    pad
	lock spinLock
	head *chunk[T]
	tail *chunk[T]
	_    pad
}

func (q *chunkQueue[T]) push(c *chunk[T]) {
	c.link.Store(nil)
	q.lock.acquire()
	if q.tail == nil {
		q.head, q.tail = c, c
	} else {
		q.tail.link.Store(c)
		q.tail = c
	}
	q.lock.release()
}

func (q *chunkQueue[T]) pop() *chunk[T] {
	q.lock.acquire()
	c := q.head
	if c != nil {
		q.head = c.link.Load()
		if q.head == nil {
			q.tail = nil
		}
	}
	q.lock.release()
	if c != nil {
		c.link.Store(nil)
	}
	return c
}

// spinLock is a test-and-test-and-set lock with CPU relaxation.
type spinLock struct {
	state atomix.Int32
}

func (l *spinLock) acquire() {
	sw := spin.Wait{}
	for {
		if l.state.LoadRelaxed() == 0 && l.state.CompareAndSwapAcqRel(0, 1) {
			return
		}
		sw.Once()
	}
}

func (l *spinLock) release() {
	l.state.StoreRelease(0)
}
