// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// chunk is a fixed-capacity ring of T, the unit of bulk transfer between
// workers. A chunk is owned by exactly one holder at a time: a worker's
// cur/next slot, a chunk container, or the free list. Ownership makes the
// ring index arithmetic single-threaded; only the intrusive link is ever
// touched concurrently.
//
// The enclosing policy drains a chunk as a stack (popBack) or as a queue
// (popFront).
type chunk[T any] struct {
	link  atomic.Pointer[chunk[T]] // intrusive next, owned by chunk containers
	buf   []T
	mask  uint64
	start uint64 // first live element
	end   uint64 // one past last live element
}

func (c *chunk[T]) empty() bool { return c.start == c.end }

func (c *chunk[T]) full() bool { return c.end-c.start > c.mask }

// pushBack appends v. Returns false when the chunk is full.
func (c *chunk[T]) pushBack(v T) bool {
	if c.full() {
		return false
	}
	c.buf[c.end&c.mask] = v
	c.end++
	return true
}

// popBack removes the newest element. The vacated slot is zeroed so the
// chunk does not pin referenced objects while parked on the free list.
func (c *chunk[T]) popBack() (T, bool) {
	var zero T
	if c.empty() {
		return zero, false
	}
	c.end--
	v := c.buf[c.end&c.mask]
	c.buf[c.end&c.mask] = zero
	return v, true
}

// popFront removes the oldest element.
func (c *chunk[T]) popFront() (T, bool) {
	var zero T
	if c.empty() {
		return zero, false
	}
	v := c.buf[c.start&c.mask]
	c.buf[c.start&c.mask] = zero
	c.start++
	return v, true
}

// freeListCap bounds the per-worklist chunk recycler. Overflow falls
// through to the garbage collector, so recycling is an optimization, never
// a correctness concern.
const freeListCap = 256

// chunkHeap hands out fixed-size chunks and recycles drained ones.
//
// The recycler is an FAA-based MPMC ring (SCQ, Nikolaev DISC 2019): 2n
// physical slots for capacity n, cycle-based slot validation for ABA
// safety. Any worker may allocate or free concurrently.
type chunkHeap[T any] struct {
	_         pad
	tail      atomix.Uint64
	_         pad
	head      atomix.Uint64
	_         pad
	threshold atomix.Int64
	_         pad
	slots     []heapSlot[T]
	capacity  uint64 // n
	size      uint64 // 2n
	mask      uint64 // 2n - 1
	chunkCap  uint64 // ring capacity of each chunk handed out
}

type heapSlot[T any] struct {
	cycle atomix.Uint64
	data  *chunk[T]
	_     padShort
}

func newChunkHeap[T any](chunkSize int) *chunkHeap[T] {
	if chunkSize < 1 {
		panic("worklist: chunk size must be >= 1")
	}
	n := uint64(roundToPow2(freeListCap))
	h := &chunkHeap[T]{
		slots:    make([]heapSlot[T], n*2),
		capacity: n,
		size:     n * 2,
		mask:     n*2 - 1,
		chunkCap: uint64(roundToPow2(chunkSize)),
	}
	h.threshold.StoreRelaxed(-1)
	for i := uint64(0); i < h.size; i++ {
		h.slots[i].cycle.StoreRelaxed(i / n)
	}
	return h
}

// get returns a fresh empty chunk, recycled when possible.
func (h *chunkHeap[T]) get() *chunk[T] {
	if c := h.tryDequeue(); c != nil {
		return c
	}
	c := &chunk[T]{buf: make([]T, h.chunkCap)}
	c.mask = h.chunkCap - 1
	return c
}

// put parks a drained chunk on the free list, or drops it to the GC when
// the list is full.
func (h *chunkHeap[T]) put(c *chunk[T]) {
	c.start, c.end = 0, 0
	c.link.Store(nil)
	h.tryEnqueue(c)
}

func (h *chunkHeap[T]) tryEnqueue(c *chunk[T]) bool {
	sw := spin.Wait{}
	for {
		tail := h.tail.LoadAcquire()
		head := h.head.LoadAcquire()
		if tail >= head+h.capacity {
			return false
		}

		myTail := h.tail.AddAcqRel(1) - 1
		slot := &h.slots[myTail&h.mask]
		expectedCycle := myTail / h.capacity
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			slot.data = c
			slot.cycle.StoreRelease(expectedCycle + 1)
			h.threshold.StoreRelaxed(3*int64(h.capacity) - 1)
			return true
		}
		if int64(slotCycle) < int64(expectedCycle) {
			return false
		}
		sw.Once()
	}
}

func (h *chunkHeap[T]) tryDequeue() *chunk[T] {
	if h.threshold.LoadRelaxed() < 0 {
		return nil
	}

	sw := spin.Wait{}
	for {
		myHead := h.head.AddAcqRel(1) - 1
		slot := &h.slots[myHead&h.mask]
		expectedCycle := myHead/h.capacity + 1
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			c := slot.data
			slot.data = nil
			nextEnqCycle := (myHead + h.size) / h.capacity
			slot.cycle.StoreRelease(nextEnqCycle)
			return c
		}
		if int64(slotCycle) < int64(expectedCycle) {
			// SCQ slot repair: advance stale slot for future enqueuers
			nextEnqCycle := (myHead + h.size) / h.capacity
			slot.cycle.CompareAndSwapAcqRel(slotCycle, nextEnqCycle)

			tail := h.tail.LoadAcquire()
			if tail <= myHead+1 {
				h.catchup(tail, myHead+1)
				h.threshold.AddAcqRel(-1)
				return nil
			}
			if h.threshold.AddAcqRel(-1) <= 0 {
				return nil
			}
		}
		sw.Once()
	}
}

func (h *chunkHeap[T]) catchup(tail, head uint64) {
	for tail < head {
		if h.tail.CompareAndSwapRelaxed(tail, head) {
			break
		}
		tail = h.tail.LoadRelaxed()
		head = h.head.LoadRelaxed()
	}
}
