// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync"
	"testing"
)

// =============================================================================
// Chunk ring
// =============================================================================

func TestChunkRingDequeBehavior(t *testing.T) {
	h := newChunkHeap[int](4)
	c := h.get()

	for i := 1; i <= 4; i++ {
		if !c.pushBack(i) {
			t.Fatalf("pushBack(%d) = false on non-full chunk", i)
		}
	}
	if c.pushBack(5) {
		t.Fatal("pushBack succeeded on full chunk")
	}

	if v, ok := c.popFront(); !ok || v != 1 {
		t.Fatalf("popFront = %d, %v; want 1, true", v, ok)
	}
	if v, ok := c.popBack(); !ok || v != 4 {
		t.Fatalf("popBack = %d, %v; want 4, true", v, ok)
	}
	if !c.pushBack(6) {
		t.Fatal("pushBack failed after popFront made room")
	}

	want := []int{2, 3, 6}
	for _, w := range want {
		v, ok := c.popFront()
		if !ok || v != w {
			t.Fatalf("popFront = %d, %v; want %d, true", v, ok, w)
		}
	}
	if _, ok := c.popFront(); ok {
		t.Fatal("popFront succeeded on empty chunk")
	}
	if _, ok := c.popBack(); ok {
		t.Fatal("popBack succeeded on empty chunk")
	}
}

func TestChunkSizeRoundsToPow2(t *testing.T) {
	h := newChunkHeap[int](3)
	c := h.get()
	n := 0
	for c.pushBack(n) {
		n++
	}
	if n != 4 {
		t.Fatalf("chunk capacity = %d, want 4", n)
	}
}

// =============================================================================
// Chunk heap recycling
// =============================================================================

func TestChunkHeapRecyclesDrainedChunks(t *testing.T) {
	h := newChunkHeap[int](8)
	c := h.get()
	c.pushBack(1)
	c.pushBack(2)
	h.put(c)

	r := h.get()
	if r != c {
		t.Fatal("heap allocated instead of recycling")
	}
	if !r.empty() {
		t.Fatal("recycled chunk not reset")
	}
	if r.link.Load() != nil {
		t.Fatal("recycled chunk keeps stale link")
	}
}

func TestChunkHeapConcurrentGetPut(t *testing.T) {
	h := newChunkHeap[int](8)
	iters := 10000
	if RaceEnabled {
		iters = 1000
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				c := h.get()
				if c == nil {
					t.Error("get returned nil")
					return
				}
				c.pushBack(i)
				c.popBack()
				h.put(c)
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// Chunk containers
// =============================================================================

func TestChunkStackLIFOOrder(t *testing.T) {
	h := newChunkHeap[int](4)
	s := &chunkStack[int]{}

	a, b, c := h.get(), h.get(), h.get()
	s.push(a)
	s.push(b)
	s.push(c)

	for _, want := range []*chunk[int]{c, b, a} {
		if got := s.pop(); got != want {
			t.Fatal("stack pop order mismatch")
		}
	}
	if s.pop() != nil {
		t.Fatal("pop on empty stack returned a chunk")
	}
}

func TestChunkQueueFIFOOrder(t *testing.T) {
	h := newChunkHeap[int](4)
	q := &chunkQueue[int]{}

	a, b, c := h.get(), h.get(), h.get()
	q.push(a)
	q.push(b)
	q.push(c)

	for _, want := range []*chunk[int]{a, b, c} {
		if got := q.pop(); got != want {
			t.Fatal("queue pop order mismatch")
		}
	}
	if q.pop() != nil {
		t.Fatal("pop on empty queue returned a chunk")
	}
}

// Concurrent transfers conserve chunks: what goes in comes out exactly
// once.
func TestChunkContainersConcurrent(t *testing.T) {
	iters := 5000
	if RaceEnabled {
		iters = 500
	}

	for name, mk := range map[string]func() chunkContainer[int]{
		"stack": func() chunkContainer[int] { return &chunkStack[int]{} },
		"queue": func() chunkContainer[int] { return &chunkQueue[int]{} },
	} {
		t.Run(name, func(t *testing.T) {
			cont := mk()

			var wg sync.WaitGroup
			var mu sync.Mutex
			seen := make(map[*chunk[int]]int)
			var popped int

			for w := 0; w < 2; w++ {
				wg.Add(1)
				go func(base int) {
					defer wg.Done()
					for i := 0; i < iters; i++ {
						c := &chunk[int]{buf: make([]int, 4), mask: 3}
						c.pushBack(base + i)
						cont.push(c)
					}
				}(w * iters)
			}
			for w := 0; w < 2; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					n := 0
					for n < iters {
						c := cont.pop()
						if c == nil {
							continue
						}
						n++
						mu.Lock()
						seen[c]++
						popped++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if popped != 2*iters {
				t.Fatalf("popped %d chunks, want %d", popped, 2*iters)
			}
			for c, n := range seen {
				if n != 1 {
					t.Fatalf("chunk %p popped %d times", c, n)
				}
			}
		})
	}
}

// =============================================================================
// Spin lock
// =============================================================================

func TestSpinLockMutualExclusion(t *testing.T) {
	var l spinLock
	iters := 20000
	if RaceEnabled {
		iters = 2000
	}

	counter := 0
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				l.acquire()
				counter++
				l.release()
			}
		}()
	}
	wg.Wait()
	if counter != 4*iters {
		t.Fatalf("counter = %d, want %d", counter, 4*iters)
	}
}
