// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/worklist"
	"code.hybscloud.com/worklist/topo"
)

// =============================================================================
// Chunk Boundary Transparency
// =============================================================================

// Conservation and no-duplication must hold for any chunk capacity.
func TestChunkedConservationAcrossChunkSizes(t *testing.T) {
	pool := topo.New(2)
	tok := pool.Thread(0)
	items := seq(0, 3000)

	for _, chunkSize := range []int{1, 2, 64, 1024} {
		variants := map[string]worklist.Worklist[int]{
			"fifo":     worklist.NewChunkedFIFO[int](pool, chunkSize),
			"lifo":     worklist.NewChunkedLIFO[int](pool, chunkSize),
			"distFifo": worklist.NewDistChunkedFIFO[int](pool, chunkSize),
			"distLifo": worklist.NewDistChunkedLIFO[int](pool, chunkSize),
		}
		for name, wl := range variants {
			wl.PushMany(tok, items)
			got := drain[int](t, wl, tok)
			if len(got) != len(items) {
				t.Fatalf("%s chunkSize=%d: popped %d, want %d", name, chunkSize, len(got), len(items))
			}
			wantMultiset(t, got, items)
		}
	}
}

// A single worker on ChunkedFIFO sees global FIFO order: chunks are
// published in fill order and drained front to back.
func TestChunkedFIFOSingleWorkerOrder(t *testing.T) {
	pool := topo.New(1)
	tok := pool.Thread(0)
	wl := worklist.NewChunkedFIFO[int](pool, 2)

	wl.PushMany(tok, seq(1, 11))
	got := drain[int](t, wl, tok)
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("pop %d = %d, want %d", i, v, i+1)
		}
	}
}

// A single worker on ChunkedLIFO drains its fill chunk newest-first.
func TestChunkedLIFOSingleWorkerOrder(t *testing.T) {
	pool := topo.New(1)
	tok := pool.Thread(0)
	wl := worklist.NewChunkedLIFO[int](pool, 4)

	wl.PushMany(tok, []int{1, 2, 3, 4})
	want := []int{4, 3, 2, 1}
	for i, w := range want {
		v, err := wl.Pop(tok)
		if err != nil || v != w {
			t.Fatalf("pop %d = %d, %v; want %d", i, v, err, w)
		}
	}
}

// =============================================================================
// Scenario S2: concurrent producers, shared drain
// =============================================================================

func TestChunkedFIFOTwoThreads(t *testing.T) {
	pool := topo.New(2)
	wl := worklist.NewChunkedFIFO[int](pool, 2)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var got []int

	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tok := pool.Thread(id)
			wl.PushMany(tok, seq(1+10*id, 11+10*id))
		}(w)
	}
	wg.Wait()

	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tok := pool.Thread(id)
			local := drain[int](t, wl, tok)
			mu.Lock()
			got = append(got, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	wantMultiset(t, got, seq(1, 21))
}

// =============================================================================
// Distributed variant: cross-package chunk stealing
// =============================================================================

// All chunks published by package 0; a worker of package 1 must claim
// them via the package scan.
func TestDistChunkedCrossPackageSteal(t *testing.T) {
	pool := topo.New(4, topo.WithPackageSize(2))
	producer := pool.Thread(0) // package 0
	thief := pool.Thread(2)    // package 1

	wl := worklist.NewDistChunkedFIFO[int](pool, 4)
	items := seq(0, 64)
	wl.PushMany(producer, items)

	got := drain[int](t, wl, thief)
	if len(got) == 0 {
		t.Fatal("thief popped nothing")
	}
	// The producer's private fill chunk is not stealable; the producer
	// drains what remains.
	got = append(got, drain[int](t, wl, producer)...)
	wantMultiset(t, got, items)
}
