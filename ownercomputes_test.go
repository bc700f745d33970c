// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist_test

import (
	"testing"

	"code.hybscloud.com/worklist"
	"code.hybscloud.com/worklist/topo"
)

// =============================================================================
// Scenario S6: items reach the worker the owner function names
// =============================================================================

func TestOwnerComputesRouting(t *testing.T) {
	pool := topo.New(2)
	wl := worklist.NewDefaultOwnerComputes[int](pool, func(v int) uint { return uint(v % 2) })

	// Thread 0 (owner of the even items) pushes everything.
	wl.PushMany(pool.Thread(0), seq(0, 10))

	got0 := drain[int](t, wl, pool.Thread(0))
	got1 := drain[int](t, wl, pool.Thread(1))

	wantMultiset(t, got0, []int{0, 2, 4, 6, 8})
	wantMultiset(t, got1, []int{1, 3, 5, 7, 9})
}

// Pop never crosses owners: a worker with no owned items reports empty
// even while other owners hold work.
func TestOwnerComputesPopOnlyOwn(t *testing.T) {
	pool := topo.New(2)
	wl := worklist.NewDefaultOwnerComputes[int](pool, func(v int) uint { return 0 })

	wl.PushMany(pool.Thread(0), seq(0, 5))
	if _, err := wl.Pop(pool.Thread(1)); !worklist.IsWouldBlock(err) {
		t.Fatalf("non-owner pop = %v, want ErrWouldBlock", err)
	}
	got := drain[int](t, wl, pool.Thread(0))
	wantMultiset(t, got, seq(0, 5))
}

// Cross-thread pushes land in the owner's buffer and surface on the
// owner's next pop, or on an explicit Flush.
func TestOwnerComputesBufferedDelivery(t *testing.T) {
	pool := topo.New(2)
	wl := worklist.NewDefaultOwnerComputes[int](pool, func(v int) uint { return uint(v % 2) })

	// Thread 1 pushes an item owned by thread 0.
	wl.Push(pool.Thread(1), 4)

	v, err := wl.Pop(pool.Thread(0))
	if err != nil || v != 4 {
		t.Fatalf("owner pop = %d, %v; want 4, nil", v, err)
	}

	wl.Push(pool.Thread(1), 6)
	wl.Flush(pool.Thread(0))
	v, err = wl.Pop(pool.Thread(0))
	if err != nil || v != 6 {
		t.Fatalf("owner pop after flush = %d, %v; want 6, nil", v, err)
	}
}

// Owner indices beyond the thread count wrap onto the active workers.
func TestOwnerComputesEffectiveIDWraps(t *testing.T) {
	pool := topo.New(2)
	wl := worklist.NewDefaultOwnerComputes[int](pool, func(v int) uint { return uint(v) })

	wl.Push(pool.Thread(0), 7) // owner 7 % 2 = thread 1
	v, err := wl.Pop(pool.Thread(1))
	if err != nil || v != 7 {
		t.Fatalf("wrapped owner pop = %d, %v; want 7, nil", v, err)
	}
}
