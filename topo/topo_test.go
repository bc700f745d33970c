// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package topo_test

import (
	"testing"

	"code.hybscloud.com/worklist/topo"
)

func TestPoolPackageGrouping(t *testing.T) {
	pool := topo.New(8, topo.WithPackageSize(4))

	if pool.Threads() != 8 {
		t.Fatalf("Threads = %d, want 8", pool.Threads())
	}
	if pool.Packages() != 2 {
		t.Fatalf("Packages = %d, want 2", pool.Packages())
	}
	for tid, want := range []int{0, 0, 0, 0, 1, 1, 1, 1} {
		if got := pool.PackageOf(tid); got != want {
			t.Fatalf("PackageOf(%d) = %d, want %d", tid, got, want)
		}
	}
	if pool.MaxPackage(3) != 0 {
		t.Fatalf("MaxPackage(3) = %d, want 0", pool.MaxPackage(3))
	}
	if pool.MaxPackage(7) != 1 {
		t.Fatalf("MaxPackage(7) = %d, want 1", pool.MaxPackage(7))
	}
}

func TestPoolWithPackages(t *testing.T) {
	pool := topo.New(6, topo.WithPackages(3))
	if pool.Packages() != 3 {
		t.Fatalf("Packages = %d, want 3", pool.Packages())
	}
	if pool.PackageOf(5) != 2 {
		t.Fatalf("PackageOf(5) = %d, want 2", pool.PackageOf(5))
	}
}

func TestPoolDefaultSinglePackage(t *testing.T) {
	pool := topo.New(5)
	if pool.Packages() != 1 {
		t.Fatalf("Packages = %d, want 1", pool.Packages())
	}
}

func TestNextThreadWraps(t *testing.T) {
	pool := topo.New(3)
	for tid, want := range []int{1, 2, 0} {
		if got := pool.NextThread(tid); got != want {
			t.Fatalf("NextThread(%d) = %d, want %d", tid, got, want)
		}
	}
}

func TestThreadTokens(t *testing.T) {
	pool := topo.New(4, topo.WithPackageSize(2))
	tok := pool.Thread(3)
	if tok.ID() != 3 || tok.Package() != 1 || tok.Pool() != pool {
		t.Fatalf("token = {id %d, pkg %d}", tok.ID(), tok.Package())
	}
	// Tokens are stable: the same index yields the same token.
	if pool.Thread(3) != tok {
		t.Fatal("Thread(3) returned a different token")
	}
}

func TestPoolPanicsOnBadArgs(t *testing.T) {
	for name, f := range map[string]func(){
		"zeroThreads":    func() { topo.New(0) },
		"bothOptions":    func() { topo.New(4, topo.WithPackageSize(2), topo.WithPackages(2)) },
		"excessPackages": func() { topo.New(2, topo.WithPackages(4)) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%s did not panic", name)
				}
			}()
			f()
		}()
	}
}

func TestPerThreadSlots(t *testing.T) {
	pool := topo.New(4)
	arr := topo.NewPerThread[int](pool)

	if arr.Len() != 4 {
		t.Fatalf("Len = %d, want 4", arr.Len())
	}
	for i := 0; i < 4; i++ {
		*arr.ByID(i) = i * 10
	}
	tok := pool.Thread(2)
	if *arr.Get(tok) != 20 {
		t.Fatalf("Get = %d, want 20", *arr.Get(tok))
	}
	if arr.MyEffectiveID(tok) != 2 {
		t.Fatalf("MyEffectiveID = %d, want 2", arr.MyEffectiveID(tok))
	}
	if arr.EffectiveIDFor(6) != 2 {
		t.Fatalf("EffectiveIDFor(6) = %d, want 2", arr.EffectiveIDFor(6))
	}
}

func TestPerPackageSlots(t *testing.T) {
	pool := topo.New(4, topo.WithPackageSize(2))
	arr := topo.NewPerPackage[int](pool)

	if arr.Len() != 2 {
		t.Fatalf("Len = %d, want 2", arr.Len())
	}
	*arr.ByID(1) = 7
	tok := pool.Thread(3)
	if *arr.Get(tok) != 7 {
		t.Fatalf("Get = %d, want 7", *arr.Get(tok))
	}
	// Key 3 belongs to thread 3, which sits in package 1.
	if arr.EffectiveIDFor(3) != 1 {
		t.Fatalf("EffectiveIDFor(3) = %d, want 1", arr.EffectiveIDFor(3))
	}
}
