// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package topo models the worker topology a worklist runs on: a fixed set
// of worker threads grouped into packages (one package per NUMA socket,
// typically).
//
// A Pool captures the active thread count once, at parallel-region entry.
// Changing the thread count mid-region is undefined; build a new Pool for
// the next region instead.
//
// Go has no thread-local storage, so worker identity is an explicit token:
// each worker goroutine holds the *Thread it was launched with and passes
// it to every worklist operation.
//
//	pool := topo.New(8, topo.WithPackageSize(4))
//	for i := 0; i < pool.Threads(); i++ {
//	    go worker(pool.Thread(i))
//	}
package topo

import "fmt"

// Pool is an immutable snapshot of the worker topology.
type Pool struct {
	threads  int
	pkgSize  int
	packages int
	tokens   []Thread
}

// Option configures Pool construction.
type Option func(*config)

type config struct {
	pkgSize  int
	packages int
}

// WithPackageSize groups threads into packages of n contiguous ids.
func WithPackageSize(n int) Option {
	return func(c *config) { c.pkgSize = n }
}

// WithPackages splits threads evenly into n packages.
func WithPackages(n int) Option {
	return func(c *config) { c.packages = n }
}

// New creates a Pool for nThreads workers.
// By default all threads share one package.
// Panics if nThreads < 1 or the package options are inconsistent.
func New(nThreads int, opts ...Option) *Pool {
	if nThreads < 1 {
		panic("topo: thread count must be >= 1")
	}
	c := config{}
	for _, o := range opts {
		o(&c)
	}
	if c.pkgSize != 0 && c.packages != 0 {
		panic("topo: WithPackageSize and WithPackages are mutually exclusive")
	}
	pkgSize := nThreads
	switch {
	case c.pkgSize > 0:
		pkgSize = c.pkgSize
	case c.packages > 0:
		if c.packages > nThreads {
			panic(fmt.Sprintf("topo: %d packages for %d threads", c.packages, nThreads))
		}
		pkgSize = (nThreads + c.packages - 1) / c.packages
	}

	p := &Pool{
		threads:  nThreads,
		pkgSize:  pkgSize,
		packages: (nThreads + pkgSize - 1) / pkgSize,
	}
	p.tokens = make([]Thread, nThreads)
	for i := range p.tokens {
		p.tokens[i] = Thread{pool: p, id: i, pkg: i / pkgSize}
	}
	return p
}

// Threads returns the active worker count.
func (p *Pool) Threads() int { return p.threads }

// Packages returns the number of packages in use.
func (p *Pool) Packages() int { return p.packages }

// PackageOf returns the package index of thread tid.
func (p *Pool) PackageOf(tid int) int {
	return tid / p.pkgSize
}

// MaxPackage returns the highest package index among threads 0..tid.
// Packages are assigned contiguously, so this is PackageOf(tid).
func (p *Pool) MaxPackage(tid int) int {
	return p.PackageOf(tid)
}

// NextThread returns the round-robin successor of tid among active threads.
func (p *Pool) NextThread(tid int) int {
	return (tid + 1) % p.threads
}

// Thread returns the identity token for worker i.
func (p *Pool) Thread(i int) *Thread {
	return &p.tokens[i]
}

// Thread is a worker identity token. Tokens are created by the Pool; a
// worker goroutine holds exactly one and passes it to every worklist
// operation it performs.
type Thread struct {
	pool *Pool
	id   int
	pkg  int
}

// ID returns the worker id, 0 <= id < pool.Threads().
func (t *Thread) ID() int { return t.id }

// Package returns the worker's package index.
func (t *Thread) Package() int { return t.pkg }

// Pool returns the topology the token belongs to.
func (t *Thread) Pool() *Pool { return t.pool }
