// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package exec runs an operator over a worklist with one goroutine per
// worker thread.
//
// The worklist packages are driver-agnostic; exec is the minimal driver
// that makes them runnable end to end: it launches the workers, feeds
// follow-up pushes back into the worklist, and terminates when the
// workers agree the worklist is globally empty.
package exec

import (
	"context"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/worklist"
	"code.hybscloud.com/worklist/topo"
)

// Operator processes one item. emit pushes follow-up work generated by
// the item; it must only be called before the operator returns.
type Operator[T any] func(t *topo.Thread, v T, emit func(T))

// Options configures a run.
type Options struct {
	// PinWorkers binds each worker goroutine to an OS thread and, on
	// Linux, to the CPU matching its worker id.
	PinWorkers bool
}

// Executor drives an operator over a worklist until global emptiness.
type Executor[T any] struct {
	pool *topo.Pool
	wl   worklist.Worklist[T]
	op   Operator[T]
	opts Options

	_      pad
	idle   atomix.Int32
	popped atomix.Int64
	pushed atomix.Int64
	active atomix.Bool
	_      pad
}

type pad [64]byte

// Stats is a point-in-time snapshot of executor counters.
type Stats struct {
	Workers int
	Popped  int64
	Pushed  int64
	Running bool
}

// New creates an Executor.
func New[T any](pool *topo.Pool, wl worklist.Worklist[T], op Operator[T], opts Options) *Executor[T] {
	return &Executor[T]{pool: pool, wl: wl, op: op, opts: opts}
}

// Stats returns current counter values. Safe to call from any goroutine
// while the executor runs.
func (e *Executor[T]) Stats() Stats {
	return Stats{
		Workers: e.pool.Threads(),
		Popped:  e.popped.LoadRelaxed(),
		Pushed:  e.pushed.LoadRelaxed(),
		Running: e.active.LoadAcquire(),
	}
}

// Run executes the operator until every worker observes an empty
// worklist while all workers are idle, or ctx is cancelled.
func (e *Executor[T]) Run(ctx context.Context) error {
	e.active.StoreRelease(true)
	defer e.active.StoreRelease(false)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.pool.Threads(); i++ {
		t := e.pool.Thread(i)
		g.Go(func() error {
			if e.opts.PinWorkers {
				t.Pin()
				defer t.Unpin()
			}
			return e.worker(ctx, t)
		})
	}
	return g.Wait()
}

// worker pops until termination consensus. A worker counts itself idle
// after an empty pop and keeps re-popping while idle; it exits only when
// every worker is idle and its own re-pop still comes up empty, so work
// pushed by a straggler is always picked up by somebody.
func (e *Executor[T]) worker(ctx context.Context, t *topo.Thread) error {
	n := int32(e.pool.Threads())
	emit := func(v T) {
		e.wl.Push(t, v)
		e.pushed.AddAcqRel(1)
	}

	backoff := iox.Backoff{}
	idle := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		v, err := e.wl.Pop(t)
		if err == nil {
			if idle {
				e.idle.AddAcqRel(-1)
				idle = false
			}
			backoff.Reset()
			e.popped.AddAcqRel(1)
			e.op(t, v, emit)
			continue
		}
		if !worklist.IsWouldBlock(err) {
			return err
		}
		if !idle {
			e.idle.AddAcqRel(1)
			idle = true
		}
		if e.idle.LoadAcquire() == n {
			// Everyone idle; confirm on a final pop.
			if v, err := e.wl.Pop(t); err == nil {
				e.idle.AddAcqRel(-1)
				idle = false
				backoff.Reset()
				e.popped.AddAcqRel(1)
				e.op(t, v, emit)
				continue
			}
			return nil
		}
		backoff.Wait()
	}
}

// ForEach seeds wl with vs (from worker 0), then runs op over it to
// completion.
func ForEach[T any](ctx context.Context, pool *topo.Pool, wl worklist.Worklist[T], vs []T, op Operator[T]) error {
	wl.PushInitial(pool.Thread(0), vs)
	return New(pool, wl, op, Options{}).Run(ctx)
}
