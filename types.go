// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "code.hybscloud.com/worklist/topo"

// Worklist is the contract every scheduling policy in this package
// conforms to.
//
// All operations are non-blocking: Pop returns ErrWouldBlock to signal
// "nothing available now", never waits, and Push always completes. Every
// operation takes the calling worker's identity token; policies use it to
// reach thread-local and package-local state without contention.
//
// Two type-level operations from the policy family are expressed with Go
// generics rather than dedicated methods:
//
//   - retype: instantiate the policy with a different item type, e.g.
//     NewChunkedFIFO[Edge] instead of NewChunkedFIFO[Node].
//   - rethread: pick the synchronized or unsynchronized variant at
//     construction, e.g. NewUnsynchronizedLifo for a container that is
//     provably single-threaded (such as the thread-local inner queue of
//     LocalQueues).
//
// Example:
//
//	pool := topo.New(4)
//	wl := worklist.NewChunkedFIFO[int](pool, 64)
//
//	t := pool.Thread(0)
//	wl.Push(t, 42)
//	v, err := wl.Pop(t)
type Worklist[T any] interface {
	Pusher[T]
	Popper[T]
}

// Pusher is the producer half of the worklist contract.
type Pusher[T any] interface {
	// Push inserts one item. Safe to call concurrently from any worker
	// (unless the container was built unsynchronized). Never blocks.
	Push(t *topo.Thread, v T)

	// PushMany inserts a finite sequence, equivalent in effect to a
	// sequence of Push calls.
	PushMany(t *topo.Thread, vs []T)

	// PushInitial seeds the worklist before any worker starts popping.
	// Most policies treat it as PushMany; range sources and LocalQueues
	// give it a distinct meaning (see their docs for the calling
	// contract).
	PushInitial(t *topo.Thread, vs []T)
}

// Popper is the consumer half of the worklist contract.
type Popper[T any] interface {
	// Pop removes and returns some item chosen by the policy.
	// Returns (zero-value, ErrWouldBlock) when nothing is available now;
	// absence is signalled, never awaited.
	Pop(t *topo.Thread) (T, error)
}

var (
	_ Worklist[int] = (*Lifo[int])(nil)
	_ Worklist[int] = (*Fifo[int])(nil)
	_ Worklist[int] = (*Chunked[int])(nil)
	_ Worklist[int] = (*LocalQueues[int])(nil)
	_ Worklist[int] = (*LocalStealing[int])(nil)
	_ Worklist[int] = (*LevelStealing[int])(nil)
	_ Worklist[int] = (*OwnerComputes[int])(nil)
	_ Worklist[int] = (*OrderedByMetric[int])(nil)
	_ Worklist[int] = (*RandomAccessRange[int])(nil)
	_ Worklist[int] = (*ForwardAccessRange[int])(nil)
	_ Worklist[int] = (*StaticRandomAccessRange[int])(nil)
)
