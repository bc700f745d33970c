// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package worklist provides concurrent work-item containers for
// data-parallel runtimes.
//
// A worklist is the scheduler of an amorphous data-parallel computation:
// workers repeatedly pop items, run an operator on each, and push the new
// items the operator generates. The package offers a family of policies
// behind one contract, each realizing a different scheduling strategy:
//
//   - Lifo / Fifo: lock-protected deques, the correctness references
//   - Chunked (FIFO/LIFO, global/per-package): bulk transfer in
//     fixed-capacity chunks
//   - LocalQueues: uncontended thread-local queues over a shared spill
//   - LocalStealing / LevelStealing: per-thread or per-package queues
//     with neighbor stealing
//   - OwnerComputes: route items to the worker an owner function names
//   - OrderedByMetric: priority buckets keyed by an integer indexer
//   - RandomAccessRange / ForwardAccessRange / StaticRandomAccessRange:
//     read-only partitioned views of an input slice
//
// # Quick Start
//
// Direct constructors:
//
//	pool := topo.New(8, topo.WithPackageSize(4))
//	wl := worklist.NewDistChunkedFIFO[Node](pool, 64)
//
// Builder API:
//
//	wl := worklist.BuildChunked[Node](worklist.New(pool).ChunkSize(64).Distributed())
//
// # Basic Usage
//
// Every operation takes the worker's identity token:
//
//	t := pool.Thread(workerIndex)
//	wl.Push(t, item)
//
//	v, err := wl.Pop(t)
//	if worklist.IsWouldBlock(err) {
//	    // Nothing available now. Retry, or terminate by consensus
//	    // with the other workers.
//	}
//
// Pop never blocks: absence of work is signalled with ErrWouldBlock, not
// awaited. None of the policies provide global ordering across workers;
// each documents its own relaxed guarantee.
//
// # Choosing a Policy
//
// Chunked policies amortize contention over chunkSize items and are the
// default for irregular algorithms. The distributed variants keep chunks
// inside a package until its workers run dry. OrderedByMetric adds soft
// priorities on top of any child container. Range sources skip the
// container entirely when the work is a pre-existing slice.
//
// The exec subpackage has a minimal parallel for-each driver; the
// observability subpackage exports its counters.
package worklist
