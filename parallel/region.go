// Package parallel forks the fixed set of pinned worker threads an
// experiment runs on and provides the full barrier the phase protocols
// need.
package parallel

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/cachelab/memprobe/target"
)

// A Region is a parallel region of n workers, indexed 0..n-1, each locked
// to its own OS thread and pinned to the matching logical core. There is no
// task queue and no cooperative scheduling: a Region exists only to give
// every worker a stable identity and core for the duration of one
// experiment.
type Region struct {
	n       int
	barrier *Barrier
}

// NewRegion creates a Region of n workers.
func NewRegion(n int) *Region {
	if n < 1 {
		panic("parallel region needs at least one worker")
	}

	return &Region{
		n:       n,
		barrier: NewBarrier(n),
	}
}

// NumWorkers returns the worker count of the region.
func (r *Region) NumWorkers() int {
	return r.n
}

// Barrier blocks the calling worker until all workers of the region have
// arrived. Only valid from within a Run body.
func (r *Region) Barrier() {
	r.barrier.Wait()
}

// Run forks the workers, runs body(worker) on each, and joins them all
// before returning. Each worker is locked to its OS thread and bound to
// logical core `worker`; a failed bind is logged and the run continues,
// since it degrades only the placement labels, not the protocol.
func (r *Region) Run(body func(worker int)) {
	var wg sync.WaitGroup
	wg.Add(r.n)

	for w := 0; w < r.n; w++ {
		go func(worker int) {
			defer wg.Done()

			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			if err := target.BindCurrentThreadToCore(worker); err != nil {
				fmt.Fprintf(os.Stderr,
					"failed to bind worker %d to core %d: %v\n",
					worker, worker, err)
			}

			body(worker)
		}(w)
	}

	wg.Wait()
}
