package parallel

import (
	"runtime"
	"sync/atomic"

	"github.com/cachelab/memprobe/target"
)

// A Barrier blocks workers until all of them have arrived. It is a
// generation-counting spin barrier: the last arrival resets the count and
// bumps the generation, releasing everyone spinning on it, so the same
// Barrier is immediately reusable for the next phase.
//
// Arrivals spin rather than block in the scheduler for the same reason the
// channels do. They yield between polls so over-subscribed test runs still
// make progress.
type Barrier struct {
	count atomic.Int32
	_     [target.CacheLineSize - 4]byte
	gen   atomic.Uint32
	_     [target.CacheLineSize - 4]byte
	n     int32
}

// NewBarrier creates a Barrier for n workers.
func NewBarrier(n int) *Barrier {
	if n < 1 {
		panic("barrier needs at least one worker")
	}
	return &Barrier{n: int32(n)}
}

// Wait blocks until all n workers have called Wait for the current phase.
func (b *Barrier) Wait() {
	gen := b.gen.Load()

	if b.count.Add(1) == b.n {
		b.count.Store(0)
		b.gen.Add(1)
		return
	}

	for b.gen.Load() == gen {
		runtime.Gosched()
	}
}
