package probe

import (
	"fmt"
	"os"

	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// Indices into the MeasureMemory result.
const (
	MemoryLocalLoad = iota
	MemoryLocalStore
	MemoryRemoteLoad
	MemoryRemoteStore
	NumMemoryResults
)

// MeasureMemory times loads and stores to lines that are not in any cache,
// first from worker 0 and then from the highest-numbered worker, to show
// whether uncached latency depends on which core asks. The four statistics
// are per-line figures, indexed by the Memory* constants.
func (p *Probe) MeasureMemory() []stats.Statistic {
	n := p.workers
	sts := make([]stats.Statistic, NumMemoryResults)

	task := p.progress.StartTask("memory", uint64(4*p.samples))
	defer task.Complete()

	p.region.Run(func(me int) {
		if me == 0 {
			p.measureUncached(&sts[MemoryLocalLoad], Loads)
			p.measureUncached(&sts[MemoryLocalStore], Stores)
			task.Advance(uint64(2 * p.samples))
		}

		p.region.Barrier()

		if me == n-1 {
			p.measureUncached(&sts[MemoryRemoteLoad], Loads)
			p.measureUncached(&sts[MemoryRemoteStore], Stores)
			task.Advance(uint64(2 * p.samples))
		}
	})

	fmt.Fprintln(os.Stderr)

	return sts
}

// measureUncached times op on the measurement array with the array evicted
// from the local cache before every sample, then scales to a per-line
// figure.
func (p *Probe) measureUncached(stat *stats.Statistic, op Operation) {
	for i := 0; i < p.samples; i++ {
		p.flushArray(p.array)

		start := timing.Now()
		op(p.array)
		stat.AddSample(elapsedTicks(start))
	}

	stat.ScaleDown(ArraySize)
	fmt.Fprintf(os.Stderr, ".")
}
