package probe

import (
	"fmt"
	"os"

	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// MaxWriteRun bounds the consecutive-writes sweep.
const MaxWriteRun = 32

// MeasureWrites times runs of 1..MaxWriteRun-1 consecutive writes to
// uncached lines, probing how deep the write buffer is. The sweep runs on
// worker 0 inside the region, so the measuring thread stays locked and
// pinned like every other experiment; an unpinned goroutine could migrate
// between the eviction and the timed writes. The per-call overhead
// (indirect call, timer reads) is not discounted; the signal is in how the
// time grows with the run length, not in the absolute values. Entry d of
// the result holds the statistics for a run of d writes; entry 0 stays
// empty.
func (p *Probe) MeasureWrites() []stats.Statistic {
	sts := make([]stats.Statistic, MaxWriteRun)

	task := p.progress.StartTask(
		"writes", uint64((MaxWriteRun-1)*p.samples))
	defer task.Complete()

	p.region.Run(func(me int) {
		if me != 0 {
			return
		}

		for d := 1; d < MaxWriteRun; d++ {
			op := StoresN(d)
			stat := &sts[d]

			for i := 0; i < p.samples; i++ {
				p.flushArray(p.array)

				start := timing.Now()
				op(p.array)
				stat.AddSample(elapsedTicks(start))
			}

			fmt.Fprintf(os.Stderr, ".")
			task.Advance(uint64(p.samples))
		}
	})
	fmt.Fprintln(os.Stderr)

	return sts
}
