package probe

import (
	"fmt"
	"os"

	"github.com/cachelab/memprobe/channel"
	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// A pingChannel is either channel variant, as the round-trip experiments
// need: plain release-store publication or atomic-increment publication.
type pingChannel interface {
	Release()
	Wait()
	WaitFor(full bool)
}

// RoundTripInnerReps is the number of ping-pongs timed as one sample.
// Batching them amortizes the timer reads out of the per-hop figure.
const RoundTripInnerReps = 20

// MeasureRoundTrip measures the half round-trip time between the source
// worker and every other worker. Each sample times RoundTripInnerReps
// ping-pongs plus the wait for the final consumption, then the statistics
// are scaled down by 2x the repeat count to a per-hop estimate of the
// one-way coherence latency. useAtomic selects the atomic-increment
// channel variant. The result has one Statistic per partner; the entry at
// `from` stays empty.
func (p *Probe) MeasureRoundTrip(useAtomic bool, from int) []stats.Statistic {
	n := p.workers
	sts := make([]stats.Statistic, n)

	// The source allocates the channel inside the region so the slot is
	// homed at its core.
	var ch pingChannel

	task := p.progress.StartTask("roundtrip", uint64((n-1)*p.samples))
	defer task.Complete()

	p.region.Run(func(me int) {
		if me == from {
			if useAtomic {
				ch = channel.NewAtomicSyncChannel()
			} else {
				ch = channel.NewSyncChannel()
			}
		}
		p.region.Barrier()

		c := ch

		for other := 0; other < n; other++ {
			if other == from {
				continue
			}

			switch me {
			case from:
				for i := 0; i < p.samples; i++ {
					start := timing.Now()
					for rep := 0; rep < RoundTripInnerReps; rep++ {
						c.Release()
					}
					// The last release must have been consumed, or the next
					// partner's first ping would race it.
					c.WaitFor(false)
					sts[other].AddSample(elapsedTicks(start))
				}
				fmt.Fprintf(os.Stderr, ".")
				task.Advance(uint64(p.samples))
			case other:
				for i := 0; i < p.samples; i++ {
					for rep := 0; rep < RoundTripInnerReps; rep++ {
						c.Wait()
					}
				}
			}

			p.region.Barrier()
		}
	})

	for i := range sts {
		sts[i].ScaleDown(2 * RoundTripInnerReps)
	}
	fmt.Fprintln(os.Stderr)

	return sts
}
