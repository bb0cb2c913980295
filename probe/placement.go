package probe

import (
	"fmt"
	"os"

	"github.com/cachelab/memprobe/channel"
	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// MeasurePlacement times op on a line held by a single remote worker,
// sweeping that remote role across every other core. Because only two
// workers participate per sweep step, control is handed between them with
// a pair of single-slot channels instead of a full barrier: forcing all N
// workers through a barrier on every sample would dominate the measured
// latency. The idle workers only rejoin at the barrier between sweep
// steps.
//
// With allocateInZero the shared probe array (first touched on worker 0)
// is measured; otherwise the active worker allocates its own array inside
// the region, so the memory is homed at the measuring core. The result has
// one Statistic per remote position, scaled to a per-line figure; the
// entry at `from` stays empty.
func (p *Probe) MeasurePlacement(
	op Operation,
	modified bool,
	from int,
	allocateInZero bool,
) []stats.Statistic {
	n := p.workers
	sts := make([]stats.Statistic, n)

	activeToPassive := channel.NewSyncChannel()
	passiveToActive := channel.NewSyncChannel()

	var shared Array
	if allocateInZero {
		shared = p.array
	}

	task := p.progress.StartTask("placement", uint64((n-1)*p.samples))
	defer task.Complete()

	p.region.Run(func(me int) {
		if !allocateInZero {
			p.region.Barrier()
			if me == from {
				shared = NewArray()
				// First touch from the measuring worker, so the pages and
				// lines start out written there.
				Stores(shared)
			}
			p.region.Barrier()
		}
		arr := shared

		for placement := 0; placement < n; placement++ {
			if placement == from {
				continue
			}

			switch me {
			case from:
				for i := 0; i < p.samples; i++ {
					// The line must leave our cache before every sample.
					p.flushArray(arr)
					// Hand the line to the remote worker and wait for it to
					// establish the required state there.
					activeToPassive.Release()
					passiveToActive.Wait()

					start := timing.Now()
					op(arr)
					sts[placement].AddSample(elapsedTicks(start))
				}
				fmt.Fprintf(os.Stderr, ".")
				task.Advance(uint64(p.samples))
			case placement:
				for i := 0; i < p.samples; i++ {
					activeToPassive.Wait()
					if modified {
						Stores(arr)
					} else {
						Loads(arr)
					}
					passiveToActive.Release()
				}
			}

			p.region.Barrier()
		}
	})

	for i := range sts {
		sts[i].ScaleDown(ArraySize)
	}
	fmt.Fprintln(os.Stderr)

	return sts
}
