package probe

import (
	"fmt"
	"os"

	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// A watchRole is a worker's per-iteration assignment in the visibility
// protocol.
type watchRole int

const (
	// watchActive performs the store under observation.
	watchActive watchRole = iota
	// watchPolling busy-reads the broadcast line until the store becomes
	// visible, then timestamps the observation.
	watchPolling
	// watchNothing idles through the iteration.
	watchNothing
)

// visibilityRole computes the role for one sweep step.
func visibilityRole(logicalPos, sharing int) watchRole {
	switch {
	case logicalPos == 0:
		return watchActive
	case logicalPos <= sharing:
		return watchPolling
	default:
		return watchNothing
	}
}

// settleTicks is how long the writer waits after the barrier before
// storing, so every polling worker has reached its poll loop. Another
// barrier would not help: the skew being hidden is the barrier's own
// leave time.
const settleTicks = 5000

// longestInterval returns the interval from times[0] (the write) to the
// latest of times[1..pollers].
func longestInterval(times []timing.TickCount, pollers int) timing.TickInterval {
	latest := times[1]
	for i := 2; i <= pollers; i++ {
		latest = latest.Later(times[i])
	}

	return latest.Sub(times[0])
}

// MeasureVisibility measures the elapsed time from one worker's store to
// the last of `sharing` polling workers observing it, sweeping sharing
// over 1..workers-1. Polling observations are translated into the writer's
// clock frame with the calibrated offset table; since the offsets are
// estimates, a sample that comes out non-positive is measurement noise and
// is discarded rather than recorded. The result has one Statistic per
// poller count; entry 0 stays empty.
func (p *Probe) MeasureVisibility(from int) []stats.Statistic {
	n := p.workers
	offsets := p.CalibrateClockOffsets()

	sts := make([]stats.Statistic, n)
	times := make([]timing.TickCount, n)

	var line *Counter

	task := p.progress.StartTask("visibility", uint64((n-1)*p.samples))
	defer task.Complete()

	p.region.Run(func(me int) {
		logicalPos := logicalPosition(me, from, n)

		if logicalPos == 0 {
			line = newBroadcastLine()
		}
		p.region.Barrier()

		// One level of indirection in the poll loop, not two.
		bl := line
		myOffset := offsets[me]

		for sharing := 1; sharing < n; sharing++ {
			r := visibilityRole(logicalPos, sharing)

			for i := 0; i < p.samples; i++ {
				p.region.Barrier()

				switch r {
				case watchActive:
					delay(settleTicks)
					// Translated like the observations, so write and
					// observation times share worker 0's clock frame even
					// when the writer is some other worker.
					times[0] = timing.Now() + timing.TickCount(myOffset)
					bl.Store(1)
				case watchPolling:
					// The racy read loop is the object under measurement.
					for bl.Load() == 0 {
					}
					times[logicalPos] = timing.Now() + timing.TickCount(myOffset)
				case watchNothing:
				}

				p.region.Barrier()

				if r == watchActive {
					// Everyone has seen the write; rearm for next time.
					bl.Store(0)

					elapsed := longestInterval(times, sharing).Ticks()
					if elapsed > 0 {
						sts[sharing].AddSample(float64(elapsed))
					}
				}
			}

			if logicalPos == 0 {
				fmt.Fprintf(os.Stderr, ".")
				task.Advance(uint64(p.samples))
			}
		}
	})

	fmt.Fprintln(os.Stderr)

	return sts
}
