package probe

import (
	"github.com/cachelab/memprobe/channel"
	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// An OffsetTable maps worker index to the signed cycle offset that, added
// to that worker's raw timestamps, maps them into worker 0's clock frame.
// Computed once per run that compares cross-core timestamps, read-only
// afterward. The offset for worker 0 is zero by definition.
type OffsetTable []int64

// calibrationSamples is the number of ping-pongs per worker pair; the
// first is discarded as warm-up.
const calibrationSamples = 5000

// midpointOffset estimates the clock offset from one ping-pong. start and
// end are the reference worker's timestamps around the exchange and remote
// is the timestamp the other worker reported in between. Assuming the
// one-way latency is the same in both directions, the remote moment falls
// at the midpoint of [start, end] in the reference frame:
//
//	start
//	        (one-way latency)
//	                remote
//	        (one-way latency)
//	end
//
// so remote's clock read start-equivalent is remote-(end-start)/2, and the
// offset to add to remote timestamps is start minus that.
//
// The symmetry assumption is a documented approximation: on topologies
// with asymmetric core-to-core latency (NUMA, heterogeneous interconnects)
// the estimate is biased by half the asymmetry. That is a known limitation
// of the method, not something to correct for silently.
func midpointOffset(start, end timing.TickCount, remote int64) float64 {
	comms := float64(end-start) / 2
	remoteStart := float64(remote) - comms

	return float64(start) - remoteStart
}

// CalibrateClockOffsets runs the ping-pong calibration between worker 0
// and every other worker, returning the mean offset estimate per worker.
func (p *Probe) CalibrateClockOffsets() OffsetTable {
	n := p.workers
	offsets := make(OffsetTable, n)

	ping := channel.NewPayloadChannel()
	reply := channel.NewPayloadChannel()

	p.region.Run(func(me int) {
		for other := 1; other < n; other++ {
			switch me {
			case 0:
				var stat stats.Statistic
				for i := 0; i < calibrationSamples; i++ {
					start := timing.Now()
					ping.Release()
					remote := reply.Recv()
					end := timing.Now()

					// The first exchange pays the cold-line cost.
					if i == 0 {
						continue
					}

					stat.AddSample(midpointOffset(start, end, remote))
				}
				offsets[other] = int64(stat.Mean())
			case other:
				for i := 0; i < calibrationSamples; i++ {
					ping.Wait()
					reply.Send(int64(timing.Now()))
				}
			}

			p.region.Barrier()
		}
	})

	return offsets
}
