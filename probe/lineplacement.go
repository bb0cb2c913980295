package probe

import (
	"fmt"
	"os"
	"sync"

	"github.com/cachelab/memprobe/channel"
	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// LinePlacementInnerReps is the ping-pong batch per sample for the
// line-placement sweep.
const LinePlacementInnerReps = 10

// NumLineSlots is the number of per-line results a line-placement run
// produces.
const NumLineSlots = channel.SlotsPerPage

// The slot page persists for the process lifetime so that repeated runs
// ping the same physical lines and their results stay comparable.
var (
	lineSlotsOnce sync.Once
	lineSlots     []channel.Slot
)

// MeasureLinePlacement repeats the round-trip protocol once per distinct
// cache line within one page of signal slots, holding the worker pair
// (0, other) fixed. Different lines hash to different cache-directory
// homes, so on machines with a distributed LLC directory some lines sit
// closer to one of the two cores and round-trip faster; a partitioned LLC
// shows no spread. sts must have NumLineSlots entries; each is reset, then
// filled and scaled to a per-hop figure, so one slice can be reused across
// the repeated runs of an experiment.
func (p *Probe) MeasureLinePlacement(other int, sts []stats.Statistic) {
	if len(sts) != NumLineSlots {
		panic(fmt.Sprintf("line placement needs %d statistics, got %d",
			NumLineSlots, len(sts)))
	}

	lineSlotsOnce.Do(func() {
		lineSlots = channel.NewSlotPage()
	})

	chans := make([]*channel.SyncChannel, NumLineSlots)
	for i := range chans {
		chans[i] = channel.NewSyncChannelOnSlot(&lineSlots[i])
	}

	task := p.progress.StartTask(
		"lineplacement", uint64(NumLineSlots*p.samples))
	defer task.Complete()

	p.region.Run(func(me int) {
		switch me {
		case 0:
			for idx := NumLineSlots - 1; idx >= 0; idx-- {
				ch := chans[idx]
				stat := &sts[idx]
				stat.Reset()

				for i := 0; i < p.samples; i++ {
					start := timing.Now()
					for rep := 0; rep < LinePlacementInnerReps; rep++ {
						ch.Release()
					}
					ch.WaitFor(false)
					stat.AddSample(elapsedTicks(start))
				}
				fmt.Fprintf(os.Stderr, ".")
				task.Advance(uint64(p.samples))
			}
		case other:
			for idx := NumLineSlots - 1; idx >= 0; idx-- {
				ch := chans[idx]
				for i := 0; i < p.samples; i++ {
					for rep := 0; rep < LinePlacementInnerReps; rep++ {
						ch.Wait()
					}
				}
			}
		}
	})

	for i := range sts {
		sts[i].ScaleDown(2 * LinePlacementInnerReps)
	}
	fmt.Fprintln(os.Stderr)
}
