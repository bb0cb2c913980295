package probe

import (
	"fmt"
	"os"

	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// A role is a worker's per-iteration assignment in the sharing protocol,
// derived purely from its logical position and the current sharing count.
type role int

const (
	// roleActive evicts the array from its cache and times the operation.
	roleActive role = iota
	// roleSetup pulls the line into shared state with a plain read.
	roleSetup
	// roleSetupOwner brings the line to the required coherence state
	// (written when measuring a modified line, read otherwise) before the
	// other sharers touch it.
	roleSetupOwner
	// roleNothing idles through the iteration.
	roleNothing
)

// sharingRole computes the role for one sweep step.
func sharingRole(logicalPos, sharing int) role {
	switch {
	case logicalPos == 0:
		return roleActive
	case logicalPos < sharing:
		return roleSetup
	case logicalPos == sharing:
		return roleSetupOwner
	default:
		return roleNothing
	}
}

// sharingPlan says which of the four barrier-separated phases of one
// iteration a role acts in. Keeping the phase dispatch in one table means
// a new role cannot silently miss a phase.
type sharingPlan struct {
	evict   bool // phase 1: drop the array from the active worker's cache
	own     bool // phase 2: establish the owner's line state
	share   bool // phase 3: pull the line into shared state
	measure bool // phase 4: time the operation
}

var sharingPlans = map[role]sharingPlan{
	roleActive:     {evict: true, measure: true},
	roleSetupOwner: {own: true},
	roleSetup:      {share: true},
	roleNothing:    {},
}

// MeasureSharing times op on a line concurrently held by `sharing` other
// cores, sweeping sharing over 1..workers-1. Coordination among more than
// two parties needs the full barrier between phases: the primitives are
// spin-based, so a worker arriving early at a phase must not race a worker
// still finishing the previous one. The result has one Statistic per
// sharing count, scaled to a per-line figure; entry 0 stays empty.
func (p *Probe) MeasureSharing(
	op Operation,
	modified bool,
	from int,
) []stats.Statistic {
	n := p.workers
	sts := make([]stats.Statistic, n)

	task := p.progress.StartTask("sharing", uint64((n-1)*p.samples))
	defer task.Complete()

	p.region.Run(func(me int) {
		logicalPos := logicalPosition(me, from, n)

		for sharing := 1; sharing < n; sharing++ {
			plan := sharingPlans[sharingRole(logicalPos, sharing)]

			for i := 0; i < p.samples; i++ {
				p.region.Barrier()
				if plan.evict {
					p.flushArray(p.array)
				}

				p.region.Barrier()
				if plan.own {
					if modified {
						Stores(p.array)
					} else {
						Loads(p.array)
					}
				}

				p.region.Barrier()
				if plan.share {
					Loads(p.array)
				}

				p.region.Barrier()
				if plan.measure {
					start := timing.Now()
					op(p.array)
					sts[sharing].AddSample(elapsedTicks(start))
				}
			}

			if logicalPos == 0 {
				fmt.Fprintf(os.Stderr, ".")
				task.Advance(uint64(p.samples))
			}
		}
	})

	for i := range sts {
		sts[i].ScaleDown(ArraySize)
	}
	fmt.Fprintln(os.Stderr)

	return sts
}
