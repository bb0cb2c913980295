// Package probe orchestrates the memory-subsystem timing experiments. Each
// experiment forks one pinned worker per logical core, assigns every worker
// a role per sweep step, coordinates the phases of each timed iteration
// with spin channels and barriers, and folds the raw cycle intervals into
// per-position statistics.
package probe

import (
	"runtime"

	"github.com/cachelab/memprobe/parallel"
	"github.com/cachelab/memprobe/target"
	"github.com/cachelab/memprobe/timing"
)

// DefaultSamples is the default number of timed iterations per
// experimental position.
const DefaultSamples = 10000

// A ProgressReporter receives sweep progress from running experiments. The
// monitoring server implements it; runs without monitoring get a no-op.
type ProgressReporter interface {
	// StartTask announces a sweep of total timed iterations.
	StartTask(name string, total uint64) ProgressTask
}

// A ProgressTask tracks one running sweep.
type ProgressTask interface {
	// Advance records that amount more iterations have completed.
	Advance(amount uint64)

	// Complete marks the sweep finished.
	Complete()
}

type nopProgress struct{}

func (nopProgress) StartTask(string, uint64) ProgressTask { return nopTask{} }

type nopTask struct{}

func (nopTask) Advance(uint64) {}
func (nopTask) Complete()      {}

// A Probe owns the state shared by the experiments of one measurement run:
// the worker region, the measurement array, and the run configuration.
// Experiments are methods on the Probe, so nothing leaks between separate
// runs.
type Probe struct {
	workers        int
	samples        int
	flushWithLoads bool
	progress       ProgressReporter

	region *parallel.Region
	array  Array
}

// NewProbe creates a Probe with one worker per available logical core, the
// default sample budget, and eviction by explicit flush where the hardware
// has one.
func NewProbe() *Probe {
	return &Probe{
		workers:        runtime.GOMAXPROCS(0),
		samples:        DefaultSamples,
		flushWithLoads: !target.HasFlush(),
		progress:       nopProgress{},
	}
}

// WithWorkers overrides the worker count.
func (p *Probe) WithWorkers(n int) *Probe {
	p.workers = n
	return p
}

// WithSamples overrides the per-position sample budget.
func (p *Probe) WithSamples(n int) *Probe {
	p.samples = n
	return p
}

// WithFlushWithLoads forces the bulk-read eviction fallback even when an
// explicit flush instruction is available.
func (p *Probe) WithFlushWithLoads(enable bool) *Probe {
	p.flushWithLoads = enable
	return p
}

// WithProgress attaches a progress reporter.
func (p *Probe) WithProgress(r ProgressReporter) *Probe {
	p.progress = r
	return p
}

// Workers returns the worker count of the run.
func (p *Probe) Workers() int {
	return p.workers
}

// Samples returns the per-position sample budget.
func (p *Probe) Samples() int {
	return p.samples
}

// Init prepares the run: it allocates the measurement array, then forks
// the workers once as a warm-up, with worker 0 writing every line of the
// array from its bound thread so the pages and lines start out homed
// there. Must be called before any Measure method. Misaligned allocation
// panics.
func (p *Probe) Init() {
	if p.region != nil {
		panic("probe already initialized")
	}
	if p.workers < 2 {
		panic("measurements need at least two workers")
	}

	p.region = parallel.NewRegion(p.workers)
	p.array = NewArray()

	p.region.Run(func(worker int) {
		if worker == 0 {
			Stores(p.array)
		}
	})
}

// logicalPosition ranks a worker relative to the reference worker, so
// roles are assigned independent of physical core numbering.
func logicalPosition(me, from, workers int) int {
	return (me + workers - from) % workers
}

// elapsedTicks returns the ticks since start as a statistics sample.
func elapsedTicks(start timing.TickCount) float64 {
	return float64(timing.Now().Sub(start).Ticks())
}

// delay busy-waits for the given number of ticks on the current core.
func delay(ticks int64) {
	end := timing.Now() + timing.TickCount(ticks)
	for timing.Now().Before(end) {
	}
}
