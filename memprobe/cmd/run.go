package cmd

import (
	"errors"
	"fmt"

	"github.com/cachelab/memprobe/datarecording"
	"github.com/cachelab/memprobe/monitoring"
	"github.com/cachelab/memprobe/probe"
	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/target"
)

// A runEnv bundles the probe and the optional recording and monitoring
// attachments for one command invocation.
type runEnv struct {
	probe    *probe.Probe
	monitor  *monitoring.Monitor
	recorder datarecording.DataRecorder
	runID    string
	machine  string
}

// setupRun builds and initializes the probe from the persistent flags.
// allPositions quarters the sample budget, since the sweep is repeated
// once per reference position.
func setupRun(allPositions bool) *runEnv {
	samples := flagSamples
	if samples == 0 {
		samples = probe.DefaultSamples
	}
	if allPositions {
		samples /= 4
		if samples < 1 {
			samples = 1
		}
	}

	p := probe.NewProbe().WithSamples(samples)
	if flagWorkers > 0 {
		p.WithWorkers(flagWorkers)
	}
	if p.Workers() < 2 {
		exitOnErr(errors.New("measurements need more than one worker"))
	}
	if flagFlushWithLoads || envSet("MEMPROBE_FLUSH_WITH_LOADS") {
		p.WithFlushWithLoads(true)
	}
	exitOnErr(validateFrom(flagFrom, p.Workers()))

	env := &runEnv{
		probe:   p,
		machine: target.CPUModelName(),
	}

	if flagMonitor {
		env.monitor = monitoring.NewMonitor().
			WithPortNumber(flagMonitorPort).
			WithAutoOpen(flagOpenBrowser)
		env.monitor.StartServer()
		env.monitor.RegisterExperiment("probe", p)
		p.WithProgress(env.monitor)
	}

	if flagRecord {
		env.recorder = datarecording.New(flagDBPath)
		env.recorder.CreateTable(
			datarecording.ResultTable, datarecording.ResultRow{})
		env.runID = datarecording.NewRunID()
	}

	p.Init()

	return env
}

// record stores one scaled result table, if recording is on. Positions for
// which skip returns true are omitted, matching the printed table.
func (e *runEnv) record(
	experiment, operation, lineState string,
	reference int,
	sts []stats.Statistic,
	idxOffset int,
	skip func(position int) bool,
) {
	if e.recorder == nil {
		return
	}

	for i := range sts {
		position := i + idxOffset
		if skip != nil && skip(position) {
			continue
		}

		e.recorder.InsertData(datarecording.ResultTable,
			datarecording.RowFromStatistic(
				e.runID, experiment, e.machine, operation, lineState,
				reference, position, &sts[i]))
	}

	e.recorder.Flush()
}

// validateFrom rejects a reference worker outside the region. Negative
// values are the all-positions request, not a position.
func validateFrom(from, workers int) error {
	if from >= workers {
		return fmt.Errorf(
			"reference worker %d out of range: the run has %d workers",
			from, workers)
	}

	return nil
}

func parseOperation(name string) (probe.Operation, error) {
	switch name {
	case "load":
		return probe.Loads, nil
	case "store":
		return probe.Stores, nil
	case "atomic":
		return probe.AtomicIncs, nil
	default:
		return nil, fmt.Errorf(
			"unknown operation %q (want load, store, or atomic)", name)
	}
}

func operationLabel(name string) string {
	switch name {
	case "load":
		return "Load"
	case "store":
		return "Store"
	case "atomic":
		return "Atomic Inc"
	default:
		return name
	}
}

func lineStateLabel(modified bool) string {
	if modified {
		return "modified"
	}
	return "unmodified"
}
