package datarecording

import "github.com/cachelab/memprobe/stats"

// ResultTable is the table name the measurement commands record into.
const ResultTable = "results"

// A ResultRow is one (experiment, position) result. All timing fields are
// in seconds; Position is the experiment parameter the row belongs to
// (remote worker, sharing count, write-run length, or cache-line index).
type ResultRow struct {
	Run         string
	Experiment  string
	Machine     string
	Operation   string
	LineState   string
	Reference   int
	Position    int
	Samples     int64
	MinSeconds  float64
	MeanSeconds float64
	MaxSeconds  float64
	SDSeconds   float64
}

// RowFromStatistic builds a ResultRow from one scaled Statistic.
func RowFromStatistic(
	run, experiment, machine, operation, lineState string,
	reference, position int,
	s *stats.Statistic,
) ResultRow {
	return ResultRow{
		Run:         run,
		Experiment:  experiment,
		Machine:     machine,
		Operation:   operation,
		LineState:   lineState,
		Reference:   reference,
		Position:    position,
		Samples:     int64(s.Count()),
		MinSeconds:  s.Min(),
		MeanSeconds: s.Mean(),
		MaxSeconds:  s.Max(),
		SDSeconds:   s.StdDev(),
	}
}
