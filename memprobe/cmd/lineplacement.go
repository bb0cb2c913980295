package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cachelab/memprobe/probe"
	"github.com/cachelab/memprobe/report"
	"github.com/cachelab/memprobe/stats"
)

// linePlacementRuns is how often the sweep is repeated and printed, so
// run-to-run consistency is visible in one output.
const linePlacementRuns = 5

var lineplacementCmd = &cobra.Command{
	Use:   "lineplacement",
	Short: "Measure half round-trip time for every cache line in a page",
	Long: `lineplacement repeats the round-trip measurement once per distinct
cache line within one page, holding the worker pair fixed. Lines hash to
different cache-directory homes, so a spread between lines reveals
directory placement effects; the sweep runs five times so consistency
across runs is visible.`,
	Run: func(cmd *cobra.Command, args []string) {
		env := setupRun(false)
		other := env.probe.Workers() - 1 // arbitrary fixed partner

		sts := make([]stats.Statistic, probe.NumLineSlots)

		// One warm-up sweep; its data is discarded.
		env.probe.MeasureLinePlacement(other, sts)

		for run := 0; run < linePlacementRuns; run++ {
			env.probe.MeasureLinePlacement(other, sts)
			report.ScaleToSeconds(sts)

			if run != 0 {
				report.WriteSeparator(os.Stdout)
			}

			hdr := report.Header{
				Title:   "Line Placement (half round trip)",
				Machine: fmt.Sprintf("%s,run %d", env.machine, run+1),
				Comment: fmt.Sprintf("Pinging core %d", other),
				Column:  "Line Index",
			}

			report.WriteTable(os.Stdout, hdr, sts, 0, nil)
			env.record("lineplacement", "Write", "", other, sts, 0, nil)
		}
	},
}

func init() {
	rootCmd.AddCommand(lineplacementCmd)
}
