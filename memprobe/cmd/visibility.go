package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cachelab/memprobe/report"
)

var visibilityCmd = &cobra.Command{
	Use:   "visibility",
	Short: "Measure time until the last of n polling cores sees a store",
	Long: `visibility measures the elapsed time from one worker's store to
the last of n concurrently polling workers observing it. Observation
timestamps are mapped into the writer's clock frame with a ping-pong
clock-offset calibration, which assumes symmetric core-to-core latency.`,
	Run: func(cmd *cobra.Command, args []string) {
		allPositions := flagFrom < 0
		env := setupRun(allPositions)

		if allPositions {
			for from := 0; from < env.probe.Workers(); from++ {
				if from != 0 {
					report.WriteSeparator(os.Stdout)
				}
				runVisibility(env, from)
			}
			return
		}

		runVisibility(env, flagFrom)
	},
}

func runVisibility(env *runEnv, from int) {
	sts := env.probe.MeasureVisibility(from)
	report.ScaleToSeconds(sts)

	hdr := report.Header{
		Title:   "Visibility",
		Machine: fmt.Sprintf("From %d", from),
		Details: []string{env.machine},
		Column:  "Pollers",
	}

	skip := func(position int) bool { return position == 0 }

	report.WriteTable(os.Stdout, hdr, sts, 0, skip)
	env.record("visibility", "Store", "", from, sts, 0, skip)
}

func init() {
	visibilityCmd.Flags().IntVar(&flagFrom, "from", 0,
		"storing worker (negative = all positions)")

	rootCmd.AddCommand(visibilityCmd)
}
