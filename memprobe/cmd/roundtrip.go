package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cachelab/memprobe/channel"
	"github.com/cachelab/memprobe/report"
)

var roundtripAtomic bool

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Measure half the round-trip time of a one-line ping-pong",
	Long: `roundtrip ping-pongs a single-line channel between the source
worker and every other worker, reporting half the per-hop round-trip time
as an estimate of one-way cache-coherence latency. --atomic publishes each
signal with an atomic increment instead of a plain store.`,
	Run: func(cmd *cobra.Command, args []string) {
		allPositions := flagFrom < 0
		env := setupRun(allPositions)

		if allPositions {
			for from := 0; from < env.probe.Workers(); from++ {
				if from != 0 {
					report.WriteSeparator(os.Stdout)
				}
				runRoundTrip(env, from)
			}
			return
		}

		runRoundTrip(env, flagFrom)
	},
}

func runRoundTrip(env *runEnv, from int) {
	sts := env.probe.MeasureRoundTrip(roundtripAtomic, from)
	report.ScaleToSeconds(sts)

	storeName := "Write"
	if roundtripAtomic {
		storeName = "Atomic"
	}
	yieldName := "No Yield"
	if channel.UsingYield {
		yieldName = "Yield"
	}

	hdr := report.Header{
		Title:   "Half Round Trip",
		Machine: fmt.Sprintf("From %d", from),
		Details: []string{env.machine, storeName, yieldName},
		Column:  "Position",
	}

	skip := func(position int) bool { return position == from }

	report.WriteTable(os.Stdout, hdr, sts, 0, skip)
	env.record("roundtrip", storeName, "", from, sts, 0, skip)
}

func init() {
	roundtripCmd.Flags().BoolVar(&roundtripAtomic, "atomic", false,
		"publish signals with an atomic increment")
	roundtripCmd.Flags().IntVar(&flagFrom, "from", 0,
		"source worker (negative = all positions)")

	rootCmd.AddCommand(roundtripCmd)
}
