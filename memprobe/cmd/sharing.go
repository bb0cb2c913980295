package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cachelab/memprobe/probe"
	"github.com/cachelab/memprobe/report"
)

var (
	sharingOp       string
	sharingModified bool
)

var sharingCmd = &cobra.Command{
	Use:   "sharing",
	Short: "Measure operation latency with the line held in n other caches",
	Long: `sharing times the operation with the cache line concurrently held
by 1 up to workers-1 other cores, showing how the latency depends on the
degree of sharing.`,
	Run: func(cmd *cobra.Command, args []string) {
		op, err := parseOperation(sharingOp)
		exitOnErr(err)

		allPositions := flagFrom < 0
		env := setupRun(allPositions)

		if allPositions {
			for from := 0; from < env.probe.Workers(); from++ {
				if from != 0 {
					report.WriteSeparator(os.Stdout)
				}
				runSharing(env, op, from)
			}
			return
		}

		runSharing(env, op, flagFrom)
	},
}

func runSharing(env *runEnv, op probe.Operation, from int) {
	sts := env.probe.MeasureSharing(op, sharingModified, from)
	report.ScaleToSeconds(sts)

	hdr := report.Header{
		Title:   "Sharing",
		Machine: env.machine,
		Details: []string{
			operationLabel(sharingOp),
			lineStateLabel(sharingModified),
			fmt.Sprintf("Active %d", from),
		},
		Column: "Sharing",
	}

	// Position 0 would be "no other sharer", which the protocol never
	// measures.
	skip := func(position int) bool { return position == 0 }

	report.WriteTable(os.Stdout, hdr, sts, 0, skip)
	env.record("sharing", operationLabel(sharingOp),
		lineStateLabel(sharingModified), from, sts, 0, skip)
}

func init() {
	sharingCmd.Flags().StringVar(&sharingOp, "op", "load",
		"operation under test: load, store, or atomic")
	sharingCmd.Flags().BoolVar(&sharingModified, "modified", false,
		"put the line in modified state before measuring")
	sharingCmd.Flags().IntVar(&flagFrom, "from", 0,
		"measuring worker (negative = all positions)")

	rootCmd.AddCommand(sharingCmd)
}
