package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cachelab/memprobe/probe"
	"github.com/cachelab/memprobe/report"
)

var (
	placementOp        string
	placementModified  bool
	placementAllocZero bool
)

var placementCmd = &cobra.Command{
	Use:   "placement",
	Short: "Measure operation latency with the line held in one other cache",
	Long: `placement times the operation with the cache line held by a single
remote worker, moving that remote role over every other logical CPU. By
default the measurement array is allocated in the measuring worker;
--alloc-zero allocates it in worker 0 instead, so the line's home stays
fixed while the measuring position moves.`,
	Run: func(cmd *cobra.Command, args []string) {
		op, err := parseOperation(placementOp)
		exitOnErr(err)

		allPositions := flagFrom < 0
		env := setupRun(allPositions)

		if allPositions {
			for from := 0; from < env.probe.Workers(); from++ {
				if from != 0 {
					report.WriteSeparator(os.Stdout)
				}
				runPlacement(env, op, from)
			}
			return
		}

		runPlacement(env, op, flagFrom)
	},
}

func runPlacement(env *runEnv, op probe.Operation, from int) {
	sts := env.probe.MeasurePlacement(
		op, placementModified, from, placementAllocZero)
	report.ScaleToSeconds(sts)

	alloc := "allocate(n)"
	if placementAllocZero {
		alloc = "allocate(0)"
	}

	hdr := report.Header{
		Title:   "Placement",
		Machine: env.machine,
		Details: []string{
			operationLabel(placementOp),
			lineStateLabel(placementModified),
			alloc,
			fmt.Sprintf("Active %d", from),
		},
		Column: "Placement",
	}

	skip := func(position int) bool { return position == from }

	report.WriteTable(os.Stdout, hdr, sts, 0, skip)
	env.record("placement", operationLabel(placementOp),
		lineStateLabel(placementModified), from, sts, 0, skip)
}

func init() {
	placementCmd.Flags().StringVar(&placementOp, "op", "load",
		"operation under test: load, store, or atomic")
	placementCmd.Flags().BoolVar(&placementModified, "modified", false,
		"put the line in modified state before measuring")
	placementCmd.Flags().BoolVar(&placementAllocZero, "alloc-zero", false,
		"allocate the measurement array in worker 0")
	placementCmd.Flags().IntVar(&flagFrom, "from", 0,
		"measuring worker (negative = all positions)")

	rootCmd.AddCommand(placementCmd)
}
