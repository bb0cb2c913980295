package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cachelab/memprobe/report"
)

var writesCmd = &cobra.Command{
	Use:   "writes",
	Short: "Measure time per write for runs of consecutive writes",
	Long: `writes times runs of 1..31 consecutive writes to uncached lines,
probing the depth of the write buffer. The per-call overhead is not
discounted, so read the trend across run lengths, not the absolute values.`,
	Run: func(cmd *cobra.Command, args []string) {
		env := setupRun(false)

		fmt.Fprintln(os.Stderr,
			"### BEWARE: the write timing is known to be unreliable ###")

		sts := env.probe.MeasureWrites()
		report.ScaleToSeconds(sts)

		hdr := report.Header{
			Title:   "Time for N writes",
			Machine: env.machine,
			Column:  "Number of writes",
		}

		skip := func(position int) bool { return position == 0 }

		report.WriteTable(os.Stdout, hdr, sts, 0, skip)
		env.record("writes", "Store", "uncached", 0, sts, 0, skip)
	},
}

func init() {
	rootCmd.AddCommand(writesCmd)
}
