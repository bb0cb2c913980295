package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cachelab/memprobe/report"
)

var memoryLabels = [...]string{"Load", "Store", "Remote Load", "Remote Store"}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Measure read/write latency to lines not in any cache",
	Run: func(cmd *cobra.Command, args []string) {
		env := setupRun(false)

		sts := env.probe.MeasureMemory()
		report.ScaleToSeconds(sts)

		fmt.Printf("Memory Latency\n"+
			"%s\n"+
			"# %s\n"+
			"Operation, Samples,       Min,      Mean,       Max,        SD\n",
			env.machine, time.Now().Format(time.ANSIC))
		for i, label := range memoryLabels {
			fmt.Printf("%s, %s\n", label, sts[i].Format('s'))
		}

		if env.recorder != nil {
			for i := range sts {
				env.record("memory", memoryLabels[i], "uncached", 0,
					sts[i:i+1], i, nil)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(memoryCmd)
}
