// Package cmd provides the command-line interface for memprobe.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	flagSamples        int
	flagWorkers        int
	flagFrom           int
	flagFlushWithLoads bool
	flagRecord         bool
	flagDBPath         string
	flagMonitor        bool
	flagMonitorPort    int
	flagOpenBrowser    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "memprobe",
	Short: "memprobe measures memory-subsystem timing on this machine.",
	Long: `memprobe measures hardware memory-subsystem timing: load/store
latency, cache-line placement and sharing effects across cores, cross-core
store visibility, and half-round-trip signaling latency.

memory        read/write latency to uncached lines, local and remote
placement     operation latency with the line held in one other cache,
              moved over every other logical CPU
sharing       operation latency with the line held in n other caches
roundtrip     half the round-trip time of a one-line ping-pong
lineplacement half round-trip time depending on the cache line used
visibility    time until the last of n polling cores sees a store
writes        time per write for runs of consecutive writes

Where a command takes --from, a negative value measures every reference
position with a quarter of the sample budget each.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// Optional .env carries MEMPROBE_* settings for unattended runs.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagSamples, "samples", 0,
		"timed iterations per position (0 = default budget)")
	pf.IntVar(&flagWorkers, "workers", 0,
		"worker count (0 = one per logical CPU)")
	pf.BoolVar(&flagFlushWithLoads, "flush-with-loads", false,
		"evict with a bulk-read sweep even if a flush instruction exists")
	pf.BoolVar(&flagRecord, "record", false,
		"record result rows into a SQLite database")
	pf.StringVar(&flagDBPath, "db", "",
		"database path for --record (default: generated name)")
	pf.BoolVar(&flagMonitor, "monitor", false,
		"serve live run progress over HTTP")
	pf.IntVar(&flagMonitorPort, "monitor-port", 0,
		"port for --monitor (0 = random)")
	pf.BoolVar(&flagOpenBrowser, "open", false,
		"open the monitor in the local browser")
}

func exitOnErr(err error) {
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
		atexit.Exit(1)
	}
}

func envSet(name string) bool {
	return os.Getenv(name) != ""
}
