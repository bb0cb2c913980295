//go:build !amd64 && !arm64

package timing

import "time"

// Without a hardware cycle counter we fall back to the OS monotonic clock.
// Resolution is far coarser than a real counter, so absolute results on
// such targets are indicative only.

var genericEpoch = time.Now()

func readCounter() int64 {
	return time.Since(genericEpoch).Nanoseconds()
}

func counterFrequency() uint64 {
	return 1e9
}

func counterName() string {
	return "time.Now"
}
