//go:build amd64

package timing

// rdtsc reads the time-stamp counter. Implemented in tickcount_amd64.s.
//
//go:noescape
func rdtsc() uint64

// readCounter returns the current TSC value. On every x86 part from the
// last fifteen years the TSC is invariant: it ticks at a constant rate
// regardless of frequency scaling, which is what makes it usable as a
// measurement clock.
func readCounter() int64 {
	return int64(rdtsc())
}

// counterFrequency is unknown on x86 without CPUID leaf parsing, so we
// report zero and let the wall-clock calibration determine the tick
// duration.
func counterFrequency() uint64 {
	return 0
}

func counterName() string {
	return "rdtsc"
}
