//go:build arm64

package timing

// cntvct reads the virtual counter via CNTVCT_EL0.
// Implemented in tickcount_arm64.s.
//
//go:noescape
func cntvct() uint64

// cntfrq reads the counter frequency via CNTFRQ_EL0.
// Implemented in tickcount_arm64.s.
//
//go:noescape
func cntfrq() uint64

func readCounter() int64 {
	return int64(cntvct())
}

// counterFrequency returns the architectural counter frequency. arm64
// exposes it directly, so no wall-clock calibration is needed.
func counterFrequency() uint64 {
	return cntfrq()
}

func counterName() string {
	return "cntvct_el0"
}
