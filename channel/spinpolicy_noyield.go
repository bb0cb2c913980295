//go:build memprobe_noyield

package channel

// DefaultSpinPolicy is selected at build time. This build spins without
// yielding.
var DefaultSpinPolicy SpinPolicy = BusyPolicy{}

// UsingYield reports the build-time polling choice for run headers.
const UsingYield = false
