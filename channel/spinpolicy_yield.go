//go:build !memprobe_noyield

package channel

// DefaultSpinPolicy is selected at build time. The default build yields
// between polls; build with -tags memprobe_noyield to spin flat out.
var DefaultSpinPolicy SpinPolicy = YieldPolicy{}

// UsingYield reports the build-time polling choice for run headers.
const UsingYield = true
