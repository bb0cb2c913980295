// Package timing reads the free-running per-core cycle counter and
// calibrates its tick duration so raw counts can be converted to seconds.
//
// Counter values from different cores are only comparable after the
// clock-offset calibration in the probe package has run; within one core
// they are monotonically non-decreasing.
package timing

import (
	"sync"
	"time"
)

// A TickCount is one timestamp read from the cycle counter. It is owned on
// the stack at each sample point and never shared between workers.
type TickCount int64

// A TickInterval is the difference between two TickCounts on the same core
// (or on offset-corrected cores).
type TickInterval int64

// Now samples the cycle counter of the core the caller is running on.
func Now() TickCount {
	return TickCount(readCounter())
}

// Before reports whether t was sampled before o.
func (t TickCount) Before(o TickCount) bool {
	return t < o
}

// Later returns the later of t and o.
func (t TickCount) Later(o TickCount) TickCount {
	if o > t {
		return o
	}
	return t
}

// Sub returns the interval from o to t.
func (t TickCount) Sub(o TickCount) TickInterval {
	return TickInterval(t - o)
}

// Ticks returns the interval as a raw tick count.
func (i TickInterval) Ticks() int64 {
	return int64(i)
}

// Seconds converts the interval using the calibrated tick duration.
func (i TickInterval) Seconds() float64 {
	return float64(i) * TickDuration()
}

var (
	calibrateOnce sync.Once
	tickDuration  float64
)

// TickDuration returns the duration of one counter tick in seconds. The
// value is calibrated once per process: from the architectural counter
// frequency where the hardware reports one, otherwise by timing the counter
// against the OS clock.
func TickDuration() float64 {
	calibrateOnce.Do(func() {
		if f := counterFrequency(); f != 0 {
			tickDuration = 1.0 / float64(f)
			return
		}
		tickDuration = calibrateTickDuration()
	})

	return tickDuration
}

// CounterName identifies the counter source for run headers.
func CounterName() string {
	return counterName()
}

// calibrateTickDuration times the counter against the wall clock. The
// window is long enough that scheduler noise at the two sample points is
// negligible against the elapsed time.
func calibrateTickDuration() float64 {
	const window = 100 * time.Millisecond

	best := 0.0
	for round := 0; round < 3; round++ {
		w0 := time.Now()
		t0 := Now()
		time.Sleep(window)
		t1 := Now()
		w1 := time.Now()

		ticks := t1.Sub(t0).Ticks()
		if ticks <= 0 {
			continue
		}

		perTick := w1.Sub(w0).Seconds() / float64(ticks)
		// The shortest estimate carries the least overhead.
		if best == 0 || perTick < best {
			best = perTick
		}
	}

	if best == 0 {
		// A counter that never advances leaves nothing to measure with.
		panic("cycle counter did not advance during calibration")
	}

	return best
}
