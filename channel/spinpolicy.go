package channel

import "runtime"

// A SpinPolicy decides what a waiting side does between polls of the signal
// slot. Yielding trades a little observed latency for not burning a full
// core while blocked; pure spinning gives the lowest wake-up latency.
type SpinPolicy interface {
	// Pause is called once per unsuccessful poll.
	Pause()
}

// YieldPolicy cooperatively yields the processor between polls.
type YieldPolicy struct{}

// Pause yields to the scheduler.
func (YieldPolicy) Pause() {
	runtime.Gosched()
}

// BusyPolicy spins without yielding.
type BusyPolicy struct{}

// Pause does nothing.
func (BusyPolicy) Pause() {}
