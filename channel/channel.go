// Package channel provides the single-slot, spin-polled signaling primitive
// the measurement protocols are built from.
//
// A channel is strictly single-producer/single-consumer: each measurement
// phase statically assigns exactly one releasing worker and one waiting
// worker per channel instance. The waiting side spin-polls the shared slot
// rather than blocking in the OS scheduler, because scheduler blocking
// would inject unbounded, unmeasured latency into the very interval being
// timed. There are no timeouts: a wait is bounded only by the peer making
// progress, which the orchestrator guarantees by construction.
//
// Go's sync/atomic operations are sequentially consistent, which subsumes
// the release ordering the writer needs (payload visible before the flag
// transition) and the acquire ordering the reader needs.
package channel

import (
	"sync/atomic"
	"unsafe"

	"github.com/cachelab/memprobe/target"
)

// A Slot is one cache-line-sized signal location. Padding keeps unrelated
// data off the line so the only coherence traffic on it is the handshake
// under measurement.
type Slot struct {
	value atomic.Uint32
	_     [target.CacheLineSize - 4]byte
}

// Slots must tile cache lines exactly so a page of them visits every line
// once. This fails to compile if the layout drifts.
const _ uintptr = -(unsafe.Sizeof(Slot{}) % target.CacheLineSize)

// Load returns the current slot value.
func (s *Slot) Load() uint32 {
	return s.value.Load()
}

// Store sets the slot value.
func (s *Slot) Store(v uint32) {
	s.value.Store(v)
}

// A SyncChannel is a payload-free handshake over one Slot. Release marks
// the slot full once the previous signal has been consumed; Wait blocks
// until a not-yet-consumed signal is observed and consumes it.
type SyncChannel struct {
	slot   *Slot
	policy SpinPolicy
}

// NewSyncChannel creates a SyncChannel on its own cache line, using the
// build-selected spin policy.
func NewSyncChannel() *SyncChannel {
	return NewSyncChannelOnSlot(new(Slot))
}

// NewSyncChannelOnSlot creates a SyncChannel over caller-owned slot
// storage. The line-placement experiment uses this to walk a channel
// across every cache line of a page.
func NewSyncChannelOnSlot(slot *Slot) *SyncChannel {
	return &SyncChannel{slot: slot, policy: DefaultSpinPolicy}
}

// WithSpinPolicy overrides the polling policy. Construction-time only.
func (c *SyncChannel) WithSpinPolicy(p SpinPolicy) *SyncChannel {
	c.policy = p
	return c
}

// Release publishes a new generation of the signal. It first waits for the
// reader to have consumed the previous one, so back-to-back releases
// ping-pong the line once per handshake.
func (c *SyncChannel) Release() {
	for c.slot.Load() != 0 {
		c.policy.Pause()
	}
	c.slot.Store(1)
}

// Wait blocks until an unconsumed signal is observed, then consumes it.
func (c *SyncChannel) Wait() {
	for c.slot.Load() == 0 {
		c.policy.Pause()
	}
	c.slot.Store(0)
}

// WaitFor blocks until the slot reports the given state. The writer uses
// WaitFor(false) to observe the reader's final consumption.
func (c *SyncChannel) WaitFor(full bool) {
	var want uint32
	if full {
		want = 1
	}
	for c.slot.Load() != want {
		c.policy.Pause()
	}
}

// An AtomicSyncChannel is a SyncChannel whose release is an atomic
// increment rather than a plain store, so round-trip measurements can
// compare the cost of the two publication styles.
type AtomicSyncChannel struct {
	slot   *Slot
	policy SpinPolicy
}

// NewAtomicSyncChannel creates an AtomicSyncChannel on its own cache line.
func NewAtomicSyncChannel() *AtomicSyncChannel {
	return &AtomicSyncChannel{slot: new(Slot), policy: DefaultSpinPolicy}
}

// Release publishes a new signal generation with an atomic increment.
func (c *AtomicSyncChannel) Release() {
	for c.slot.Load() != 0 {
		c.policy.Pause()
	}
	c.slot.value.Add(1)
}

// Wait blocks until an unconsumed signal is observed, then consumes it.
func (c *AtomicSyncChannel) Wait() {
	for c.slot.Load() == 0 {
		c.policy.Pause()
	}
	c.slot.Store(0)
}

// WaitFor blocks until the slot reports the given state.
func (c *AtomicSyncChannel) WaitFor(full bool) {
	var want uint32
	if full {
		want = 1
	}
	for c.slot.Load() != want {
		c.policy.Pause()
	}
}
