package channel

import (
	"sync/atomic"

	"github.com/cachelab/memprobe/target"
)

// A PayloadChannel carries one int64 per handshake. Flag and payload share
// a cache line deliberately: the payload travels to the reader in the same
// coherence transfer that publishes the flag. The atomic flag store is the
// publication point, so the plain payload write is visible to the reader
// once it observes the flag transition.
type PayloadChannel struct {
	flag    atomic.Uint32
	_       [4]byte
	payload int64
	_       [target.CacheLineSize - 16]byte
	policy  SpinPolicy
}

// NewPayloadChannel creates a PayloadChannel with the build-selected spin
// policy.
func NewPayloadChannel() *PayloadChannel {
	return &PayloadChannel{policy: DefaultSpinPolicy}
}

// Send publishes one value, blocking until the previous one was consumed.
func (c *PayloadChannel) Send(v int64) {
	for c.flag.Load() != 0 {
		c.policy.Pause()
	}
	c.payload = v
	c.flag.Store(1)
}

// Recv blocks for the next value and consumes it.
func (c *PayloadChannel) Recv() int64 {
	for c.flag.Load() == 0 {
		c.policy.Pause()
	}
	v := c.payload
	c.flag.Store(0)
	return v
}

// Release publishes a signal without a payload. The clock-offset protocol
// mixes payload-free pings with payload replies on a channel pair.
func (c *PayloadChannel) Release() {
	for c.flag.Load() != 0 {
		c.policy.Pause()
	}
	c.flag.Store(1)
}

// Wait blocks until an unconsumed signal is observed, then consumes it.
func (c *PayloadChannel) Wait() {
	for c.flag.Load() == 0 {
		c.policy.Pause()
	}
	c.flag.Store(0)
}
