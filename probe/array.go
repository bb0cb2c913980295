package probe

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cachelab/memprobe/target"
)

// ArraySize is the number of counters in the measurement array. With one
// counter per 64-byte line this is 16 KiB of data, small enough to sit in
// an L1 data cache.
const ArraySize = 256

// A Counter is one cache-line-aligned 32-bit cell. The padding guarantees
// that touching one counter touches exactly one line and that neighbouring
// counters never false-share.
type Counter struct {
	value atomic.Uint32
	_     [target.CacheLineSize - 4]byte
}

// Counters must tile cache lines exactly. Fails to compile if the layout
// drifts.
const _ uintptr = -(unsafe.Sizeof(Counter{}) % target.CacheLineSize)

// Load reads the counter.
func (c *Counter) Load() uint32 {
	return c.value.Load()
}

// Store writes the counter.
func (c *Counter) Store(v uint32) {
	c.value.Store(v)
}

// Inc atomically increments the counter.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// An Array is the fixed-size measurement array the timed operations sweep
// over. Its base address is cache-line aligned by construction; a
// misaligned array would silently invalidate every measurement, so the
// alignment is re-checked at allocation and violation is fatal.
type Array []Counter

// NewArray allocates a zeroed, cache-line-aligned measurement Array.
func NewArray() Array {
	buf := target.AllocAligned(
		ArraySize*unsafe.Sizeof(Counter{}), target.CacheLineSize)

	base := unsafe.Pointer(&buf[0])
	target.MustBeAligned(base, target.CacheLineSize)

	return unsafe.Slice((*Counter)(base), ArraySize)
}

// newBroadcastLine allocates a single Counter on its own cache line, used
// as the store-visibility broadcast flag.
func newBroadcastLine() *Counter {
	buf := target.AllocAligned(
		unsafe.Sizeof(Counter{}), target.CacheLineSize)

	return (*Counter)(unsafe.Pointer(&buf[0]))
}

// DefaultEvictionBytes sizes the bulk-read eviction buffer. Reading 64 MiB
// displaces the working set from every cache level of interest on
// commodity parts.
const DefaultEvictionBytes = 64 << 20

// The eviction buffer is a deliberate process-wide singleton: it exists
// only to displace cache contents, it must not migrate or be reallocated
// between samples, and it is never freed.
var (
	evictionBytes uintptr = DefaultEvictionBytes
	evictionOnce  sync.Once
	evictionBuf   []Counter
)

func evictionArray() []Counter {
	evictionOnce.Do(func() {
		n := int(evictionBytes / unsafe.Sizeof(Counter{}))
		buf := target.AllocAligned(
			uintptr(n)*unsafe.Sizeof(Counter{}), target.CacheLineSize)

		base := unsafe.Pointer(&buf[0])
		target.MustBeAligned(base, target.CacheLineSize)

		evictionBuf = unsafe.Slice((*Counter)(base), n)
	})

	return evictionBuf
}

// flushWithLoads displaces the caches of the current core by reading a
// buffer much larger than the largest cache level of interest. Portable
// fallback for targets without an explicit flush instruction.
func flushWithLoads() {
	buf := evictionArray()
	for i := range buf {
		buf[i].Load()
	}
}

// flushArray evicts the measurement array from the current core's caches,
// with the explicit flush instruction when available and the bulk-read
// sweep otherwise.
func (p *Probe) flushArray(a Array) {
	if p.flushWithLoads {
		flushWithLoads()
		return
	}

	for i := range a {
		target.FlushAddress(unsafe.Pointer(&a[i]))
	}
}
