package channel

import (
	"unsafe"

	"github.com/cachelab/memprobe/target"
)

// SlotsPerPage is the number of distinct cache lines in one page, and so
// the number of slots a page of channels provides.
const SlotsPerPage = target.PageSize / target.CacheLineSize

// NewSlotPage allocates one page-aligned page of zeroed Slots, one per
// cache line. Walking a channel across them samples every possible
// cache-directory home within the page, which is what the line-placement
// experiment needs.
func NewSlotPage() []Slot {
	buf := target.AllocAligned(target.PageSize, target.PageSize)

	base := unsafe.Pointer(&buf[0])
	target.MustBeAligned(base, target.PageSize)

	return unsafe.Slice((*Slot)(base), SlotsPerPage)
}
