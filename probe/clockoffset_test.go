package probe

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cachelab/memprobe/timing"
)

var _ = Describe("midpointOffset", func() {
	It("should be zero for synchronized clocks and symmetric latency", func() {
		// Ping sent at 1000, one-way latency 50 in both directions.
		start := timing.TickCount(1000)
		remote := int64(1050)
		end := timing.TickCount(1100)

		Expect(midpointOffset(start, end, remote)).To(Equal(0.0))
	})

	It("should recover a constant clock skew", func() {
		// Remote clock runs 7000 ticks behind, same exchange timing.
		start := timing.TickCount(1000)
		remote := int64(1050 - 7000)
		end := timing.TickCount(1100)

		Expect(midpointOffset(start, end, remote)).To(Equal(7000.0))
	})

	It("should be biased by half of any latency asymmetry", func() {
		// Synchronized clocks, 40 ticks out, 60 ticks back. The remote
		// timestamp sits before the midpoint, so the estimate reports a
		// spurious positive offset of half the difference.
		start := timing.TickCount(1000)
		remote := int64(1040)
		end := timing.TickCount(1100)

		Expect(midpointOffset(start, end, remote)).To(Equal(10.0))
	})
})

var _ = Describe("longestInterval", func() {
	It("should span from the write to the latest observation", func() {
		times := []timing.TickCount{100, 150, 300, 220}

		Expect(longestInterval(times, 3).Ticks()).To(Equal(int64(200)))
	})

	It("should include the highest-ranked poller", func() {
		times := []timing.TickCount{100, 110, 120, 500}

		Expect(longestInterval(times, 3).Ticks()).To(Equal(int64(400)))
	})

	It("should ignore entries beyond the poller count", func() {
		times := []timing.TickCount{100, 150, 9999}

		Expect(longestInterval(times, 1).Ticks()).To(Equal(int64(50)))
	})

	It("should go negative when a translated observation precedes the write", func() {
		times := []timing.TickCount{100, 90}

		Expect(longestInterval(times, 1).Ticks()).To(Equal(int64(-10)))
	})
})
