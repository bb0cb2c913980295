package timing_test

import (
	"runtime"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cachelab/memprobe/timing"
)

var _ = Describe("TickCount", func() {
	It("should not go backwards on one core", func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		prev := timing.Now()
		for i := 0; i < 100000; i++ {
			cur := timing.Now()
			Expect(prev.Before(cur) || prev == cur).To(BeTrue())
			prev = cur
		}
	})

	It("should advance over a sleep", func() {
		t0 := timing.Now()
		time.Sleep(time.Millisecond)
		t1 := timing.Now()

		Expect(t1.Sub(t0).Ticks()).To(BeNumerically(">", 0))
	})

	It("should order timestamps with Before and Later", func() {
		a := timing.TickCount(100)
		b := timing.TickCount(200)

		Expect(a.Before(b)).To(BeTrue())
		Expect(b.Before(a)).To(BeFalse())
		Expect(a.Later(b)).To(Equal(b))
		Expect(b.Later(a)).To(Equal(b))
		Expect(b.Sub(a).Ticks()).To(Equal(int64(100)))
	})

	It("should name its counter source", func() {
		Expect(timing.CounterName()).NotTo(BeEmpty())
	})
})

var _ = Describe("TickDuration", func() {
	It("should be a plausible tick length", func() {
		d := timing.TickDuration()

		// Anything from a 1 ns OS clock down to a >100 GHz cycle counter
		// would still land in this window.
		Expect(d).To(BeNumerically(">", 0.0))
		Expect(d).To(BeNumerically("<", 1e-6))
	})

	It("should be stable across calls", func() {
		Expect(timing.TickDuration()).To(Equal(timing.TickDuration()))
	})

	It("should convert intervals to seconds", func() {
		i := timing.TickInterval(1000)

		Expect(i.Seconds()).
			To(BeNumerically("~", 1000*timing.TickDuration(), 1e-18))
	})
})
