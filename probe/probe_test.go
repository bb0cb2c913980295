package probe

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// Enough samples to exercise the protocols without making the suite slow.
const testSamples = 20

func newTestProbe(workers int) *Probe {
	p := NewProbe().
		WithWorkers(workers).
		WithSamples(testSamples)
	p.Init()

	return p
}

var _ = Describe("Probe", func() {
	It("should configure through the With chain", func() {
		p := NewProbe().WithWorkers(3).WithSamples(42)

		Expect(p.Workers()).To(Equal(3))
		Expect(p.Samples()).To(Equal(42))
	})

	It("should refuse to initialize twice", func() {
		p := newTestProbe(2)

		Expect(func() { p.Init() }).To(Panic())
	})

	It("should refuse a single worker", func() {
		p := NewProbe().WithWorkers(1)

		Expect(func() { p.Init() }).To(Panic())
	})

	It("should first-touch every line of the array during Init", func() {
		p := newTestProbe(2)

		for i := range p.array {
			Expect(p.array[i].Load()).To(Equal(uint32(1)))
		}
	})
})

var _ = Describe("MeasureMemory", func() {
	It("should fill all four result slots", func() {
		p := newTestProbe(2)

		sts := p.MeasureMemory()

		Expect(sts).To(HaveLen(NumMemoryResults))
		for i := range sts {
			Expect(sts[i].Count()).To(Equal(uint64(testSamples)))
			Expect(sts[i].Mean()).To(BeNumerically(">", 0.0))
		}
	})

	It("should work with the bulk-read eviction fallback", func() {
		p := NewProbe().
			WithWorkers(2).
			WithSamples(5).
			WithFlushWithLoads(true)
		p.Init()

		sts := p.MeasureMemory()

		for i := range sts {
			Expect(sts[i].Count()).To(Equal(uint64(5)))
			Expect(sts[i].Mean()).To(BeNumerically(">", 0.0))
		}
	})
})

var _ = Describe("MeasurePlacement", func() {
	It("should fill one slot per remote position", func() {
		p := newTestProbe(3)

		sts := p.MeasurePlacement(Loads, false, 0, false)

		Expect(sts).To(HaveLen(3))
		Expect(sts[0].Count()).To(BeZero())
		for placement := 1; placement < 3; placement++ {
			Expect(sts[placement].Count()).To(Equal(uint64(testSamples)))
			Expect(sts[placement].Mean()).To(BeNumerically(">", 0.0))
		}
	})

	It("should leave the reference worker's own slot empty", func() {
		p := newTestProbe(2)

		sts := p.MeasurePlacement(Stores, true, 1, true)

		Expect(sts[1].Count()).To(BeZero())
		Expect(sts[0].Count()).To(Equal(uint64(testSamples)))
	})
})

var _ = Describe("MeasureSharing", func() {
	It("should fill one slot per sharing count", func() {
		p := newTestProbe(4)

		sts := p.MeasureSharing(Loads, false, 0)

		Expect(sts).To(HaveLen(4))
		Expect(sts[0].Count()).To(BeZero())
		for sharing := 1; sharing < 4; sharing++ {
			Expect(sts[sharing].Count()).To(Equal(uint64(testSamples)))
			Expect(sts[sharing].Min()).To(BeNumerically(">=", 0.0))
			Expect(sts[sharing].Mean()).To(BeNumerically(">=", sts[sharing].Min()))
			Expect(sts[sharing].Max()).To(BeNumerically(">=", sts[sharing].Mean()))
			Expect(sts[sharing].StdDev()).To(BeNumerically(">=", 0.0))
		}
	})
})

var _ = Describe("MeasureRoundTrip", func() {
	It("should fill one slot per partner", func() {
		p := newTestProbe(2)

		sts := p.MeasureRoundTrip(false, 0)

		Expect(sts).To(HaveLen(2))
		Expect(sts[0].Count()).To(BeZero())
		Expect(sts[1].Count()).To(Equal(uint64(testSamples)))
		Expect(sts[1].Mean()).To(BeNumerically(">", 0.0))
	})

	It("should support the atomic channel variant", func() {
		p := newTestProbe(2)

		sts := p.MeasureRoundTrip(true, 1)

		Expect(sts[1].Count()).To(BeZero())
		Expect(sts[0].Count()).To(Equal(uint64(testSamples)))
	})

	It("should report a sane per-hop latency over a full budget", func() {
		p := NewProbe().WithWorkers(2).WithSamples(100)
		p.Init()

		sts := p.MeasureRoundTrip(false, 0)

		Expect(sts[1].Count()).To(Equal(uint64(100)))

		meanSeconds := sts[1].Mean() * timing.TickDuration()
		Expect(meanSeconds).To(BeNumerically(">", 0.0))
		// Generous sanity bound; a real hop is well under a microsecond.
		Expect(meanSeconds).To(BeNumerically("<", 10e-3))
	})
})

var _ = Describe("MeasureLinePlacement", func() {
	It("should reject a result slice of the wrong length", func() {
		p := newTestProbe(2)
		sts := make([]stats.Statistic, 3)

		Expect(func() { p.MeasureLinePlacement(1, sts) }).To(Panic())
	})

	It("should fill one slot per cache line and be reusable", func() {
		p := NewProbe().WithWorkers(2).WithSamples(5)
		p.Init()

		sts := make([]stats.Statistic, NumLineSlots)

		for run := 0; run < 2; run++ {
			p.MeasureLinePlacement(1, sts)

			for i := range sts {
				Expect(sts[i].Count()).To(Equal(uint64(5)))
				Expect(sts[i].Mean()).To(BeNumerically(">", 0.0))
			}
		}
	})
})

var _ = Describe("MeasureWrites", func() {
	It("should fill one slot per run length", func() {
		p := newTestProbe(2)

		sts := p.MeasureWrites()

		Expect(sts).To(HaveLen(MaxWriteRun))
		Expect(sts[0].Count()).To(BeZero())
		for d := 1; d < MaxWriteRun; d++ {
			Expect(sts[d].Count()).To(Equal(uint64(testSamples)))
		}
	})

	It("should measure from within the pinned region", func() {
		// Without an initialized region there is no pinned worker to
		// measure on, so the sweep must not run at all.
		p := NewProbe().WithWorkers(2).WithSamples(1)

		Expect(func() { p.MeasureWrites() }).To(Panic())
	})
})

var _ = Describe("CalibrateClockOffsets", func() {
	It("should define worker zero's offset as zero", func() {
		p := newTestProbe(2)

		offsets := p.CalibrateClockOffsets()

		Expect(offsets).To(HaveLen(2))
		Expect(offsets[0]).To(BeZero())
	})
})

var _ = Describe("MeasureVisibility", func() {
	It("should fill one slot per poller count", func() {
		p := newTestProbe(2)

		sts := p.MeasureVisibility(0)

		Expect(sts).To(HaveLen(2))
		Expect(sts[0].Count()).To(BeZero())

		// Samples with a non-positive translated interval are discarded,
		// so the count is bounded by the budget rather than equal to it.
		Expect(sts[1].Count()).To(BeNumerically("<=", uint64(testSamples)))
		if sts[1].Count() > 0 {
			Expect(sts[1].Min()).To(BeNumerically(">", 0.0))
		}
	})
})

var _ = Describe("Progress reporting", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report one task per sweep with the full budget", func() {
		reporter := NewMockProgressReporter(mockCtrl)
		task := NewMockProgressTask(mockCtrl)

		reporter.EXPECT().
			StartTask("roundtrip", uint64(testSamples)).
			Return(task)
		task.EXPECT().Advance(uint64(testSamples))
		task.EXPECT().Complete()

		p := NewProbe().
			WithWorkers(2).
			WithSamples(testSamples).
			WithProgress(reporter)
		p.Init()

		p.MeasureRoundTrip(false, 0)
	})
})
