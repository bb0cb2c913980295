package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	var m *Monitor

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should track a sweep from start to completion", func() {
		task := m.StartTask("roundtrip", 100)

		Expect(m.progressBars).To(HaveLen(1))
		bar := m.progressBars[0]
		Expect(bar.Name).To(Equal("roundtrip"))
		Expect(bar.Total).To(Equal(uint64(100)))
		Expect(bar.ID).NotTo(BeEmpty())

		task.Advance(30)
		task.Advance(20)
		Expect(bar.Finished).To(Equal(uint64(50)))

		task.Complete()
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should only remove the completed bar", func() {
		t1 := m.StartTask("placement", 10)
		m.StartTask("sharing", 20)

		t1.Complete()

		Expect(m.progressBars).To(HaveLen(1))
		Expect(m.progressBars[0].Name).To(Equal("sharing"))
	})

	It("should serve the progress bars as JSON", func() {
		task := m.StartTask("visibility", 40)
		task.Advance(15)

		rec := httptest.NewRecorder()
		m.listProgressBars(rec, nil)

		var bars []struct {
			Name     string `json:"name"`
			Total    uint64 `json:"total"`
			Finished uint64 `json:"finished"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("visibility"))
		Expect(bars[0].Total).To(Equal(uint64(40)))
		Expect(bars[0].Finished).To(Equal(uint64(15)))
	})

	It("should serve the machine name", func() {
		rec := httptest.NewRecorder()
		m.machine(rec, nil)

		var rsp struct {
			Machine string `json:"machine"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Machine).NotTo(BeEmpty())
	})

	It("should list registered experiments", func() {
		m.RegisterExperiment("probe", struct{ Samples int }{100})

		rec := httptest.NewRecorder()
		m.listExperiments(rec, nil)

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"probe"}))
	})

	It("should reject duplicate experiment names", func() {
		m.RegisterExperiment("probe", 1)

		Expect(func() { m.RegisterExperiment("probe", 2) }).To(Panic())
	})

	It("should return 404 for an unknown experiment", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/experiment/none", nil)

		m.experimentDetails(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should fall back to a random port for privileged requests", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(BeZero())
	})

	It("should keep an explicitly allowed port", func() {
		m.WithPortNumber(8080)

		Expect(m.portNumber).To(Equal(8080))
	})
})
