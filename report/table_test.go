package report_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cachelab/memprobe/report"
	"github.com/cachelab/memprobe/stats"
)

func sampleStats(n int) []stats.Statistic {
	sts := make([]stats.Statistic, n)
	for i := range sts {
		sts[i].AddSample(float64(i+1) * 1e-9)
		sts[i].AddSample(float64(i+1) * 3e-9)
	}

	return sts
}

var _ = Describe("WriteTable", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("should print the title, machine line, and column header", func() {
		hdr := report.Header{
			Title:   "Half Round Trip",
			Machine: "From 0",
			Details: []string{"Test CPU", "Write", "Yield"},
			Column:  "Position",
		}

		report.WriteTable(&buf, hdr, sampleStats(3), 0, nil)
		out := buf.String()

		Expect(out).To(HavePrefix("Half Round Trip\n"))
		Expect(out).To(ContainSubstring("From 0, Test CPU, Write, Yield\n"))
		Expect(out).To(ContainSubstring(
			"Position,  Samples,       Min,      Mean,       Max,        SD\n"))
	})

	It("should print one row per statistic with the index offset applied", func() {
		report.WriteTable(&buf, report.Header{Column: "N"},
			sampleStats(3), 1, nil)

		Expect(buf.String()).To(ContainSubstring("\n     1, "))
		Expect(buf.String()).To(ContainSubstring("\n     3, "))
		Expect(buf.String()).NotTo(ContainSubstring("\n     0, "))
	})

	It("should omit skipped positions", func() {
		skip := func(position int) bool { return position == 1 }

		report.WriteTable(&buf, report.Header{Column: "N"},
			sampleStats(3), 0, skip)

		Expect(buf.String()).To(ContainSubstring("\n     0, "))
		Expect(buf.String()).NotTo(ContainSubstring("\n     1, "))
		Expect(buf.String()).To(ContainSubstring("\n     2, "))
	})

	It("should print the comment as a hash line", func() {
		hdr := report.Header{Comment: "Pinging core 3"}

		report.WriteTable(&buf, hdr, sampleStats(1), 0, nil)

		Expect(buf.String()).To(ContainSubstring("# Pinging core 3\n"))
	})

	It("should date the table", func() {
		report.WriteTable(&buf, report.Header{}, sampleStats(1), 0, nil)

		lines := strings.Split(buf.String(), "\n")
		Expect(len(lines)).To(BeNumerically(">=", 3))
		Expect(lines[2]).To(HavePrefix("# "))
	})
})

var _ = Describe("ScaleToSeconds", func() {
	It("should mark every statistic as scaled", func() {
		sts := make([]stats.Statistic, 2)
		sts[0].AddSample(1000)
		sts[1].AddSample(2000)

		report.ScaleToSeconds(sts)

		// A scaled statistic refuses further samples.
		Expect(func() { sts[0].AddSample(1) }).To(Panic())
		Expect(func() { sts[1].AddSample(1) }).To(Panic())
	})
})

var _ = Describe("WriteSeparator", func() {
	It("should print the experiment boundary marker", func() {
		var buf bytes.Buffer

		report.WriteSeparator(&buf)

		Expect(buf.String()).To(Equal("### NEW EXPERIMENT ###\n"))
	})
})
