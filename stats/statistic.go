// Package stats accumulates running summary statistics over a stream of
// timing samples.
package stats

import (
	"fmt"
	"math"
)

// A Statistic aggregates one stream of samples into count, min, max, mean,
// and standard deviation. The mean and variance are maintained with
// Welford's online update, which stays numerically stable over tens of
// thousands of large-magnitude cycle counts where a naive sum of squares
// loses precision.
//
// Scaling is a terminal operation: once Scale or ScaleDown has been applied
// the aggregate is read-only and AddSample panics. Reset returns the
// Statistic to the empty state for reuse across sweep iterations.
type Statistic struct {
	count    uint64
	min, max float64
	mean, m2 float64
	scaled   bool
}

// AddSample folds one sample into the aggregate.
func (s *Statistic) AddSample(v float64) {
	if s.scaled {
		panic("cannot add samples to a scaled statistic; call Reset first")
	}

	if s.count == 0 {
		s.min, s.max = v, v
	} else {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}

	s.count++
	oldMean := s.mean
	s.mean += (v - oldMean) / float64(s.count)
	s.m2 += (v - oldMean) * (v - s.mean)
}

// Count returns the number of accumulated samples.
func (s *Statistic) Count() uint64 {
	return s.count
}

// Min returns the smallest sample seen.
func (s *Statistic) Min() float64 {
	return s.min
}

// Max returns the largest sample seen.
func (s *Statistic) Max() float64 {
	return s.max
}

// Mean returns the running mean.
func (s *Statistic) Mean() float64 {
	return s.mean
}

// StdDev returns the sample standard deviation.
func (s *Statistic) StdDev() float64 {
	if s.count < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.count-1))
}

// Scale multiplies min, mean, max, and standard deviation by factor. It
// must be applied exactly once, after accumulation completes; rescaling a
// partially filled aggregate would corrupt the deviation term.
func (s *Statistic) Scale(factor float64) {
	s.min *= factor
	s.max *= factor
	s.mean *= factor
	s.m2 *= factor * factor
	s.scaled = true
}

// ScaleDown divides all reported quantities by divisor. Used to convert a
// whole-array or multi-hop measurement into a per-element figure.
func (s *Statistic) ScaleDown(divisor float64) {
	s.Scale(1.0 / divisor)
}

// Reset returns the Statistic to the zero-sample state.
func (s *Statistic) Reset() {
	*s = Statistic{}
}

// Format renders "count, min, mean, max, sd" with the values expressed in
// the given unit. Unit 's' applies engineering prefixes; 'T' prints raw
// ticks.
func (s *Statistic) Format(unit byte) string {
	return fmt.Sprintf("%8d, %9s, %9s, %9s, %9s",
		s.count,
		formatValue(s.min, unit),
		formatValue(s.mean, unit),
		formatValue(s.max, unit),
		formatValue(s.StdDev(), unit))
}

var prefixes = []struct {
	scale  float64
	symbol string
}{
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
}

func formatValue(v float64, unit byte) string {
	if unit != 's' {
		return fmt.Sprintf("%.2f %c", v, unit)
	}

	mag := math.Abs(v)
	for _, p := range prefixes {
		if mag >= p.scale || p.scale == 1e-12 {
			return fmt.Sprintf("%.2f %ss", v/p.scale, p.symbol)
		}
	}

	return fmt.Sprintf("%.2f s", v)
}
