// Package scale maps between domain values and pixel positions.
package scale

import "math"

// Scale maps a domain interval onto a pixel range and back.
type Scale interface {
	Apply(v float64) float64
	Invert(px float64) float64
	Domain() (lo, hi float64)
	Range() (lo, hi float64)
}

// Linear is a linear scale. With Round set, Apply rounds to whole pixels.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
	Round  bool
}

// NewLinear returns a rounding linear scale over domain [0,1] and range [r0,r1].
func NewLinear(r0, r1 float64) *Linear {
	return &Linear{d0: 0, d1: 1, r0: r0, r1: r1, Round: true}
}

func (s *Linear) Domain() (float64, float64) { return s.d0, s.d1 }
func (s *Linear) Range() (float64, float64)  { return s.r0, s.r1 }

// SetDomain replaces the domain.
func (s *Linear) SetDomain(lo, hi float64) { s.d0, s.d1 = lo, hi }

// SetRange replaces the pixel range.
func (s *Linear) SetRange(lo, hi float64) { s.r0, s.r1 = lo, hi }

// Copy returns an independent copy of the scale.
func (s *Linear) Copy() *Linear {
	c := *s
	return &c
}

// Unrounded maps v without pixel rounding.
func (s *Linear) Unrounded(v float64) float64 {
	span := s.d1 - s.d0
	if span == 0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)*(s.r1-s.r0)/span
}

func (s *Linear) Apply(v float64) float64 {
	px := s.Unrounded(v)
	if s.Round {
		return math.Round(px)
	}
	return px
}

func (s *Linear) Invert(px float64) float64 {
	span := s.r1 - s.r0
	if span == 0 {
		return s.d0
	}
	return s.d0 + (px-s.r0)*(s.d1-s.d0)/span
}

// Ticks returns roughly count evenly spaced round values inside the domain.
func (s *Linear) Ticks(count int) []float64 {
	return linearTicks(s.d0, s.d1, count)
}

// Log is a clamped base-10 logarithmic scale. Values at or below zero map to
// the start of the range.
type Log struct {
	d0, d1 float64
	r0, r1 float64
	Round  bool
}

// NewLog returns a clamped, rounding log scale over domain [1,10].
func NewLog(r0, r1 float64) *Log {
	return &Log{d0: 1, d1: 10, r0: r0, r1: r1, Round: true}
}

func (s *Log) Domain() (float64, float64) { return s.d0, s.d1 }
func (s *Log) Range() (float64, float64)  { return s.r0, s.r1 }

// SetDomain replaces the domain. Both bounds must be positive.
func (s *Log) SetDomain(lo, hi float64) { s.d0, s.d1 = lo, hi }

// SetRange replaces the pixel range.
func (s *Log) SetRange(lo, hi float64) { s.r0, s.r1 = lo, hi }

func (s *Log) Apply(v float64) float64 {
	l0, l1 := math.Log10(s.d0), math.Log10(s.d1)
	t := 0.5
	if l1 != l0 {
		if v <= 0 {
			t = 0
		} else {
			t = (math.Log10(v) - l0) / (l1 - l0)
		}
	}
	t = math.Max(0, math.Min(1, t))
	px := s.r0 + t*(s.r1-s.r0)
	if s.Round {
		return math.Round(px)
	}
	return px
}

func (s *Log) Invert(px float64) float64 {
	span := s.r1 - s.r0
	if span == 0 {
		return s.d0
	}
	t := math.Max(0, math.Min(1, (px-s.r0)/span))
	l0, l1 := math.Log10(s.d0), math.Log10(s.d1)
	return math.Pow(10, l0+t*(l1-l0))
}

// Ticks returns the powers of ten inside the domain.
func (s *Log) Ticks() []float64 {
	var out []float64
	for p := math.Floor(math.Log10(s.d0)); p <= math.Ceil(math.Log10(s.d1)); p++ {
		v := math.Pow(10, p)
		if v >= s.d0 && v <= s.d1 {
			out = append(out, v)
		}
	}
	return out
}

func linearTicks(start, stop float64, count int) []float64 {
	if count < 1 || start == stop || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	inc := tickIncrement(start, stop, count)
	if inc <= 0 || math.IsInf(inc, 0) {
		return nil
	}
	var out []float64
	first := math.Ceil(start / inc)
	last := math.Floor(stop / inc)
	for i := first; i <= last; i++ {
		out = append(out, i*inc)
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= math.Sqrt(50):
		factor = 10
	case e >= math.Sqrt(10):
		factor = 5
	case e >= math.Sqrt(2):
		factor = 2
	}
	return factor * math.Pow(10, power)
}
