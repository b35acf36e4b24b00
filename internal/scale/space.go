package scale

import "math"

// Axis names one of the scales in a Space.
type Axis int

const (
	AxisX Axis = iota
	AxisY0
	AxisY1
	AxisEnergyX
	AxisEnergyOverlay
	AxisEnergyStacked
)

// Space owns the scale set of one chart: the zoomed x-axis and its
// baseline, one or two y-axes, and the energy axes.
type Space struct {
	X  *Linear
	X0 *Linear
	Y  [2]*Linear
	XE *Linear
	YE *Log
	YS *Log

	dims   int
	width  float64
	height float64
	t      Transform
}

// NewSpace creates a space with dims y-axes (1 or 2).
func NewSpace(dims int) *Space {
	if dims != 2 {
		dims = 1
	}
	s := &Space{
		X:    NewLinear(0, 1),
		X0:   NewLinear(0, 1),
		XE:   NewLinear(0, 1),
		YE:   NewLog(0, 1),
		YS:   NewLog(0, 1),
		dims: dims,
		t:    Identity,
	}
	for j := range s.Y {
		s.Y[j] = NewLinear(1, 0)
	}
	return s
}

// Dims returns the number of y-axes.
func (s *Space) Dims() int { return s.dims }

// Size returns the plotting area in pixels.
func (s *Space) Size() (w, h float64) { return s.width, s.height }

// Transform returns the current (constrained) zoom transform.
func (s *Space) Transform() Transform { return s.t }

// SetRanges fixes every range to a plotting area of w by h pixels.
func (s *Space) SetRanges(w, h float64) {
	s.width, s.height = w, h
	s.X.SetRange(0, w)
	s.X0.SetRange(0, w)
	s.XE.SetRange(0, w)
	for _, y := range s.Y {
		y.SetRange(h, 0)
	}
	s.YE.SetRange(0, h)
	s.YS.SetRange(0, h)
}

// Resize changes the pixel extents. Domains stay as they are; the zoom
// translation is rescaled so reapplying it keeps the same domain.
func (s *Space) Resize(w, h float64) {
	if s.width > 0 {
		s.t.X *= w / s.width
	}
	s.SetRanges(w, h)
	s.t = s.t.Constrain(w)
}

// SetDomains recomputes the x-domain as [0, sampleCount] and the y-domains
// from the loaded channels. With one y-axis all channels share it; with two,
// channel j drives axis j, and a missing second channel mirrors the first.
// The zoom resets to identity.
func (s *Space) SetDomains(channels [][]float64) {
	n := 0
	if len(channels) > 0 {
		n = len(channels[0])
	}
	s.X.SetDomain(0, float64(n))
	s.X0.SetDomain(0, float64(n))
	s.t = Identity

	if s.dims == 1 {
		lo, hi := extent(channels...)
		s.Y[0].SetDomain(widen(lo, hi))
		return
	}
	for j := range s.Y {
		var ch []float64
		switch {
		case j < len(channels):
			ch = channels[j]
		case len(channels) > 0:
			ch = channels[0]
		}
		s.Y[j].SetDomain(widen(extent(ch)))
	}
}

// SetEnergyDomains computes the energy axes. The overlayed axis spans
// [1, max(v+1)] over the raw channels; the stacked axis spans
// [1, max(high+1)] over the cumulative bands.
func (s *Space) SetEnergyDomains(data [][]float64, stackedHigh [][]float64) {
	n := 0
	if len(data) > 0 {
		n = len(data[0])
	}
	s.XE.SetDomain(0, float64(n))

	_, hi := extent(data...)
	s.YE.SetDomain(1, logTop(hi+1))
	_, hi = extent(stackedHigh...)
	s.YS.SetDomain(1, logTop(hi+1))
}

// Zoom applies t to the baseline x-domain and returns the transform after
// clamping. The current domain is never used as the starting point.
func (s *Space) Zoom(t Transform) Transform {
	t = t.Constrain(s.width)
	s.t = t
	lo, hi := t.RescaleX(s.X0).Domain()
	s.X.SetDomain(lo, hi)
	return t
}

// ToPixel maps a domain value on axis to a pixel position.
func (s *Space) ToPixel(v float64, axis Axis) float64 {
	return s.scale(axis).Apply(v)
}

// ToDomain maps a pixel position on axis back to a domain value.
func (s *Space) ToDomain(px float64, axis Axis) float64 {
	return s.scale(axis).Invert(px)
}

// EnergyY returns the energy y-scale for the given presentation.
func (s *Space) EnergyY(stacked bool) *Log {
	if stacked {
		return s.YS
	}
	return s.YE
}

// YFor returns the y-scale used by channel j.
func (s *Space) YFor(j int) *Linear {
	if s.dims == 1 || j < 0 || j > 1 {
		return s.Y[0]
	}
	return s.Y[j]
}

func (s *Space) scale(axis Axis) Scale {
	switch axis {
	case AxisY0:
		return s.Y[0]
	case AxisY1:
		return s.YFor(1)
	case AxisEnergyX:
		return s.XE
	case AxisEnergyOverlay:
		return s.YE
	case AxisEnergyStacked:
		return s.YS
	default:
		return s.X
	}
}

func extent(series ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, ch := range series {
		for _, v := range ch {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	return lo, hi
}

// widen keeps a flat signal drawable by giving it a unit-wide domain.
func widen(lo, hi float64) (float64, float64) {
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

func logTop(hi float64) float64 {
	if hi <= 1 {
		return 10
	}
	return hi
}
