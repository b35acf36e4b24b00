package scale

import "math"

const (
	// MinZoom and MaxZoom bound the zoom scale factor.
	MinZoom = 1.0
	MaxZoom = 50.0
)

// Transform is a horizontal zoom transform: a pixel x on the baseline maps
// to x*K + X on screen.
type Transform struct {
	K float64
	X float64
}

// Identity is the transform that leaves the baseline untouched.
var Identity = Transform{K: 1}

// ApplyX maps a baseline pixel to a zoomed pixel.
func (t Transform) ApplyX(x float64) float64 { return x*t.K + t.X }

// InvertX maps a zoomed pixel back to a baseline pixel.
func (t Transform) InvertX(px float64) float64 { return (px - t.X) / t.K }

// ScaleBy multiplies the scale by f, keeping the pixel anchor fixed. The
// scale is clamped to [MinZoom, MaxZoom] first.
func (t Transform) ScaleBy(f, anchor float64) Transform {
	k := clamp(t.K*f, MinZoom, MaxZoom)
	base := t.InvertX(anchor)
	return Transform{K: k, X: anchor - base*k}
}

// TranslateBy shifts the view by dx pixels.
func (t Transform) TranslateBy(dx float64) Transform {
	return Transform{K: t.K, X: t.X + dx}
}

// Constrain clamps the scale to [MinZoom, MaxZoom] and the translation so
// the viewport of the given width never shows area outside [0, width] on
// the baseline.
func (t Transform) Constrain(width float64) Transform {
	k := t.K
	if k == 0 || math.IsNaN(k) {
		k = 1
	}
	k = clamp(k, MinZoom, MaxZoom)
	x := clamp(t.X, width-width*k, 0)
	return Transform{K: k, X: x}
}

// RescaleX returns a copy of base whose domain shows what the transform
// puts on screen.
func (t Transform) RescaleX(base *Linear) *Linear {
	out := base.Copy()
	if t == Identity {
		return out
	}
	r0, r1 := base.Range()
	out.SetDomain(base.Invert(t.InvertX(r0)), base.Invert(t.InvertX(r1)))
	return out
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, v))
}
