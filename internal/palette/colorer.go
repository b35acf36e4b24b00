// Package palette assigns colors to label types, signal lines and energy
// wells, and writes them as ANSI escape sequences.
package palette

import (
	"fmt"
	"hash/fnv"
	"math"
)

// RGB is a 24-bit color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

func (c RGB) key() uint32 { return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B) }

// Hex formats the color as #rrggbb, for lipgloss.
func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Colorer is the color assignment capability consumed by the drawer.
type Colorer interface {
	// ColorFor returns the fill of labels of type key in the named stream.
	ColorFor(stream string, key int) RGB
	// Line returns the stroke of signal channel j.
	Line(j int) RGB
	// Well returns the fill of energy channel i.
	Well(i int) RGB
}

// Wheel spreads colors around the HSV hue circle by the golden ratio so
// neighbouring keys stay distinguishable.
type Wheel struct {
	// NullKey is drawn in Null instead of a wheel color.
	NullKey int
	Null    RGB
}

// NewWheel returns the default colorer.
func NewWheel(nullKey int) *Wheel {
	return &Wheel{NullKey: nullKey, Null: RGB{R: 110, G: 110, B: 110}}
}

const golden = 0.618033988749895

func (w *Wheel) ColorFor(stream string, key int) RGB {
	if key == w.NullKey {
		return w.Null
	}
	h := fnv.New32a()
	h.Write([]byte(stream))
	offset := float64(h.Sum32()%360) / 360
	return HSV(offset+float64(key)*golden, 0.55, 0.95)
}

func (w *Wheel) Line(j int) RGB {
	return HSV(0.58+float64(j)*golden, 0.65, 0.95)
}

func (w *Wheel) Well(i int) RGB {
	return HSV(0.08+float64(i)*golden, 0.5, 0.7)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp blends a toward b by t in [0,1].
func Lerp(a, b RGB, t float64) RGB {
	t = clamp01(t)
	return RGB{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

// HSV converts hue (wrapping), saturation and value in [0,1] to RGB.
func HSV(h, s, v float64) RGB {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	s = clamp01(s)
	v = clamp01(v)

	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return RGB{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255)}
}
