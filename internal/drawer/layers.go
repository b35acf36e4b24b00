package drawer

import "github.com/olivier-w/databar/internal/palette"

// LayerName identifies one independently redrawn layer. Layers composite in
// declaration order.
type LayerName int

const (
	LayerEnergy LayerName = iota
	LayerLabels
	LayerAxes
	LayerSignals
	LayerHandles
	LayerGhost
	LayerCursor
	numLayers
)

func (n LayerName) String() string {
	switch n {
	case LayerEnergy:
		return "energy"
	case LayerLabels:
		return "labels"
	case LayerAxes:
		return "axes"
	case LayerSignals:
		return "signals"
	case LayerHandles:
		return "handles"
	case LayerGhost:
		return "ghost"
	case LayerCursor:
		return "cursor"
	default:
		return "unknown"
	}
}

// Primitive is a retained shape on a layer. Coordinates are pixels relative
// to the frame origin; axis text lives at negative or out-of-frame positions.
type Primitive interface {
	primitive()
}

// Side marks which boundary of a label a handle controls.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// Rect is an axis-aligned rectangle: a label body or a drag handle.
type Rect struct {
	X, Y, W, H float64
	Color      palette.RGB
	ID         int
	Selected   bool
	Handle     Side
	Warn       bool
	Tooltip    string
}

// Path is a polyline.
type Path struct {
	Points  []Point
	Color   palette.RGB
	Tooltip string
}

// Area is a filled band between Top and Bottom, sampled at X.
type Area struct {
	X       []float64
	Top     []float64
	Bottom  []float64
	Color   palette.RGB
	Tooltip string
}

// Align anchors text horizontally at its X.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Text is a string placed at a pixel position.
type Text struct {
	X, Y  float64
	S     string
	Align Align
	Color palette.RGB
}

// Circle is a particle.
type Circle struct {
	X, Y, R float64
	Color   palette.RGB
}

// Glyph is a single pointer character.
type Glyph struct {
	X, Y float64
	Rune rune
}

func (Rect) primitive()   {}
func (Path) primitive()   {}
func (Area) primitive()   {}
func (Text) primitive()   {}
func (Circle) primitive() {}
func (Glyph) primitive()  {}

// Layer holds the primitives of one visual layer.
type Layer struct {
	Name  LayerName
	Prims []Primitive
}

// Add appends primitives.
func (l *Layer) Add(p ...Primitive) { l.Prims = append(l.Prims, p...) }

// Clear drops every primitive.
func (l *Layer) Clear() { l.Prims = l.Prims[:0] }

// Len returns the number of primitives.
func (l *Layer) Len() int { return len(l.Prims) }

// Layers is the full layer set of one chart.
type Layers [numLayers]*Layer

func newLayers() Layers {
	var ls Layers
	for i := range ls {
		ls[i] = &Layer{Name: LayerName(i)}
	}
	return ls
}

// Rects returns the rectangles on a layer.
func (l *Layer) Rects() []Rect {
	var out []Rect
	for _, p := range l.Prims {
		if r, ok := p.(Rect); ok {
			out = append(out, r)
		}
	}
	return out
}
