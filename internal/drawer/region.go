package drawer

// Region is the part of the chart a pointer is over.
type Region int

const (
	RegionFrame Region = iota
	RegionYAxis
	RegionMarginTop
	RegionMarginRight
	RegionXAxis
)

func (r Region) String() string {
	switch r {
	case RegionYAxis:
		return "y-axis"
	case RegionMarginTop:
		return "margin-top"
	case RegionMarginRight:
		return "margin-right"
	case RegionXAxis:
		return "x-axis"
	default:
		return "frame"
	}
}

// Margins surround the plotting area, in pixels.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins leave room for the axes around the frame.
var DefaultMargins = Margins{Top: 5, Right: 20, Bottom: 20, Left: 50}

// Point is a pixel position.
type Point struct {
	X float64
	Y float64
}

// Classify returns the region of a viewport-absolute pixel position in a
// viewport of width by height. The checks run in a fixed order and the first
// match wins, so a point left of the frame is always on the y-axis.
func Classify(p Point, width, height float64, m Margins) Region {
	x := p.X - m.Left
	y := p.Y - m.Top
	w := width - m.Left - m.Right
	h := height - m.Top - m.Bottom
	switch {
	case x < 0:
		return RegionYAxis
	case y < 0:
		return RegionMarginTop
	case x > w:
		return RegionMarginRight
	case y > h:
		return RegionXAxis
	default:
		return RegionFrame
	}
}
