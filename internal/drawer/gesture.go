package drawer

import (
	"math"

	"github.com/olivier-w/databar/internal/labels"
	"github.com/olivier-w/databar/internal/scale"
)

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
	ButtonBack
	ButtonForward
)

const (
	// PointerGlyph marks where a click would create a label.
	PointerGlyph = '+'
	// BrushGlyph marks a label a click would retype.
	BrushGlyph = '✎'

	hitSlop    = 1.0
	handleSlop = 2.0
	wheelStep  = 0.5
)

type dragKind int

const (
	dragNone dragKind = iota
	dragPan
	dragBody
	dragHandle
	dragHover
)

// press is the state of a primary-button gesture from press to release.
type press struct {
	origin     Point
	region     Region
	moved      bool
	kind       dragKind
	id         int
	side       Side
	start, end float64
	t0         scale.Transform
}

// SetMode switches the interaction mode. Leaving pour mode ends any pour.
func (d *Drawer) SetMode(m Mode) {
	if d.mode == ModePour && m != ModePour {
		d.EndPour()
	}
	d.mode = m
	d.drawCursor()
}

// CycleMode moves to the next interaction mode.
func (d *Drawer) CycleMode() { d.SetMode(d.mode.Next()) }

// MouseMove handles pointer motion to p, in viewport pixels.
func (d *Drawer) MouseMove(p Point) {
	d.moveTo(p)
	if pr := d.press; pr != nil {
		if p != pr.origin {
			pr.moved = true
		}
		switch pr.kind {
		case dragPan:
			d.applyTransform(pr.t0.TranslateBy(p.X-pr.origin.X), true)
		case dragBody:
			delta := d.domainDelta(pr.origin, p)
			d.stream.Move(pr.id, pr.start+delta, pr.end+delta)
		case dragHandle:
			delta := d.domainDelta(pr.origin, p)
			if pr.side == SideLeft {
				d.stream.Move(pr.id, pr.start+delta, pr.end)
			} else {
				d.stream.Move(pr.id, pr.start, pr.end+delta)
			}
		}
	}
	d.updateHover()
}

// MouseDown handles a button press at p.
func (d *Drawer) MouseDown(p Point, b Button) {
	d.moveTo(p)
	switch b {
	case ButtonMiddle:
		d.CycleMode()
		return
	case ButtonForward:
		d.stream.Cycle()
		return
	case ButtonBack:
		d.stream.CycleDown()
		return
	case ButtonSecondary:
		return
	}

	fx, _ := d.frameXY(p)
	pr := &press{origin: p, region: d.region, id: -1, t0: d.space.Transform()}
	if d.mode == ModeSelection && d.region == RegionFrame {
		if sel, side, ok := d.handleAt(fx); ok {
			pr.kind, pr.id, pr.side = dragHandle, sel.ID, side
			pr.start, pr.end = sel.Start, sel.End
		} else if l, ok := d.labelAt(fx); ok && l.Selected {
			pr.kind, pr.id = dragBody, l.ID
			pr.start, pr.end = l.Start, l.End
		}
	}
	if pr.kind == dragNone {
		switch {
		case d.region == RegionXAxis:
			pr.kind = dragPan
		case d.region == RegionFrame && d.mode == ModeSelection:
			pr.kind = dragPan
		case d.region == RegionFrame && d.mode == ModeClick:
			pr.kind = dragHover
		}
	}
	d.press = pr

	if d.mode == ModePour && d.region == RegionFrame {
		d.StartPour(fx)
	}
}

// MouseUp handles a button release at p. A primary press released without
// motion is a click.
func (d *Drawer) MouseUp(p Point, b Button) {
	d.moveTo(p)
	if b != ButtonPrimary {
		return
	}
	pr := d.press
	d.press = nil
	if pr != nil && !pr.moved && pr.region == RegionFrame {
		fx, _ := d.frameXY(p)
		d.click(fx)
	}
	d.EndPour()
}

// MouseLeave handles the pointer leaving the chart.
func (d *Drawer) MouseLeave() {
	d.inside = false
	d.press = nil
	d.tooltip = ""
	d.layers[LayerCursor].Clear()
	d.EndPour()
}

// Wheel zooms around p by delta notches (positive zooms in). Wheel zoom is
// honored over the frame and the x-axis in every mode.
func (d *Drawer) Wheel(p Point, delta float64) bool {
	d.moveTo(p)
	if d.region != RegionFrame && d.region != RegionXAxis {
		return false
	}
	fx, _ := d.frameXY(p)
	d.applyTransform(d.space.Transform().ScaleBy(math.Pow(2, delta*wheelStep), fx), true)
	return true
}

// Zoom scales the view by f around the frame centre.
func (d *Drawer) Zoom(f float64) {
	w, _ := d.plotSize()
	d.applyTransform(d.space.Transform().ScaleBy(f, w/2), true)
}

// Pan shifts the view by dx pixels.
func (d *Drawer) Pan(dx float64) {
	d.applyTransform(d.space.Transform().TranslateBy(dx), true)
}

// ResetZoom returns to the full recording.
func (d *Drawer) ResetZoom() { d.applyTransform(scale.Identity, true) }

// SetTransform applies a transform coming from another chart. It does not
// call OnZoom.
func (d *Drawer) SetTransform(t scale.Transform) { d.applyTransform(t, false) }

func (d *Drawer) applyTransform(t scale.Transform, emit bool) {
	t = d.space.Zoom(t)
	d.DrawAxes()
	d.PlotSignals()
	d.DrawEnergy()
	d.DrawLabels()
	d.DrawHandles()
	if emit && d.OnZoom != nil {
		d.OnZoom(t)
	}
}

func (d *Drawer) click(fx float64) {
	if l, ok := d.labelAt(fx); ok {
		switch d.mode {
		case ModeSelection:
			d.stream.Select(l.ID)
		case ModeClick:
			d.stream.Retype(l.ID, d.stream.ActiveType())
		}
		return
	}
	d.stream.Deselect()
	if d.mode == ModeClick {
		x := d.space.X.Invert(fx)
		d.stream.Add(labels.Label{Start: x, End: x, Label: d.stream.ActiveType()})
	}
}

func (d *Drawer) moveTo(p Point) {
	d.pointer = p
	d.region = Classify(p, d.width, d.height, d.margins)
	d.inside = true
}

func (d *Drawer) frameXY(p Point) (float64, float64) {
	return p.X - d.margins.Left, p.Y - d.margins.Top
}

func (d *Drawer) domainDelta(from, to Point) float64 {
	fx0, _ := d.frameXY(from)
	fx1, _ := d.frameXY(to)
	return d.space.X.Invert(fx1) - d.space.X.Invert(fx0)
}

// labelAt returns the topmost visible label under frame pixel x.
func (d *Drawer) labelAt(fx float64) (labels.Label, bool) {
	if !d.showLabels {
		return labels.Label{}, false
	}
	lbls := d.stream.Labels()
	for i := len(lbls) - 1; i >= 0; i-- {
		lo, hi := lbls[i].Bounds()
		x0, x1 := d.space.X.Unrounded(lo), d.space.X.Unrounded(hi)
		if fx >= x0-hitSlop && fx <= x1+hitSlop {
			return lbls[i], true
		}
	}
	return labels.Label{}, false
}

// handleAt returns the selected label and the side of its handle under
// frame pixel x.
func (d *Drawer) handleAt(fx float64) (labels.Label, Side, bool) {
	if !d.showLabels {
		return labels.Label{}, SideNone, false
	}
	sel, ok := d.stream.Selected()
	if !ok {
		return labels.Label{}, SideNone, false
	}
	if math.Abs(fx-d.space.X.Unrounded(sel.Start)) <= handleSlop {
		return sel, SideLeft, true
	}
	if math.Abs(fx-d.space.X.Unrounded(sel.End)) <= handleSlop {
		return sel, SideRight, true
	}
	return labels.Label{}, SideNone, false
}

// bandAt returns the tooltip of the narrowest energy band under a frame
// pixel.
func (d *Drawer) bandAt(fx, fy float64) string {
	best, span := "", math.Inf(1)
	for _, p := range d.layers[LayerEnergy].Prims {
		a, ok := p.(Area)
		if !ok || len(a.X) == 0 {
			continue
		}
		i := nearest(a.X, fx)
		top, bottom := math.Min(a.Top[i], a.Bottom[i]), math.Max(a.Top[i], a.Bottom[i])
		if fy >= top && fy <= bottom && bottom-top < span {
			best, span = a.Tooltip, bottom-top
		}
	}
	return best
}

func nearest(xs []float64, x float64) int {
	best := 0
	for i, v := range xs {
		if math.Abs(v-x) < math.Abs(xs[best]-x) {
			best = i
		}
	}
	return best
}

func (d *Drawer) updateHover() {
	d.tooltip = ""
	if d.region == RegionFrame {
		fx, fy := d.frameXY(d.pointer)
		if l, ok := d.labelAt(fx); ok {
			d.tooltip = l.Type + " event"
		} else {
			d.tooltip = d.bandAt(fx, fy)
		}
	}
	d.drawCursor()
}

// drawCursor shows the custom pointer glyph in click mode over the frame:
// the brush over a label, the pointer elsewhere.
func (d *Drawer) drawCursor() {
	l := d.layers[LayerCursor]
	l.Clear()
	if !d.inside || d.mode != ModeClick || d.region != RegionFrame {
		return
	}
	fx, fy := d.frameXY(d.pointer)
	g := Glyph{X: fx, Y: fy, Rune: PointerGlyph}
	if _, ok := d.labelAt(fx); ok {
		g.Rune = BrushGlyph
	}
	l.Add(g)
}
