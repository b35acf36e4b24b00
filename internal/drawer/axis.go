package drawer

import (
	"math"
	"time"

	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/palette"
	"github.com/olivier-w/databar/internal/util"
)

const (
	xTickSpacing = 40.0
	yTickSpacing = 16.0
)

var axisColor = palette.RGB{R: 140, G: 140, B: 150}

// DrawAxes redraws the x-axis, one or two y-axes and, when energy is shown,
// the energy axis for the active display mode.
func (d *Drawer) DrawAxes() {
	l := d.layers[LayerAxes]
	l.Clear()
	w, h := d.plotSize()
	if w <= 0 || h <= 0 {
		return
	}

	l.Add(Path{Points: []Point{{X: 0, Y: h + 1}, {X: w, Y: h + 1}}, Color: axisColor})
	lo, hi := d.space.X.Domain()
	format := d.tickFormat(hi - lo)
	for _, t := range d.space.X.Ticks(tickCount(w, xTickSpacing)) {
		l.Add(Text{X: d.space.X.Apply(t), Y: h + 4, S: format(t), Align: AlignCenter, Color: axisColor})
	}

	for _, t := range d.space.Y[0].Ticks(tickCount(h, yTickSpacing)) {
		l.Add(Text{X: -2, Y: d.space.Y[0].Apply(t), S: util.FormatValue(t), Align: AlignRight, Color: axisColor})
	}
	if d.space.Dims() == 2 {
		y1 := d.space.YFor(1)
		for _, t := range y1.Ticks(tickCount(h, yTickSpacing)) {
			l.Add(Text{X: w + 2, Y: y1.Apply(t), S: util.FormatValue(t), Align: AlignLeft, Color: d.colorer.Line(1)})
		}
	}

	if d.energy.HasEnergy() && d.energy.Visible {
		ys := d.space.EnergyY(d.energy.Mode == dataset.Stacked)
		x, align := w+2, AlignLeft
		if d.space.Dims() == 2 {
			x, align = w+d.margins.Right-1, AlignRight
		}
		for _, t := range ys.Ticks() {
			l.Add(Text{X: x, Y: ys.Apply(t), S: util.FormatValue(t), Align: align, Color: d.colorer.Well(0)})
		}
	}
}

// tickFormat picks the x tick formatter for a visible span of samples:
// times when the sample rate is known, indices otherwise.
func (d *Drawer) tickFormat(span float64) func(float64) string {
	if d.hz <= 0 {
		return util.FormatIndex
	}
	toDuration := func(v float64) time.Duration {
		return time.Duration(v / d.hz * float64(time.Second))
	}
	f := util.TimeFormatter(toDuration(span))
	return func(v float64) string { return f(toDuration(v)) }
}

func tickCount(px, spacing float64) int {
	return max(2, int(math.Floor(px/spacing)))
}
