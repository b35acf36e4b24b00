// Package drawer renders one sensor chart as a set of retained layers and
// interprets pointer gestures over it.
//
// All methods run on the UI loop. Long work (dataset loads) happens
// elsewhere and comes back through BeginDraw/FinishDraw, which drop results
// of superseded draws.
package drawer

import (
	"math"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/downsample"
	"github.com/olivier-w/databar/internal/labels"
	"github.com/olivier-w/databar/internal/palette"
	"github.com/olivier-w/databar/internal/pour"
	"github.com/olivier-w/databar/internal/scale"
)

// Options configures a Drawer.
type Options struct {
	// Dims is the number of y-axes: 1 shares one axis across channels, 2
	// gives each of the first two channels its own.
	Dims       int
	Margins    Margins
	Colorer    palette.Colorer
	Downsample bool
}

// Drawer owns the layers, scales, mode and gesture state of one chart.
type Drawer struct {
	name    string
	stream  *labels.Stream
	space   *scale.Space
	colorer palette.Colorer
	sampler downsample.Sampler
	margins Margins

	width, height float64
	sized         bool
	layers        Layers
	mode          Mode

	data   [][]float64
	names  []string
	hz     float64
	energy *dataset.Energy
	gen    uint64
	loaded bool

	showLabels bool
	pointer    Point
	region     Region
	inside     bool
	press      *press
	tooltip    string
	trans      *transitions
	known      map[int]labels.Label

	sim     *pour.Simulation
	pouring bool
	pourID  int
	pourX   float64
	pourGen uint64

	// OnZoom is called with the constrained transform after every zoom or
	// pan gesture, so the host can synchronise other charts.
	OnZoom func(scale.Transform)

	unsubscribe func()
}

// New creates a drawer for the named sensor, drawing the labels of stream.
func New(name string, stream *labels.Stream, opts Options) *Drawer {
	if opts.Colorer == nil {
		opts.Colorer = palette.NewWheel(stream.EventMap().NullKey)
	}
	if opts.Margins == (Margins{}) {
		opts.Margins = DefaultMargins
	}
	d := &Drawer{
		name:       name,
		stream:     stream,
		space:      scale.NewSpace(opts.Dims),
		colorer:    opts.Colorer,
		sampler:    downsample.Sampler{Enabled: opts.Downsample},
		margins:    opts.Margins,
		layers:     newLayers(),
		mode:       ModeClick,
		energy:     dataset.NewEnergy(nil),
		showLabels: true,
		trans:      newTransitions(),
		known:      make(map[int]labels.Label),
	}
	d.sim = pour.New(d.energyHeight)
	d.refreshKnown()
	d.unsubscribe = stream.Subscribe(d.onLabelEvent)
	return d
}

// Close detaches the drawer from its stream and stops any pour.
func (d *Drawer) Close() {
	d.EndPour()
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}

func (d *Drawer) Name() string               { return d.name }
func (d *Drawer) Stream() *labels.Stream     { return d.stream }
func (d *Drawer) Space() *scale.Space        { return d.space }
func (d *Drawer) Energy() *dataset.Energy    { return d.energy }
func (d *Drawer) Margins() Margins           { return d.margins }
func (d *Drawer) Layer(n LayerName) *Layer   { return d.layers[n] }
func (d *Drawer) Layers() Layers             { return d.layers }
func (d *Drawer) Mode() Mode                 { return d.mode }
func (d *Drawer) Region() Region             { return d.region }
func (d *Drawer) Tooltip() string            { return d.tooltip }
func (d *Drawer) Loaded() bool               { return d.loaded }
func (d *Drawer) LabelsVisible() bool        { return d.showLabels }
func (d *Drawer) Transform() scale.Transform { return d.space.Transform() }

// Len returns the number of samples per loaded channel.
func (d *Drawer) Len() int {
	if len(d.data) == 0 {
		return 0
	}
	return len(d.data[0])
}

// Clear empties one layer and leaves the others alone.
func (d *Drawer) Clear(n LayerName) { d.layers[n].Clear() }

// Resize sets the viewport size in pixels, margins included. Domains are
// kept; only the pixel ranges change.
func (d *Drawer) Resize(width, height float64) {
	d.width, d.height = width, height
	w, h := d.plotSize()
	if d.sized {
		d.space.Resize(w, h)
	} else {
		d.space.SetRanges(w, h)
		d.sized = true
	}
	d.Draw()
}

func (d *Drawer) plotSize() (w, h float64) {
	w = math.Max(0, d.width-d.margins.Left-d.margins.Right)
	h = math.Max(0, d.height-d.margins.Top-d.margins.Bottom)
	return w, h
}

// BeginDraw starts a new draw and returns its generation. Any draw still in
// flight is superseded.
func (d *Drawer) BeginDraw() uint64 {
	d.gen++
	return d.gen
}

// Generation returns the generation of the latest draw.
func (d *Drawer) Generation() uint64 { return d.gen }

// FinishDraw installs the channels loaded for draw gen, recomputes the
// domains and redraws every layer. A stale gen is ignored and reported as
// false.
func (d *Drawer) FinishDraw(gen uint64, ds *dataset.Dataset, energy *dataset.Energy) bool {
	if gen != d.gen {
		log.WithFields(log.Fields{"chart": d.name, "gen": gen, "current": d.gen}).Debug("dropping stale draw")
		return false
	}
	d.data = ds.Format()
	d.names = ds.Names()
	d.hz = ds.Info().Hz
	d.space.SetDomains(d.data)
	d.SetEnergy(energy)
	d.loaded = true
	d.Draw()
	return true
}

// SetEnergy replaces the energy overlay and its domains. A nil or empty
// overlay disables energy drawing and pouring.
func (d *Drawer) SetEnergy(e *dataset.Energy) {
	if e == nil {
		e = dataset.NewEnergy(nil)
	}
	d.energy = e
	if e.HasEnergy() {
		bands := e.Stacked()
		highs := make([][]float64, len(bands))
		for i, b := range bands {
			highs[i] = b.High
		}
		d.space.SetEnergyDomains(e.Data(), highs)
	}
	d.DrawEnergy()
	d.DrawAxes()
}

// Draw clears and redraws every layer from the current state.
func (d *Drawer) Draw() {
	if !d.sized {
		return
	}
	d.DrawAxes()
	d.PlotSignals()
	d.DrawEnergy()
	d.DrawLabels()
	d.DrawHandles()
	d.drawCursor()
}

// PlotSignals redraws the signal lines of the visible window, downsampled
// to the current zoom.
func (d *Drawer) PlotSignals() {
	l := d.layers[LayerSignals]
	l.Clear()
	n := d.Len()
	w, _ := d.plotSize()
	if n == 0 || w <= 0 {
		return
	}
	lo, hi := d.space.X.Domain()
	i0 := max(0, int(math.Floor(lo))-1)
	i1 := min(n-1, int(math.Ceil(hi))+1)
	if i1 < i0 {
		return
	}

	series := make([][]downsample.Point, len(d.data))
	for j, ch := range d.data {
		pts := downsample.FromValues(ch[i0 : i1+1])
		for k := range pts {
			pts[k].X += float64(i0)
		}
		series[j] = pts
	}
	series = d.sampler.Sample(series, downsample.BucketSize(hi-lo, w))

	for j, pts := range series {
		y := d.space.YFor(j)
		path := Path{Points: make([]Point, len(pts)), Color: d.colorer.Line(j)}
		if j < len(d.names) {
			path.Tooltip = d.names[j]
		}
		for k, p := range pts {
			path.Points[k] = Point{X: d.space.X.Apply(p.X), Y: y.Apply(p.Y)}
		}
		l.Add(path)
	}
}

// DrawEnergy redraws the energy overlay in the active display mode. Bands
// are strided rather than LTTB-sampled so stacked bounds share positions.
func (d *Drawer) DrawEnergy() {
	l := d.layers[LayerEnergy]
	l.Clear()
	w, _ := d.plotSize()
	if !d.energy.HasEnergy() || !d.energy.Visible || w <= 0 {
		return
	}
	ratio := d.energyRatio()
	lo, hi := d.space.X.Domain()
	n := d.energy.Len()
	i0 := max(0, int(math.Floor(lo/ratio))-1)
	i1 := min(n-1, int(math.Ceil(hi/ratio))+1)
	stride := downsample.BucketSize((hi-lo)/ratio, w)

	var idx []int
	for i := i0; i <= i1; i += stride {
		idx = append(idx, i)
	}
	if len(idx) > 0 && idx[len(idx)-1] != i1 {
		idx = append(idx, i1)
	}
	xs := make([]float64, len(idx))
	for k, i := range idx {
		xs[k] = d.space.X.Apply(float64(i) * ratio)
	}

	keys := d.energy.Keys()
	if d.energy.Mode == dataset.Stacked {
		ys := d.space.YS
		for _, b := range d.energy.Stacked() {
			a := Area{X: xs, Top: make([]float64, len(idx)), Bottom: make([]float64, len(idx)),
				Color: d.colorer.Well(slices.Index(keys, b.Key)), Tooltip: b.Key}
			for k, i := range idx {
				a.Top[k] = ys.Apply(b.Low[i] + 1)
				a.Bottom[k] = ys.Apply(b.High[i] + 1)
			}
			l.Add(a)
		}
		return
	}
	ye := d.space.YE
	top := ye.Apply(1)
	for c, ch := range d.energy.Data() {
		a := Area{X: xs, Top: make([]float64, len(idx)), Bottom: make([]float64, len(idx)),
			Color: d.colorer.Well(c), Tooltip: keys[c]}
		for k, i := range idx {
			a.Top[k] = top
			a.Bottom[k] = ye.Apply(ch[i] + 1)
		}
		l.Add(a)
	}
}

// energyRatio converts energy sample indices into signal sample indices.
func (d *Drawer) energyRatio() float64 {
	if n, m := d.Len(), d.energy.Len(); n > 0 && m > 0 {
		return float64(n) / float64(m)
	}
	return 1
}

// energyHeight is the pixel depth of the energy surface at frame pixel x.
func (d *Drawer) energyHeight(px float64) float64 {
	x := d.space.X.Invert(px) / d.energyRatio()
	return d.space.YS.Apply(d.energy.AtSync(x) + 1)
}

// ToggleEnergy shows or hides the energy overlay.
func (d *Drawer) ToggleEnergy() {
	d.energy.Visible = !d.energy.Visible
	d.DrawEnergy()
	d.DrawAxes()
}

// CycleEnergyMode switches between overlayed and stacked energy.
func (d *Drawer) CycleEnergyMode() {
	d.energy.Mode = d.energy.Mode.Next()
	d.DrawEnergy()
	d.DrawAxes()
}

// DrawLabels redraws the label rectangles, including labels still
// shrinking away after removal.
func (d *Drawer) DrawLabels() {
	l := d.layers[LayerLabels]
	l.Clear()
	if !d.showLabels || !d.sized {
		return
	}
	exiting := d.trans.exiting()
	slices.SortFunc(exiting, func(a, b labels.Label) int { return a.ID - b.ID })
	for _, lbl := range append(d.stream.Labels(), exiting...) {
		if r, ok := d.labelRect(lbl); ok {
			l.Add(r)
		}
	}
}

func (d *Drawer) labelRect(lbl labels.Label) (Rect, bool) {
	w, h := d.plotSize()
	lo, hi := lbl.Bounds()
	x0, x1 := d.space.X.Unrounded(lo), d.space.X.Unrounded(hi)
	mid := (x0 + x1) / 2
	half := (x1 - x0) / 2 * d.trans.progress(lbl.ID)
	x0, x1 = mid-half, mid+half
	if x1 < 0 || x0 > w {
		return Rect{}, false
	}
	x0, x1 = math.Max(0, x0), math.Min(w, x1)
	return Rect{
		X: x0, W: x1 - x0, H: h,
		Color:    d.colorer.ColorFor(d.stream.Name(), lbl.Label),
		ID:       lbl.ID,
		Selected: lbl.Selected,
		Tooltip:  lbl.Type + " event",
	}, true
}

const handleWidth = 2

// DrawHandles redraws the drag handles of the selected label. Without a
// selection, or with labels hidden, the layer stays empty.
func (d *Drawer) DrawHandles() {
	l := d.layers[LayerHandles]
	l.Clear()
	if !d.showLabels || !d.sized {
		return
	}
	sel, ok := d.stream.Selected()
	if !ok {
		return
	}
	_, h := d.plotSize()
	warn := sel.Start == sel.End
	for _, side := range []Side{SideLeft, SideRight} {
		v := sel.Start
		if side == SideRight {
			v = sel.End
		}
		x := d.space.X.Unrounded(v)
		l.Add(Rect{X: x - handleWidth/2, W: handleWidth, H: h, ID: sel.ID, Handle: side, Warn: warn,
			Color: d.colorer.ColorFor(d.stream.Name(), sel.Label)})
	}
}

// ToggleLabels shows or hides labels and their handles.
func (d *Drawer) ToggleLabels() {
	d.showLabels = !d.showLabels
	d.DrawLabels()
	d.DrawHandles()
}

// Animate steps the label transitions one frame and reports whether any
// are still running.
func (d *Drawer) Animate() bool {
	running := d.trans.step()
	d.DrawLabels()
	return running
}

// Animating reports whether label transitions are in progress.
func (d *Drawer) Animating() bool { return d.trans.running() }

func (d *Drawer) onLabelEvent(e labels.Event) {
	switch e.Kind {
	case labels.EventAdd:
		d.trans.enter(e.ID)
	case labels.EventRemove:
		if l, ok := d.known[e.ID]; ok {
			d.trans.exit(l)
		}
	case labels.EventSetLabels:
		d.trans.reset()
	}
	d.refreshKnown()
	d.DrawLabels()
	d.DrawHandles()
}

func (d *Drawer) refreshKnown() {
	clear(d.known)
	for _, l := range d.stream.Labels() {
		d.known[l.ID] = l
	}
}

// RemoveSelected deletes the selected label, if any.
func (d *Drawer) RemoveSelected() bool {
	sel, ok := d.stream.Selected()
	if !ok {
		return false
	}
	return d.stream.Remove(sel.ID)
}
