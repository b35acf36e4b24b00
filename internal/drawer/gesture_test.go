package drawer

import (
	"testing"

	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/labels"
	"github.com/olivier-w/databar/internal/scale"
)

func TestClickCreatesLabelWithActiveType(t *testing.T) {
	d := newTestDrawer(t, nil, nil)
	d.Stream().ChangeType(1)
	click(d, at(100))

	lbls := d.Stream().Labels()
	if len(lbls) != 1 {
		t.Fatalf("expected one label, got %d", len(lbls))
	}
	if l := lbls[0]; l.Start != 100 || l.End != 100 || l.Label != 1 {
		t.Fatalf("unexpected label %+v", l)
	}
}

func TestClickOnLabelRetypesInClickMode(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300, Label: 0}}, nil)
	d.Stream().ChangeType(1)
	click(d, at(250))

	if d.Stream().Len() != 1 {
		t.Fatalf("expected no new label, got %d", d.Stream().Len())
	}
	if l, _ := d.Stream().Get(0); l.Label != 1 || l.Type != "fall" {
		t.Fatalf("expected label retyped to fall, got %+v", l)
	}
}

func TestClickSelectsInSelectionMode(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300}, {Start: 400, End: 500}}, nil)
	d.SetMode(ModeSelection)
	click(d, at(250))
	click(d, at(450))

	sel, ok := d.Stream().Selected()
	if !ok || sel.ID != 1 {
		t.Fatalf("expected label 1 selected, got %+v", sel)
	}
	if n := len(d.Layer(LayerHandles).Rects()); n != 2 {
		t.Fatalf("expected handles for the selection, got %d", n)
	}

	click(d, at(650))
	if _, ok := d.Stream().Selected(); ok {
		t.Fatal("expected click on empty frame to deselect")
	}
	if d.Layer(LayerHandles).Len() != 0 {
		t.Fatal("expected handles removed with the selection")
	}
	if d.Stream().Len() != 2 {
		t.Fatal("selection mode must not create labels")
	}
}

func TestDragSelectedBodyKeepsWidth(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300}}, nil)
	d.SetMode(ModeSelection)
	click(d, at(250))
	drag(d, at(250), at(270))

	l, _ := d.Stream().Get(0)
	if l.Start != 220 || l.End != 320 {
		t.Fatalf("expected label moved to [220 320], got [%v %v]", l.Start, l.End)
	}
}

func TestDragHandleMovesOneBoundary(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300}}, nil)
	d.SetMode(ModeSelection)
	click(d, at(250))
	drag(d, at(300), at(150))

	l, _ := d.Stream().Get(0)
	if l.Start != 200 || l.End != 150 {
		t.Fatalf("expected only the end to move, got [%v %v]", l.Start, l.End)
	}
	if lo, hi := l.Bounds(); lo != 150 || hi != 200 {
		t.Fatalf("expected normalised bounds [150 200], got [%v %v]", lo, hi)
	}
	rects := d.Layer(LayerHandles).Rects()
	if len(rects) != 2 || rects[0].Handle != SideLeft || rects[1].X != 149 {
		t.Fatalf("expected handles to follow the label, got %+v", rects)
	}
}

func TestDragUnselectedLabelPans(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300}}, nil)
	d.SetMode(ModeSelection)
	d.SetTransform(scale.Transform{K: 2, X: -200})
	drag(d, at(250), at(300))

	if l, _ := d.Stream().Get(0); l.Start != 200 || l.End != 300 {
		t.Fatalf("expected label untouched, got %+v", l)
	}
	if got := d.Transform(); got.X != -150 {
		t.Fatalf("expected pan to -150, got %+v", got)
	}
}

func TestFramePanOnlyInSelectionMode(t *testing.T) {
	d := newTestDrawer(t, nil, nil)
	d.SetTransform(scale.Transform{K: 2, X: -200})

	drag(d, at(400), at(450))
	if got := d.Transform(); got.X != -200 {
		t.Fatalf("expected click-mode drag not to pan, got %+v", got)
	}
	if d.Stream().Len() != 0 {
		t.Fatal("a drag must not create a label")
	}

	d.SetMode(ModeSelection)
	drag(d, at(400), at(450))
	if got := d.Transform(); got.X != -150 {
		t.Fatalf("expected selection-mode drag to pan to -150, got %+v", got)
	}
}

func TestXAxisAlwaysPans(t *testing.T) {
	d := newTestDrawer(t, nil, nil)
	d.SetTransform(scale.Transform{K: 2, X: -200})
	var emitted []scale.Transform
	d.OnZoom = func(t scale.Transform) { emitted = append(emitted, t) }

	axis := func(fx float64) Point { return Point{X: fx + DefaultMargins.Left, Y: 390} }
	drag(d, axis(400), axis(450))
	if got := d.Transform(); got.X != -150 {
		t.Fatalf("expected x-axis drag to pan, got %+v", got)
	}
	if len(emitted) != 1 || emitted[0].X != -150 {
		t.Fatalf("expected one zoom notification, got %+v", emitted)
	}
}

func TestWheelZoomsAroundPointer(t *testing.T) {
	d := newTestDrawer(t, nil, nil)
	var got scale.Transform
	d.OnZoom = func(t scale.Transform) { got = t }

	if !d.Wheel(at(365), 2) {
		t.Fatal("expected wheel over the frame to zoom")
	}
	if got.K != 2 || got.X != -365 {
		t.Fatalf("expected k=2 anchored at 365, got %+v", got)
	}
	if lo, hi := d.Space().X.Domain(); lo != 182.5 || hi != 547.5 {
		t.Fatalf("expected domain [182.5 547.5], got [%v %v]", lo, hi)
	}

	d.SetMode(ModePour)
	if !d.Wheel(at(365), -2) || d.Transform() != scale.Identity {
		t.Fatalf("expected wheel zoom in pour mode too, got %+v", d.Transform())
	}
	if d.Wheel(Point{X: 10, Y: 200}, 2) {
		t.Fatal("expected wheel over the y-axis to be ignored")
	}
}

func TestZoomClampedToRange(t *testing.T) {
	d := newTestDrawer(t, nil, nil)
	for range 20 {
		d.Zoom(2)
	}
	if k := d.Transform().K; k != scale.MaxZoom {
		t.Fatalf("expected zoom clamped to %v, got %v", scale.MaxZoom, k)
	}
	d.Pan(1e6)
	if lo, _ := d.Space().X.Domain(); lo != 0 {
		t.Fatalf("expected pan clamped to the start, got %v", lo)
	}
}

func TestCursorGlyphs(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300}}, nil)

	d.MouseMove(at(100))
	if g := d.Layer(LayerCursor).Prims[0].(Glyph); g.Rune != PointerGlyph {
		t.Fatalf("expected pointer glyph, got %q", g.Rune)
	}
	d.MouseMove(at(250))
	if g := d.Layer(LayerCursor).Prims[0].(Glyph); g.Rune != BrushGlyph {
		t.Fatalf("expected brush glyph over a label, got %q", g.Rune)
	}
	d.MouseMove(Point{X: 10, Y: 200})
	if d.Layer(LayerCursor).Len() != 0 {
		t.Fatal("expected no glyph over the y-axis")
	}

	d.SetMode(ModeSelection)
	d.MouseMove(at(100))
	if d.Layer(LayerCursor).Len() != 0 {
		t.Fatal("expected no glyph in selection mode")
	}

	d.SetMode(ModeClick)
	d.MouseMove(at(100))
	d.MouseLeave()
	if d.Layer(LayerCursor).Len() != 0 {
		t.Fatal("expected leave to clear the cursor")
	}
}

func TestLabelTooltip(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300, Label: 1}}, nil)
	d.MouseMove(at(250))
	if d.Tooltip() != "fall event" {
		t.Fatalf("expected label tooltip, got %q", d.Tooltip())
	}
	d.MouseMove(at(500))
	if d.Tooltip() != "" {
		t.Fatalf("expected no tooltip, got %q", d.Tooltip())
	}
}

func TestBackForwardButtonsCycleType(t *testing.T) {
	d := newTestDrawer(t, nil, nil)
	d.MouseDown(at(100), ButtonForward)
	if d.Stream().ActiveType() != 1 {
		t.Fatalf("expected forward to cycle up, got %d", d.Stream().ActiveType())
	}
	d.MouseDown(at(100), ButtonBack)
	if d.Stream().ActiveType() != 0 {
		t.Fatalf("expected back to cycle down, got %d", d.Stream().ActiveType())
	}
}

func TestRemoveSelected(t *testing.T) {
	d := newTestDrawer(t, []labels.Label{{Start: 200, End: 300}}, nil)
	if d.RemoveSelected() {
		t.Fatal("expected nothing to remove without a selection")
	}
	d.Stream().Select(0)
	if !d.RemoveSelected() || d.Stream().Len() != 0 {
		t.Fatal("expected selected label removed")
	}
	if d.Layer(LayerHandles).Len() != 0 {
		t.Fatal("expected handles cleared")
	}
}

func TestPourWithoutEnergyIsSkipped(t *testing.T) {
	d := newTestDrawer(t, nil, nil)
	d.SetMode(ModePour)
	d.MouseDown(at(100), ButtonPrimary)
	if d.PourActive() || d.Stream().Len() != 0 {
		t.Fatal("expected pour to be skipped without energy")
	}
	d.MouseUp(at(100), ButtonPrimary)
	d.EndPour()
}

func TestPourLifecycle(t *testing.T) {
	e := dataset.NewEnergy(dataset.New([]dataset.Channel{
		{Name: "well", Samples: constant(730, 9)},
	}, dataset.Info{Name: "energy"}))
	d := newTestDrawer(t, nil, e)
	d.SetMode(ModePour)

	d.MouseDown(at(100), ButtonPrimary)
	if !d.PourActive() || d.Stream().Len() != 1 {
		t.Fatal("expected pour to start with a new label")
	}
	gen := d.PourGeneration()
	d.PourInject(gen)
	d.PourInject(gen)
	for range 300 {
		d.PourStep(gen)
	}
	if d.Layer(LayerGhost).Len() != 2 {
		t.Fatalf("expected two particles drawn, got %d", d.Layer(LayerGhost).Len())
	}

	d.MouseUp(at(100), ButtonPrimary)
	if d.PourActive() {
		t.Fatal("expected release to end the pour")
	}
	if d.PourInject(gen) || d.PourStep(gen) {
		t.Fatal("expected timers of the finished pour to stop")
	}
	d.EndPour()
	d.EndPour()

	l, _ := d.Stream().Get(0)
	if !(l.Start < 100 && l.End > 100) {
		t.Fatalf("expected label to span the particle cluster, got [%v %v]", l.Start, l.End)
	}
	if d.Layer(LayerGhost).Len() != 0 {
		t.Fatal("expected particles cleared")
	}
}

func TestPourInjectWakesSettledPour(t *testing.T) {
	e := dataset.NewEnergy(dataset.New([]dataset.Channel{
		{Name: "well", Samples: constant(730, 9)},
	}, dataset.Info{Name: "energy"}))
	d := newTestDrawer(t, nil, e)
	d.SetMode(ModePour)
	d.MouseDown(at(100), ButtonPrimary)
	gen := d.PourGeneration()
	d.PourInject(gen)

	steps := 0
	for d.PourStep(gen) {
		steps++
		if steps > 20000 {
			t.Fatal("expected the pour to settle")
		}
	}
	if !d.PourSettled() {
		t.Fatal("expected a settled pour")
	}
	if !d.PourInject(gen) {
		t.Fatal("expected the inject timer to keep running while the button is held")
	}
	if d.PourSettled() || !d.PourStep(gen) {
		t.Fatal("expected injection to wake the simulation")
	}
	if len(d.Particles()) != 2 {
		t.Fatalf("expected two particles, got %d", len(d.Particles()))
	}
	d.EndPour()
	if d.PourSettled() {
		t.Fatal("a finished pour is not settled")
	}
}

func TestLeaveEndsPour(t *testing.T) {
	e := dataset.NewEnergy(dataset.New([]dataset.Channel{
		{Name: "well", Samples: constant(730, 9)},
	}, dataset.Info{Name: "energy"}))
	d := newTestDrawer(t, nil, e)
	d.SetMode(ModePour)
	d.MouseDown(at(100), ButtonPrimary)
	gen := d.PourGeneration()
	d.MouseLeave()
	if d.PourActive() || d.PourInject(gen) {
		t.Fatal("expected leaving the chart to stop the pour")
	}
}
