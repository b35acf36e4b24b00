package drawer

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/olivier-w/databar/internal/labels"
)

const (
	transitionFPS       = 30
	transitionFrequency = 6.0
	transitionDamping   = 1.0
	settleEpsilon       = 0.01
)

type transition struct {
	pos, vel float64
	target   float64
	label    labels.Label // kept so exiting labels can still be drawn
}

// transitions animates label rectangles: entering labels grow from their
// midpoint, exiting ones shrink back into it.
type transitions struct {
	spring harmonica.Spring
	active map[int]*transition
}

func newTransitions() *transitions {
	return &transitions{
		spring: harmonica.NewSpring(harmonica.FPS(transitionFPS), transitionFrequency, transitionDamping),
		active: make(map[int]*transition),
	}
}

func (t *transitions) enter(id int) {
	t.active[id] = &transition{pos: 0, target: 1}
}

func (t *transitions) exit(l labels.Label) {
	tr, ok := t.active[l.ID]
	if !ok {
		tr = &transition{pos: 1}
		t.active[l.ID] = tr
	}
	tr.target = 0
	tr.label = l
}

func (t *transitions) reset() {
	clear(t.active)
}

// progress returns the visible width fraction of a label.
func (t *transitions) progress(id int) float64 {
	if tr, ok := t.active[id]; ok {
		return math.Max(0, math.Min(1, tr.pos))
	}
	return 1
}

// exiting returns the labels that are shrinking away.
func (t *transitions) exiting() []labels.Label {
	var out []labels.Label
	for id, tr := range t.active {
		if tr.target == 0 {
			l := tr.label
			l.ID = id
			out = append(out, l)
		}
	}
	return out
}

// step advances every spring one frame and drops settled ones. It reports
// whether any transition is still running.
func (t *transitions) step() bool {
	for id, tr := range t.active {
		tr.pos, tr.vel = t.spring.Update(tr.pos, tr.vel, tr.target)
		if math.Abs(tr.pos-tr.target) < settleEpsilon && math.Abs(tr.vel) < settleEpsilon {
			delete(t.active, id)
		}
	}
	return len(t.active) > 0
}

func (t *transitions) running() bool { return len(t.active) > 0 }
