package drawer

import (
	log "github.com/sirupsen/logrus"

	"github.com/olivier-w/databar/internal/labels"
	"github.com/olivier-w/databar/internal/pour"
)

const particleRadius = 2

// StartPour spawns a zero-width label at frame pixel fx and starts a pour
// there. Without energy data nothing happens and false is returned. The
// host drives PourInject and PourStep until the pour generation changes.
func (d *Drawer) StartPour(fx float64) bool {
	if !d.energy.HasEnergy() {
		log.WithField("chart", d.name).Debug("pour skipped: no energy data")
		return false
	}
	d.EndPour()
	x := d.space.X.Invert(fx)
	l, ok := d.stream.Add(labels.Label{Start: x, End: x, Label: d.stream.ActiveType()})
	if !ok {
		return false
	}
	d.pourID, d.pourX = l.ID, fx
	d.pourGen++
	d.pouring = true
	d.sim.Start()
	return true
}

// PourActive reports whether a pour is running.
func (d *Drawer) PourActive() bool { return d.pouring }

// PourGeneration identifies the running pour. Timers tagged with an older
// generation must stop.
func (d *Drawer) PourGeneration() uint64 { return d.pourGen }

// PourSettled reports whether the running pour's simulation has come to
// rest. The next PourInject wakes it, and the host must restart its frame
// timer then.
func (d *Drawer) PourSettled() bool { return d.pouring && !d.sim.Running() }

// PourInject drops a particle at the pour origin. It returns false when gen
// no longer matches the running pour.
func (d *Drawer) PourInject(gen uint64) bool {
	if !d.pouring || gen != d.pourGen {
		return false
	}
	d.sim.Inject(d.pourX)
	return true
}

// PourStep advances the physics one tick and redraws the particles. It
// returns false when gen is stale or the simulation has settled.
func (d *Drawer) PourStep(gen uint64) bool {
	if !d.pouring || gen != d.pourGen {
		return false
	}
	running := d.sim.Step()
	d.drawGhost()
	return running
}

// EndPour stops the pour and gives the poured label the horizontal extent
// of the particle cluster. Calling it with no pour running does nothing.
func (d *Drawer) EndPour() {
	if !d.pouring {
		return
	}
	d.pouring = false
	d.pourGen++
	d.sim.Stop()
	if lo, hi, ok := d.sim.Span(); ok {
		d.stream.Move(d.pourID, d.space.X.Invert(lo), d.space.X.Invert(hi))
	}
	d.layers[LayerGhost].Clear()
}

// Particles returns the current particle positions.
func (d *Drawer) Particles() []pour.Particle { return d.sim.Particles() }

func (d *Drawer) drawGhost() {
	l := d.layers[LayerGhost]
	l.Clear()
	c := d.colorer.ColorFor(d.stream.Name(), d.stream.ActiveType())
	for _, p := range d.sim.Particles() {
		l.Add(Circle{X: p.X, Y: p.Y, R: particleRadius, Color: c})
	}
}
