// Package pour runs the particle simulation behind pour-mode labelling.
//
// Particles are dropped at a pixel x, fall toward the energy curve and roll
// toward lower energy. The settled cluster's horizontal span becomes the
// extent of the poured label.
package pour

import "math"

const (
	// Separation is the minimum distance kept between two particles.
	Separation = 5.0
	// RollDX is the finite-difference offset used to estimate the slope.
	RollDX = 10.0

	alphaStart    = 1.0
	alphaMin      = 0.001
	alphaDecay    = 0.001
	velocityDecay = 0.4
	strength      = 0.1
)

// HeightFunc returns the pixel y of the energy surface at pixel x.
type HeightFunc func(x float64) float64

// Particle is one simulated grain in pixel space.
type Particle struct {
	X, Y   float64
	VX, VY float64
}

// Simulation is a small force simulation stepped by the caller. It is not
// safe for concurrent use; the UI loop owns it.
type Simulation struct {
	particles []Particle
	height    HeightFunc
	alpha     float64
	active    bool
}

// New returns a stopped simulation over the given height function.
func New(h HeightFunc) *Simulation {
	if h == nil {
		h = func(float64) float64 { return 0 }
	}
	return &Simulation{height: h}
}

// Start clears any previous particles and begins a new pour.
func (s *Simulation) Start() {
	s.particles = s.particles[:0]
	s.alpha = alphaStart
	s.active = true
}

// Running reports whether the simulation is still stepping: it has been
// started, not stopped, and has not settled.
func (s *Simulation) Running() bool { return s.active && s.alpha >= alphaMin }

// Stop halts the simulation. Stopping a stopped simulation does nothing.
func (s *Simulation) Stop() { s.active = false }

// Inject drops a particle at pixel x on the top edge and re-heats the
// simulation, so a settled pour starts moving again. It is ignored once the
// simulation has been stopped.
func (s *Simulation) Inject(x float64) {
	if !s.active {
		return
	}
	s.particles = append(s.particles, Particle{X: x})
	s.alpha = alphaStart
}

// Len returns the number of particles.
func (s *Simulation) Len() int { return len(s.particles) }

// Particles returns a copy of the current particle positions.
func (s *Simulation) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// Roll returns the horizontal target for a particle at x: it drifts toward
// the side where the surface drops away more steeply.
func (s *Simulation) Roll(x float64) float64 {
	h0 := s.height(x)
	left := (h0 - s.height(x-RollDX)) / (RollDX * 2)
	right := (h0 - s.height(x+RollDX)) / (RollDX * 2)
	return x + left - right
}

// Step advances the simulation by one tick and reports whether it is still
// running afterwards.
func (s *Simulation) Step() bool {
	if !s.Running() {
		return false
	}
	s.alpha += (0 - s.alpha) * alphaDecay
	s.collide()
	for i := range s.particles {
		p := &s.particles[i]
		p.VY += (s.height(p.X) - p.Y) * strength * s.alpha
		p.VX += (s.Roll(p.X) - p.X) * strength * s.alpha
	}
	for i := range s.particles {
		p := &s.particles[i]
		p.VX *= 1 - velocityDecay
		p.VY *= 1 - velocityDecay
		p.X += p.VX
		p.Y += p.VY
	}
	return s.Running()
}

// Span returns the horizontal pixel extent of the particle cluster.
func (s *Simulation) Span() (lo, hi float64, ok bool) {
	if len(s.particles) == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range s.particles {
		lo = math.Min(lo, p.X)
		hi = math.Max(hi, p.X)
	}
	return lo, hi, true
}

// collide pushes apart every pair closer than Separation, splitting the
// correction evenly and using the positions predicted by current velocity.
func (s *Simulation) collide() {
	for i := range s.particles {
		a := &s.particles[i]
		for j := i + 1; j < len(s.particles); j++ {
			b := &s.particles[j]
			dx := (a.X + a.VX) - (b.X + b.VX)
			dy := (a.Y + a.VY) - (b.Y + b.VY)
			d2 := dx*dx + dy*dy
			if d2 >= Separation*Separation {
				continue
			}
			if d2 == 0 {
				dx, dy = jiggle(i, j), jiggle(j, i)
				d2 = dx*dx + dy*dy
			}
			d := math.Sqrt(d2)
			l := (Separation - d) / d * 0.5
			dx, dy = dx*l, dy*l
			a.VX += dx
			a.VY += dy
			b.VX -= dx
			b.VY -= dy
		}
	}
}

// jiggle separates coincident particles by a tiny deterministic offset.
func jiggle(i, j int) float64 {
	return float64((i*31+j*17)%13+1) * 1e-6
}
