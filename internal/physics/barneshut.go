package physics

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// BarnesHut approximates the field with a quadtree. Theta is the opening
// angle; zero degenerates to the exact sum. Coincident bodies exert no force
// on each other here, so singular configurations surface only through the
// engine's finiteness check.
type BarnesHut struct {
	G     float64
	Theta float64

	particles []barneshut.Particle2
	bodies    []particle
}

type particle struct {
	pos  r2.Vec
	mass float64
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return p.mass }

func NewBarnesHut(g, theta float64) *BarnesHut {
	return &BarnesHut{G: g, Theta: theta}
}

func (bh *BarnesHut) Kick(read, write []dynamo.Body, dt float64) error {
	n := len(read)
	if len(bh.bodies) != n {
		bh.bodies = make([]particle, n)
		bh.particles = make([]barneshut.Particle2, n)
		for i := range bh.bodies {
			bh.particles[i] = &bh.bodies[i]
		}
	}
	for i, b := range read {
		bh.bodies[i] = particle{pos: b.Position, mass: b.Mass}
	}

	plane := barneshut.Plane{Particles: bh.particles}
	if err := plane.Reset(); err != nil {
		return err
	}

	for i, b := range read {
		f := plane.ForceOn(bh.particles[i], bh.Theta, barneshut.Gravity2)
		write[i].Velocity = r2.Add(b.Velocity, r2.Scale(bh.G/b.Mass*dt, f))
	}
	return nil
}
