package physics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// parallelThreshold is the body count below which Kick stays on one goroutine.
const parallelThreshold = 64

// Field advances velocities by one step of gravitational acceleration.
// Implementations read positions and velocities from read only and write
// only the Velocity of each body in write.
type Field interface {
	Kick(read, write []dynamo.Body, dt float64) error
}

// PairForce is the attraction on one body towards another.
type PairForce struct {
	Magnitude float64
	Angle     float64
}

// Vec returns the force as a vector.
func (f PairForce) Vec() dynamo.Vec {
	sin, cos := math.Sincos(f.Angle)
	return dynamo.Vec{X: f.Magnitude * cos, Y: f.Magnitude * sin}
}

// Gravity is the direct O(N²) pairwise field.
type Gravity struct {
	G       float64
	Epsilon float64
	Workers int
}

func NewGravity(g, epsilon float64) *Gravity {
	return &Gravity{G: g, Epsilon: epsilon, Workers: 1}
}

// Pair returns the force exerted on a by b.
func (g *Gravity) Pair(a, b dynamo.Body) (PairForce, error) {
	d := r2.Sub(b.Position, a.Position)
	r := math.Sqrt(d.X*d.X + d.Y*d.Y)
	if r == 0 || r < g.Epsilon {
		return PairForce{}, dynamo.ErrSingularity
	}
	return PairForce{
		Magnitude: g.G * a.Mass * b.Mass / r / r,
		Angle:     math.Atan2(d.Y, d.X),
	}, nil
}

// Kick sets write[i].Velocity to read[i].Velocity plus the contribution of
// every other body, accumulated in index order.
func (g *Gravity) Kick(read, write []dynamo.Body, dt float64) error {
	n := len(read)
	if g.Workers <= 1 || n < parallelThreshold {
		return g.kickRange(read, write, dt, 0, n)
	}

	errs := make([]error, n)
	ParallelFor(n, g.Workers, parallelThreshold/4, func(start, end int) {
		errs[start] = g.kickRange(read, write, dt, start, end)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Gravity) kickRange(read, write []dynamo.Body, dt float64, start, end int) error {
	for i := start; i < end; i++ {
		bi := read[i]
		v := bi.Velocity
		for j := range read {
			if i == j {
				continue
			}
			f, err := g.Pair(bi, read[j])
			if err != nil {
				return dynamo.NewPairError(i, j, err)
			}
			sin, cos := math.Sincos(f.Angle)
			fx := f.Magnitude * cos
			fy := f.Magnitude * sin
			v.X += fx / bi.Mass * dt
			v.Y += fy / bi.Mass * dt
		}
		write[i].Velocity = v
	}
	return nil
}

// Acceleration returns the net acceleration on body i.
func (g *Gravity) Acceleration(bodies []dynamo.Body, i int) (dynamo.Vec, error) {
	var a dynamo.Vec
	for j := range bodies {
		if i == j {
			continue
		}
		f, err := g.Pair(bodies[i], bodies[j])
		if err != nil {
			return dynamo.Vec{}, dynamo.NewPairError(i, j, err)
		}
		a = r2.Add(a, r2.Scale(1/bodies[i].Mass, f.Vec()))
	}
	return a, nil
}
