package physics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Energy returns kinetic plus pairwise potential energy. Coincident pairs are
// skipped rather than reported as infinite.
func Energy(bodies []dynamo.Body, g float64) float64 {
	ke := 0.0
	pe := 0.0

	for i, bi := range bodies {
		ke += 0.5 * bi.Mass * r2.Norm2(bi.Velocity)

		for j := i + 1; j < len(bodies); j++ {
			r := r2.Norm(r2.Sub(bodies[j].Position, bi.Position))
			if r == 0 {
				continue
			}
			pe -= g * bi.Mass * bodies[j].Mass / r
		}
	}

	return ke + pe
}

func Momentum(bodies []dynamo.Body) dynamo.Vec {
	var p dynamo.Vec
	for _, b := range bodies {
		p = r2.Add(p, r2.Scale(b.Mass, b.Velocity))
	}
	return p
}

func AngularMomentum(bodies []dynamo.Body) float64 {
	L := 0.0
	for _, b := range bodies {
		L += b.Mass * r2.Cross(b.Position, b.Velocity)
	}
	return L
}

// Centroid returns the mass-weighted centre of the system.
func Centroid(bodies []dynamo.Body) dynamo.Vec {
	var c dynamo.Vec
	total := 0.0
	for _, b := range bodies {
		c = r2.Add(c, r2.Scale(b.Mass, b.Position))
		total += b.Mass
	}
	if total == 0 {
		return dynamo.Vec{}
	}
	return r2.Scale(1/total, c)
}

// MinSeparation returns the smallest pairwise distance, or +Inf for fewer
// than two bodies.
func MinSeparation(bodies []dynamo.Body) float64 {
	best := math.Inf(1)
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := r2.Norm(r2.Sub(bodies[j].Position, bodies[i].Position))
			if r < best {
				best = r
			}
		}
	}
	return best
}
