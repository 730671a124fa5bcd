package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// LyapunovExponent estimates the largest Lyapunov exponent of cfg by
// following a copy whose first body is displaced by perturbation along x.
// After every step the separation in phase space is measured and the copy
// is pulled back to distance perturbation along the same direction.
//
//	λ ≈ Σ ln(d_k / d0) / (n·dt)
//
// A positive value indicates chaos.
func LyapunovExponent(f physics.Field, integ integrators.Integrator, cfg dynamo.Config, perturbation float64) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if !(perturbation > 0) {
		return 0, errors.New("analysis: perturbation must be positive")
	}

	x := dynamo.CloneBodies(cfg.Bodies)
	xw := dynamo.CloneBodies(cfg.Bodies)
	xp := dynamo.CloneBodies(cfg.Bodies)
	xpw := dynamo.CloneBodies(cfg.Bodies)
	xp[0].Position.X += perturbation

	dt := cfg.TimeStep
	sumLog := 0.0
	for step := 0; step < cfg.TotalSteps; step++ {
		if err := integ.Step(f, x, xw, dt); err != nil {
			return 0, err
		}
		if err := integ.Step(f, xp, xpw, dt); err != nil {
			return 0, err
		}
		x, xw = xw, x
		xp, xpw = xpw, xp

		sep := separation(x, xp)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, dynamo.ErrInvalidState
		}
		sumLog += math.Log(sep / perturbation)
		renormalize(x, xp, perturbation/sep)
	}

	return sumLog / (float64(cfg.TotalSteps) * dt), nil
}

func separation(a, b []dynamo.Body) float64 {
	sum := 0.0
	for i := range a {
		sum += r2.Norm2(r2.Sub(b[i].Position, a[i].Position))
		sum += r2.Norm2(r2.Sub(b[i].Velocity, a[i].Velocity))
	}
	return math.Sqrt(sum)
}

func renormalize(ref, pert []dynamo.Body, scale float64) {
	for i := range pert {
		pert[i].Position = r2.Add(ref[i].Position, r2.Scale(scale, r2.Sub(pert[i].Position, ref[i].Position)))
		pert[i].Velocity = r2.Add(ref[i].Velocity, r2.Scale(scale, r2.Sub(pert[i].Velocity, ref[i].Velocity)))
	}
}
