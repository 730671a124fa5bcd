package integrators

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// RK4 is the classical fourth-order Runge-Kutta method on positions and
// velocities. It evaluates the field four times per step. Accelerations are
// read off the field as the kick it gives a body at rest over unit time.
type RK4 struct {
	k1, k2, k3, k4 []dynamo.Body
	scratch        []dynamo.Body
	acc            []dynamo.Body
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make([]dynamo.Body, n)
		r.k2 = make([]dynamo.Body, n)
		r.k3 = make([]dynamo.Body, n)
		r.k4 = make([]dynamo.Body, n)
		r.scratch = make([]dynamo.Body, n)
		r.acc = make([]dynamo.Body, n)
	}
}

// derive stores (velocity, acceleration) of state into k as
// (Position, Velocity).
func (r *RK4) derive(f physics.Field, state, k []dynamo.Body) error {
	for i, b := range state {
		r.acc[i] = dynamo.Body{Mass: b.Mass, Position: b.Position}
	}
	if err := f.Kick(r.acc, k, 1); err != nil {
		return err
	}
	for i, b := range state {
		k[i].Mass = b.Mass
		k[i].Position = b.Velocity
	}
	return nil
}

// advance sets scratch = x + h*k.
func (r *RK4) advance(x, k []dynamo.Body, h float64) {
	for i, b := range x {
		r.scratch[i] = dynamo.Body{
			Mass:     b.Mass,
			Position: r2.Add(b.Position, r2.Scale(h, k[i].Position)),
			Velocity: r2.Add(b.Velocity, r2.Scale(h, k[i].Velocity)),
		}
	}
}

func (r *RK4) Step(f physics.Field, read, write []dynamo.Body, dt float64) error {
	r.ensureScratch(len(read))

	if err := r.derive(f, read, r.k1); err != nil {
		return err
	}
	r.advance(read, r.k1, dt*0.5)
	if err := r.derive(f, r.scratch, r.k2); err != nil {
		return err
	}
	r.advance(read, r.k2, dt*0.5)
	if err := r.derive(f, r.scratch, r.k3); err != nil {
		return err
	}
	r.advance(read, r.k3, dt)
	if err := r.derive(f, r.scratch, r.k4); err != nil {
		return err
	}

	dt6 := dt / 6.0
	for i, b := range read {
		dp := r2.Add(r2.Add(r.k1[i].Position, r2.Scale(2, r.k2[i].Position)), r2.Add(r2.Scale(2, r.k3[i].Position), r.k4[i].Position))
		dv := r2.Add(r2.Add(r.k1[i].Velocity, r2.Scale(2, r.k2[i].Velocity)), r2.Add(r2.Scale(2, r.k3[i].Velocity), r.k4[i].Velocity))
		write[i] = dynamo.Body{
			Mass:     b.Mass,
			Position: r2.Add(b.Position, r2.Scale(dt6, dp)),
			Velocity: r2.Add(b.Velocity, r2.Scale(dt6, dv)),
		}
	}
	return nil
}
