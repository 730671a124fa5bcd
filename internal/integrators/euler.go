package integrators

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Integrator advances read by dt into write. Both slices have the same
// length; read is never modified.
type Integrator interface {
	Step(f physics.Field, read, write []dynamo.Body, dt float64) error
}

// SemiImplicitEuler updates every velocity from start-of-step positions, then
// moves each body with its new velocity.
type SemiImplicitEuler struct{}

func NewEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(f physics.Field, read, write []dynamo.Body, dt float64) error {
	if err := f.Kick(read, write, dt); err != nil {
		return err
	}
	for i := range read {
		write[i].Mass = read[i].Mass
		write[i].Position = r2.Add(read[i].Position, r2.Scale(dt, write[i].Velocity))
	}
	return nil
}
