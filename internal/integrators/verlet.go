package integrators

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Leapfrog is kick-drift-kick velocity Verlet. It evaluates the field twice
// per step and is second order, unlike SemiImplicitEuler.
type Leapfrog struct {
	mid []dynamo.Body
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(f physics.Field, read, write []dynamo.Body, dt float64) error {
	n := len(read)
	if len(l.mid) != n {
		l.mid = make([]dynamo.Body, n)
	}
	halfDt := dt * 0.5

	copy(l.mid, read)
	if err := f.Kick(read, l.mid, halfDt); err != nil {
		return err
	}

	for i := range l.mid {
		l.mid[i].Position = r2.Add(read[i].Position, r2.Scale(dt, l.mid[i].Velocity))
	}

	if err := f.Kick(l.mid, write, halfDt); err != nil {
		return err
	}
	for i := range l.mid {
		write[i].Mass = l.mid[i].Mass
		write[i].Position = l.mid[i].Position
	}
	return nil
}
