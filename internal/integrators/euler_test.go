package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
)

// circularBinary returns two unit masses on a circular orbit of separation 1
// around the origin under G = 1.
func circularBinary() []dynamo.Body {
	v := math.Sqrt(0.5)
	return []dynamo.Body{
		{Mass: 1, Position: dynamo.Vec{X: -0.5}, Velocity: dynamo.Vec{Y: -v}},
		{Mass: 1, Position: dynamo.Vec{X: 0.5}, Velocity: dynamo.Vec{Y: v}},
	}
}

func TestEulerStep_MatchesHandComputation(t *testing.T) {
	g := physics.NewGravity(1, 0)
	read := []dynamo.Body{
		{Mass: 1, Position: dynamo.Vec{X: 0}},
		{Mass: 2, Position: dynamo.Vec{X: 2}},
	}
	write := make([]dynamo.Body, 2)
	dt := 0.1

	if err := NewEuler().Step(g, read, write, dt); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	// F = 1*1*2/4 = 0.5; a0 = 0.5, a1 = -0.25
	wantV0, wantV1 := 0.5*dt, -0.25*dt
	if math.Abs(write[0].Velocity.X-wantV0) > 1e-15 || math.Abs(write[1].Velocity.X-wantV1) > 1e-15 {
		t.Errorf("velocities: got %g, %g want %g, %g", write[0].Velocity.X, write[1].Velocity.X, wantV0, wantV1)
	}
	// positions advance with the updated velocity
	if math.Abs(write[0].Position.X-wantV0*dt) > 1e-15 || math.Abs(write[1].Position.X-(2+wantV1*dt)) > 1e-15 {
		t.Errorf("positions: got %g, %g", write[0].Position.X, write[1].Position.X)
	}
	if write[0].Mass != 1 || write[1].Mass != 2 {
		t.Errorf("masses not carried over: %g, %g", write[0].Mass, write[1].Mass)
	}
	if read[0].Velocity.X != 0 || read[1].Position.X != 2 {
		t.Error("read buffer modified")
	}
}

func TestLeapfrog_ConservesEnergyBetterThanEuler(t *testing.T) {
	g := physics.NewGravity(1, 0)
	dt := 0.01
	steps := 2000

	drift := func(integ Integrator) float64 {
		read := circularBinary()
		write := make([]dynamo.Body, len(read))
		e0 := physics.Energy(read, 1)
		worst := 0.0
		for i := 0; i < steps; i++ {
			if err := integ.Step(g, read, write, dt); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
			read, write = write, read
			worst = math.Max(worst, math.Abs(physics.Energy(read, 1)-e0)/math.Abs(e0))
		}
		return worst
	}

	euler := drift(NewEuler())
	leap := drift(NewLeapfrog())
	if leap >= euler {
		t.Errorf("expected leapfrog drift (%g) below euler drift (%g)", leap, euler)
	}
	if leap > 1e-3 {
		t.Errorf("leapfrog drift too large: %g", leap)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		integ, err := Lookup(name)
		if err != nil || integ == nil {
			t.Errorf("Lookup(%q) = %v, %v", name, integ, err)
		}
	}
	if _, err := Lookup("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if got := Names(); len(got) != 3 || got[0] != "euler" || got[1] != "leapfrog" || got[2] != "rk4" {
		t.Errorf("unexpected names %v", got)
	}
}
