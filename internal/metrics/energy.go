package metrics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// EnergyDrift tracks the largest relative departure of total energy from
// its value at the first observed step.
type EnergyDrift struct {
	name          string
	g             float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(g float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", g: g}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnStep(s dynamo.Snapshot) {
	energy := physics.Energy(s.Bodies, e.g)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest |P - P0| seen.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vec
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) OnStep(s dynamo.Snapshot) {
	p := physics.Momentum(s.Bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, r2.Norm(r2.Sub(p, m.initial)))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec{}
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift tracks the largest |L - L0| about the origin.
type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (m *AngularMomentumDrift) Name() string { return m.name }

func (m *AngularMomentumDrift) OnStep(s dynamo.Snapshot) {
	l := physics.AngularMomentum(s.Bodies)
	if m.samples == 0 {
		m.initial = l
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Abs(l-m.initial))
}

func (m *AngularMomentumDrift) Value() float64 { return m.maxDrift }

func (m *AngularMomentumDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// MinSeparation records the closest approach between any two bodies.
type MinSeparation struct {
	name string
	min  float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) OnStep(s dynamo.Snapshot) {
	m.min = math.Min(m.min, physics.MinSeparation(s.Bodies))
}

func (m *MinSeparation) Value() float64 { return m.min }

func (m *MinSeparation) Reset() { m.min = math.Inf(1) }
