package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// G is the Newtonian gravitational constant in m³ kg⁻¹ s⁻².
const G = 6.67430e-11

// DefaultEpsilon is the smallest pair separation accepted before a step is
// reported as singular.
const DefaultEpsilon = 1e-9

type Vec = r2.Vec

// Body is a point mass. Mass never changes after creation.
type Body struct {
	Mass     float64 `json:"mass" yaml:"mass"`
	Position Vec     `json:"position" yaml:"position"`
	Velocity Vec     `json:"velocity" yaml:"velocity"`
}

func (b Body) IsFinite() bool {
	return finite(b.Mass) &&
		finite(b.Position.X) && finite(b.Position.Y) &&
		finite(b.Velocity.X) && finite(b.Velocity.Y)
}

// Snapshot is the state of every body at the end of one step.
type Snapshot struct {
	Time   float64 `json:"time"`
	Step   int     `json:"step"`
	Bodies []Body  `json:"bodies"`
}

// NewSnapshot copies bodies into a freshly allocated snapshot.
func NewSnapshot(step int, t float64, bodies []Body) Snapshot {
	return Snapshot{Time: t, Step: step, Bodies: CloneBodies(bodies)}
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{Time: s.Time, Step: s.Step, Bodies: CloneBodies(s.Bodies)}
}

func (s Snapshot) Positions() []Vec {
	out := make([]Vec, len(s.Bodies))
	for i, b := range s.Bodies {
		out[i] = b.Position
	}
	return out
}

func (s Snapshot) IsFinite() bool {
	for _, b := range s.Bodies {
		if !b.IsFinite() {
			return false
		}
	}
	return true
}

func CloneBodies(bodies []Body) []Body {
	c := make([]Body, len(bodies))
	copy(c, bodies)
	return c
}

// Config describes one run. It is validated once and never mutated.
type Config struct {
	TimeStep   float64
	TotalSteps int
	Bodies     []Body
	G          float64
	Epsilon    float64
}

// DefaultConfig returns the three unit masses of the reference scenario at rest.
func DefaultConfig() Config {
	return Config{
		TimeStep:   0.01,
		TotalSteps: 1000,
		G:          G,
		Epsilon:    DefaultEpsilon,
		Bodies: []Body{
			{Mass: 1, Position: Vec{X: 0.3089693008, Y: 0.4236727692}},
			{Mass: 1, Position: Vec{X: -0.5, Y: 0}},
			{Mass: 1, Position: Vec{X: 0.5, Y: 0}},
		},
	}
}

func (c Config) Validate() error {
	if !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0) {
		return fieldError("time_step", "must be positive and finite")
	}
	if c.TotalSteps <= 0 {
		return fieldError("total_steps", "must be positive")
	}
	if len(c.Bodies) == 0 {
		return fieldError("bodies", "at least one body is required")
	}
	if !(c.G > 0) || math.IsInf(c.G, 0) {
		return fieldError("g", "must be positive and finite")
	}
	if !(c.Epsilon >= 0) || math.IsInf(c.Epsilon, 0) {
		return fieldError("epsilon", "must be non-negative and finite")
	}
	for i, b := range c.Bodies {
		if !(b.Mass > 0) {
			return &ConfigError{Field: "bodies", Index: i, Reason: "mass must be positive"}
		}
		if !b.IsFinite() {
			return &ConfigError{Field: "bodies", Index: i, Reason: "non-finite mass, position or velocity"}
		}
	}
	return nil
}

func fieldError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Index: -1, Reason: reason}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
