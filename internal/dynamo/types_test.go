package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(c *Config)
		field string
	}{
		{"zero time step", func(c *Config) { c.TimeStep = 0 }, "time_step"},
		{"negative time step", func(c *Config) { c.TimeStep = -0.1 }, "time_step"},
		{"NaN time step", func(c *Config) { c.TimeStep = math.NaN() }, "time_step"},
		{"zero steps", func(c *Config) { c.TotalSteps = 0 }, "total_steps"},
		{"no bodies", func(c *Config) { c.Bodies = nil }, "bodies"},
		{"zero mass", func(c *Config) { c.Bodies[1].Mass = 0 }, "bodies"},
		{"negative mass", func(c *Config) { c.Bodies[2].Mass = -1 }, "bodies"},
		{"infinite position", func(c *Config) { c.Bodies[0].Position.X = math.Inf(1) }, "bodies"},
		{"zero G", func(c *Config) { c.G = 0 }, "g"},
		{"negative epsilon", func(c *Config) { c.Epsilon = -1 }, "epsilon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("expected field %q, got %v", tt.field, err)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Field: "bodies", Index: 2, Reason: "mass must be positive"}
	expected := "dynamo: invalid configuration: bodies[2]: mass must be positive"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	bodies := DefaultConfig().Bodies
	snap := NewSnapshot(3, 0.03, bodies)

	bodies[0].Position.X = 42
	if snap.Bodies[0].Position.X == 42 {
		t.Fatal("NewSnapshot shares storage with its input")
	}

	c := snap.Clone()
	c.Bodies[1].Velocity.Y = 7
	if snap.Bodies[1].Velocity.Y == 7 {
		t.Error("Clone shares storage with the original")
	}
	if c.Step != 3 || c.Time != 0.03 {
		t.Errorf("Clone lost metadata: %+v", c)
	}
}

func TestSnapshot_IsFinite(t *testing.T) {
	snap := NewSnapshot(0, 0, DefaultConfig().Bodies)
	if !snap.IsFinite() {
		t.Fatal("expected finite snapshot")
	}
	snap.Bodies[2].Velocity.X = math.NaN()
	if snap.IsFinite() {
		t.Error("NaN velocity not detected")
	}
}

func TestSimulationError(t *testing.T) {
	err := NewPairError(0, 2, ErrSingularity)
	err.Step, err.Time = 12, 0.12
	expected := "step 12 (t=0.1200): bodies 0 and 2: dynamo: bodies coincide (singular force)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrSingularity) {
		t.Error("SimulationError does not unwrap to ErrSingularity")
	}

	plain := &SimulationError{Step: 5, Time: 0.05, Pair: [2]int{-1, -1}, Wrapped: ErrInvalidState}
	if plain.Error() != "step 5 (t=0.0500): dynamo: invalid state (NaN or Inf detected)" {
		t.Errorf("unexpected message %q", plain.Error())
	}
}
