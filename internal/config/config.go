package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeStep         = 0.01
	DefaultTotalSteps       = 1_000_000
	DefaultTheta            = 0.5
	DefaultFPS              = 30
	DefaultLength           = 40
	DefaultSize             = 250
	DefaultScale            = 100.0
	DefaultExtent           = 100
	DefaultProgressInterval = 1000
)

type Config struct {
	TimeStep         float64         `yaml:"time_step"`
	TotalSteps       int             `yaml:"total_steps"`
	G                float64         `yaml:"g"`
	Epsilon          float64         `yaml:"epsilon"`
	Integrator       string          `yaml:"integrator"`
	Field            string          `yaml:"field"`
	Theta            float64         `yaml:"theta"`
	Workers          int             `yaml:"workers"`
	ValidateState    bool            `yaml:"validate_state"`
	Bodies           []dynamo.Body   `yaml:"bodies"`
	Animation        AnimationConfig `yaml:"animation"`
	Render           RenderConfig    `yaml:"render"`
	ProgressInterval int             `yaml:"progress_interval"`
	Output           OutputConfig    `yaml:"output"`
}

type AnimationConfig struct {
	FPS    int `yaml:"fps"`
	Length int `yaml:"length"`
}

type RenderConfig struct {
	Size   int     `yaml:"size"`
	Scale  float64 `yaml:"scale"`
	Extent int     `yaml:"extent"`
}

type OutputConfig struct {
	PNG string `yaml:"png"`
	GIF string `yaml:"gif"`
}

func DefaultConfig() *Config {
	ref := dynamo.DefaultConfig()
	return &Config{
		TimeStep:      DefaultTimeStep,
		TotalSteps:    DefaultTotalSteps,
		G:             dynamo.G,
		Epsilon:       dynamo.DefaultEpsilon,
		Integrator:    "euler",
		Field:         "direct",
		Theta:         DefaultTheta,
		Workers:       1,
		ValidateState: true,
		Bodies:        ref.Bodies,
		Animation: AnimationConfig{
			FPS:    DefaultFPS,
			Length: DefaultLength,
		},
		Render: RenderConfig{
			Size:   DefaultSize,
			Scale:  DefaultScale,
			Extent: DefaultExtent,
		},
		ProgressInterval: DefaultProgressInterval,
		Output: OutputConfig{
			PNG: "three_body.png",
			GIF: "three_body.gif",
		},
	}
}

// Load reads a YAML file on top of DefaultConfig, so omitted keys keep
// their defaults. A file that lists bodies replaces the default bodies.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Bodies == nil {
		cfg.Bodies = dynamo.DefaultConfig().Bodies
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Engine returns the validated physical part of the configuration.
func (c *Config) Engine() (dynamo.Config, error) {
	ec := dynamo.Config{
		TimeStep:   c.TimeStep,
		TotalSteps: c.TotalSteps,
		Bodies:     dynamo.CloneBodies(c.Bodies),
		G:          c.G,
		Epsilon:    c.Epsilon,
	}
	if err := ec.Validate(); err != nil {
		return dynamo.Config{}, err
	}
	return ec, nil
}

// Validate checks the whole configuration, including the animation and
// render sections that the engine never sees, so a bad value is reported
// before any step is simulated.
func (c *Config) Validate() error {
	if _, err := c.Engine(); err != nil {
		return err
	}
	positive := []struct {
		field string
		ok    bool
		value any
	}{
		{"animation.fps", c.Animation.FPS > 0, c.Animation.FPS},
		{"animation.length", c.Animation.Length > 0, c.Animation.Length},
		{"render.size", c.Render.Size > 0, c.Render.Size},
		{"render.scale", c.Render.Scale > 0 && !math.IsInf(c.Render.Scale, 0), c.Render.Scale},
		{"render.extent", c.Render.Extent > 0, c.Render.Extent},
	}
	for _, p := range positive {
		if !p.ok {
			return &dynamo.ConfigError{Field: p.field, Index: -1, Reason: fmt.Sprintf("must be positive, got %v", p.value)}
		}
	}
	if c.ProgressInterval < 0 {
		return &dynamo.ConfigError{Field: "progress_interval", Index: -1, Reason: fmt.Sprintf("must not be negative, got %d", c.ProgressInterval)}
	}
	if c.Workers < 0 {
		return &dynamo.ConfigError{Field: "workers", Index: -1, Reason: fmt.Sprintf("must not be negative, got %d", c.Workers)}
	}
	if c.Field == "barneshut" && !(c.Theta >= 0) {
		return &dynamo.ConfigError{Field: "theta", Index: -1, Reason: fmt.Sprintf("must not be negative, got %g", c.Theta)}
	}
	if _, err := c.NewField(); err != nil {
		return err
	}
	if _, err := c.NewIntegrator(); err != nil {
		return err
	}
	return nil
}

func (c *Config) NewField() (physics.Field, error) {
	switch c.Field {
	case "", "direct":
		g := physics.NewGravity(c.G, c.Epsilon)
		if c.Workers > 1 {
			g.Workers = c.Workers
		}
		return g, nil
	case "barneshut":
		return physics.NewBarnesHut(c.G, c.Theta), nil
	default:
		return nil, &dynamo.ConfigError{Field: "field", Index: -1, Reason: fmt.Sprintf("unknown field %q (available: direct, barneshut)", c.Field)}
	}
}

func (c *Config) NewIntegrator() (integrators.Integrator, error) {
	name := c.Integrator
	if name == "" {
		name = "euler"
	}
	integ, err := integrators.Lookup(name)
	if err != nil {
		return nil, &dynamo.ConfigError{Field: "integrator", Index: -1, Reason: err.Error()}
	}
	return integ, nil
}

// NewEngine validates the configuration and builds a simulation engine from
// it. Extra options are applied after the configured field, integrator and
// state check.
func (c *Config) NewEngine(opts ...sim.Option) (*sim.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ec, err := c.Engine()
	if err != nil {
		return nil, err
	}
	field, err := c.NewField()
	if err != nil {
		return nil, err
	}
	integ, err := c.NewIntegrator()
	if err != nil {
		return nil, err
	}
	all := append([]sim.Option{
		sim.WithField(field),
		sim.WithIntegrator(integ),
		sim.WithValidateState(c.ValidateState),
	}, opts...)
	return sim.New(ec, all...)
}

// Frames is the number of animation frames the run should produce.
func (c *Config) Frames() int {
	return sim.FrameCount(c.Animation.FPS, c.Animation.Length)
}

// Stride is the number of physics steps between kept frames.
func (c *Config) Stride() int {
	return sim.Stride(c.TotalSteps, c.Frames())
}

// Radius is the half-width of the rendered area in simulation units.
func (c *Config) Radius() float64 {
	if c.Render.Scale <= 0 {
		return float64(c.Render.Extent)
	}
	return float64(c.Render.Extent) / c.Render.Scale
}
