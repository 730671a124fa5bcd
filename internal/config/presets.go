package config

import (
	"math"
	"sort"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Presets are named starting configurations. GetPreset returns copies, so
// callers may modify what they get.
var Presets = map[string]func() *Config{
	"reference": func() *Config {
		cfg := DefaultConfig()
		cfg.TotalSteps = 100_000_000
		return cfg
	},
	"lagrange": func() *Config {
		// Equilateral triangle of side √3 rotating rigidly about its centroid.
		cfg := unitPreset(0.001, 50_000)
		v := math.Pow(3, -0.25)
		for _, deg := range []float64{90, 210, 330} {
			a := deg * math.Pi / 180
			s, c := math.Sincos(a)
			cfg.Bodies = append(cfg.Bodies, dynamo.Body{
				Mass:     1,
				Position: dynamo.Vec{X: c, Y: s},
				Velocity: dynamo.Vec{X: -v * s, Y: v * c},
			})
		}
		return cfg
	},
	"binary": func() *Config {
		cfg := unitPreset(0.001, 20_000)
		v := math.Sqrt(0.5)
		cfg.Bodies = []dynamo.Body{
			{Mass: 1, Position: dynamo.Vec{X: -0.5}, Velocity: dynamo.Vec{Y: -v}},
			{Mass: 1, Position: dynamo.Vec{X: 0.5}, Velocity: dynamo.Vec{Y: v}},
		}
		return cfg
	},
	"figure8": func() *Config {
		cfg := unitPreset(0.001, 20_000)
		cfg.Integrator = "leapfrog"
		cfg.Bodies = []dynamo.Body{
			{Mass: 1, Position: dynamo.Vec{X: -0.97000436, Y: 0.24308753}, Velocity: dynamo.Vec{X: 0.466203685, Y: 0.43236573}},
			{Mass: 1, Position: dynamo.Vec{X: 0.97000436, Y: -0.24308753}, Velocity: dynamo.Vec{X: 0.466203685, Y: 0.43236573}},
			{Mass: 1, Position: dynamo.Vec{}, Velocity: dynamo.Vec{X: -0.93240737, Y: -0.86473146}},
		}
		return cfg
	},
}

// unitPreset is a G = 1 configuration with no bodies.
func unitPreset(dt float64, steps int) *Config {
	cfg := DefaultConfig()
	cfg.G = 1
	cfg.TimeStep = dt
	cfg.TotalSteps = steps
	cfg.Bodies = nil
	return cfg
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
