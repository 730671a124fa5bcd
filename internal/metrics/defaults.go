package metrics

import "github.com/san-kum/threebody/internal/sim"

// Defaults returns the diagnostics reported for every run. radius is the
// half-width of the rendered area in simulation units.
func Defaults(g, radius float64) []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(g),
		NewMomentumDrift(),
		NewAngularMomentumDrift(),
		NewMinSeparation(),
		NewBounded(radius),
	}
}
