// Package analysis characterizes finished or running simulations.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum] and [DominantPeriod]: frequency content of one
//     coordinate of a sampled run
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(field, integ, cfg, 1e-8)
//	if err == nil && lambda > 0 {
//	    // sensitive to initial conditions
//	}
package analysis
