// Package physics computes gravitational interactions between bodies.
//
// Two fields implement [Field]:
//
//   - [Gravity]: exact pairwise Newtonian attraction, optionally split over
//     goroutines for large N
//   - [BarnesHut]: quadtree approximation backed by gonum's barneshut package
//
// Both read a consistent start-of-step state and never write to it, so the
// order in which bodies are visited does not change the result.
//
// # Conservation
//
// [Energy], [Momentum] and [AngularMomentum] are provided for diagnostics:
//
//	e0 := physics.Energy(snap.Bodies, dynamo.G)
package physics
