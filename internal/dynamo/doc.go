// Package dynamo provides the core value types of the gravity simulation.
//
// The package defines the state model shared by every other package:
//
//   - [Vec]: a 2D vector (position, velocity, force)
//   - [Body]: a point mass with position and velocity
//   - [Snapshot]: the state of all bodies at one step
//   - [Config]: a validated, immutable run description
//
// # Ownership
//
// A [Snapshot] owns its Bodies slice. Snapshots handed out by the engine are
// never written again, so consumers may keep them for as long as they like.
// Use [Snapshot.Clone] before modifying one.
package dynamo
