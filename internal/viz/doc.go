// Package viz renders simulations in the terminal.
//
//   - [Canvas]: braille dot canvas with per-cell body colouring
//   - [Trajectory] and [SeriesPlot]: static previews of sampled frames
//   - [Model]: bubbletea live view pulling snapshots straight from an engine
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial bodies
//	Q     - Quit
package viz
