// Package sim runs the fixed-step simulation and samples its output.
//
// [Engine.Snapshots] yields one [dynamo.Snapshot] per step. [Sample] thins
// that sequence to every stride-th step without skipping any physics, and
// [Run] collects a sampled run into a [Result]:
//
//	e, _ := sim.New(cfg)
//	stride := sim.Stride(cfg.TotalSteps, sim.FrameCount(30, 40))
//	for snap, err := range sim.Sample(e.Snapshots(ctx), stride) {
//	    ...
//	}
package sim
