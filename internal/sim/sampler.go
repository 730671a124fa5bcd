package sim

import (
	"iter"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Stride returns the sampling interval that keeps about frames snapshots out
// of totalSteps. It is never below 1; frames <= 0 keeps every step.
func Stride(totalSteps, frames int) int {
	if frames <= 0 {
		return 1
	}
	s := totalSteps / frames
	if s < 1 {
		return 1
	}
	return s
}

// FrameCount is the number of frames an animation of the given length needs.
func FrameCount(fps, seconds int) int {
	return fps * seconds
}

// Sample keeps the snapshots whose step is a multiple of stride, step 0
// included. Every upstream snapshot is still pulled, so no physics is
// skipped. Errors pass through unchanged.
func Sample(seq iter.Seq2[dynamo.Snapshot, error], stride int) iter.Seq2[dynamo.Snapshot, error] {
	if stride < 1 {
		stride = 1
	}
	return func(yield func(dynamo.Snapshot, error) bool) {
		for snap, err := range seq {
			if err != nil {
				yield(snap, err)
				return
			}
			if snap.Step%stride != 0 {
				continue
			}
			if !yield(snap, nil) {
				return
			}
		}
	}
}
