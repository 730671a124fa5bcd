package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a run description that cannot be simulated.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrSingularity indicates two bodies closer than the configured epsilon.
	ErrSingularity = errors.New("dynamo: bodies coincide (singular force)")

	// ErrInvalidState indicates a NaN or Inf appeared in the state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// ConfigError reports the offending field of a rejected Config. Index is the
// body index for per-body problems and -1 otherwise.
type ConfigError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %s[%d]: %s", ErrInvalidConfig, e.Field, e.Index, e.Reason)
	}
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SimulationError wraps an error with simulation context. Pair holds the
// offending body indices, or -1 when no pair is involved.
type SimulationError struct {
	Step    int
	Time    float64
	Pair    [2]int
	Wrapped error
}

// NewPairError builds a SimulationError for bodies i and j. The engine fills
// in Step and Time.
func NewPairError(i, j int, err error) *SimulationError {
	return &SimulationError{Pair: [2]int{i, j}, Wrapped: err}
}

func (e *SimulationError) Error() string {
	if e.Pair[0] >= 0 && e.Pair[1] >= 0 {
		return fmt.Sprintf("step %d (t=%.4f): bodies %d and %d: %v", e.Step, e.Time, e.Pair[0], e.Pair[1], e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
