package sim

import (
	"context"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Metric is an Observer that reduces a run to one number.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

// Result is what Run collects from one pass over the engine.
type Result struct {
	Frames     []dynamo.Snapshot
	Final      dynamo.Snapshot
	StepsTaken int
	Stride     int
	Metrics    map[string]float64
}

// Run drives e to completion, keeping every stride-th snapshot. Metrics are
// reset before the run and attached to the engine for its duration. On
// failure the partial result is returned together with the error.
func Run(ctx context.Context, e *Engine, stride int, metrics ...Metric) (*Result, error) {
	if stride < 1 {
		stride = 1
	}
	result := &Result{
		Frames:  make([]dynamo.Snapshot, 0, e.cfg.TotalSteps/stride+1),
		Stride:  stride,
		Metrics: make(map[string]float64),
	}

	for _, m := range metrics {
		m.Reset()
	}
	counter := &stepCounter{metrics: metrics}
	run := *e
	run.observers = append(append([]Observer(nil), e.observers...), counter)

	var runErr error
	for snap, err := range Sample(run.Snapshots(ctx), stride) {
		if err != nil {
			runErr = err
			break
		}
		result.Frames = append(result.Frames, snap)
	}

	result.StepsTaken = counter.steps
	result.Final = counter.last
	for _, m := range metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, runErr
}

type stepCounter struct {
	metrics []Metric
	steps   int
	last    dynamo.Snapshot
}

func (c *stepCounter) OnStep(s dynamo.Snapshot) {
	c.steps++
	c.last = s
	for _, m := range c.metrics {
		m.OnStep(s)
	}
}
