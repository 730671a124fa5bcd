package sim

import (
	"context"
	"errors"
	"iter"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

// Observer is notified of every snapshot the engine produces, sampled or not.
// Observers must not modify the snapshot.
type Observer interface {
	OnStep(s dynamo.Snapshot)
}

type Option func(*Engine)

func WithField(f physics.Field) Option {
	return func(e *Engine) { e.field = f }
}

func WithIntegrator(i integrators.Integrator) Option {
	return func(e *Engine) { e.integrator = i }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithValidateState toggles the per-step NaN/Inf check.
func WithValidateState(on bool) Option {
	return func(e *Engine) { e.validateState = on }
}

// Engine advances a fixed set of bodies one fixed time step at a time.
// An Engine is not safe for concurrent use; each call to Snapshots owns its
// own buffers, so sequential reruns are independent.
type Engine struct {
	cfg           dynamo.Config
	field         physics.Field
	integrator    integrators.Integrator
	observers     []Observer
	validateState bool
}

// New validates cfg and returns an engine with the direct gravity field and
// the semi-implicit Euler integrator unless overridden.
func New(cfg dynamo.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Bodies = dynamo.CloneBodies(cfg.Bodies)

	e := &Engine{
		cfg:           cfg,
		field:         physics.NewGravity(cfg.G, cfg.Epsilon),
		integrator:    integrators.NewEuler(),
		validateState: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Config() dynamo.Config {
	c := e.cfg
	c.Bodies = dynamo.CloneBodies(e.cfg.Bodies)
	return c
}

// Snapshots returns the lazy sequence of per-step snapshots, step 0 through
// TotalSteps-1. Every call restarts from the initial bodies. A failing step
// yields a zero Snapshot with a *dynamo.SimulationError and ends the sequence.
func (e *Engine) Snapshots(ctx context.Context) iter.Seq2[dynamo.Snapshot, error] {
	return func(yield func(dynamo.Snapshot, error) bool) {
		read := dynamo.CloneBodies(e.cfg.Bodies)
		write := dynamo.CloneBodies(e.cfg.Bodies)
		dt := e.cfg.TimeStep

		for step := 0; step < e.cfg.TotalSteps; step++ {
			t := float64(step) * dt

			select {
			case <-ctx.Done():
				yield(dynamo.Snapshot{}, stepError(step, t, ctx.Err()))
				return
			default:
			}

			if err := e.integrator.Step(e.field, read, write, dt); err != nil {
				yield(dynamo.Snapshot{}, stepError(step, t, err))
				return
			}

			snap := dynamo.NewSnapshot(step, t, write)
			if e.validateState && !snap.IsFinite() {
				yield(dynamo.Snapshot{}, stepError(step, t, dynamo.ErrInvalidState))
				return
			}

			for _, o := range e.observers {
				o.OnStep(snap)
			}
			if !yield(snap, nil) {
				return
			}

			read, write = write, read
		}
	}
}

func stepError(step int, t float64, err error) *dynamo.SimulationError {
	var se *dynamo.SimulationError
	if errors.As(err, &se) {
		se.Step, se.Time = step, t
		return se
	}
	return &dynamo.SimulationError{Step: step, Time: t, Pair: [2]int{-1, -1}, Wrapped: err}
}
