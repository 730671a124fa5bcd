package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/sim"
)

func referenceConfig(steps int) dynamo.Config {
	return dynamo.Config{
		TimeStep:   0.01,
		TotalSteps: steps,
		G:          dynamo.G,
		Epsilon:    dynamo.DefaultEpsilon,
		Bodies: []dynamo.Body{
			{Mass: 1, Position: dynamo.Vec{X: 0.309, Y: 0.424}},
			{Mass: 1, Position: dynamo.Vec{X: -0.5, Y: 0}},
			{Mass: 1, Position: dynamo.Vec{X: 0.5, Y: 0}},
		},
	}
}

func collect(e *sim.Engine) ([]dynamo.Snapshot, error) {
	var out []dynamo.Snapshot
	for snap, err := range e.Snapshots(context.Background()) {
		if err != nil {
			return out, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// nanField drives every velocity to NaN.
type nanField struct{}

func (nanField) Kick(read, write []dynamo.Body, dt float64) error {
	for i := range write {
		write[i].Velocity = dynamo.Vec{X: math.NaN(), Y: math.NaN()}
	}
	return nil
}

type recorder struct{ steps []int }

func (r *recorder) OnStep(s dynamo.Snapshot) { r.steps = append(r.steps, s.Step) }

var _ = Describe("Engine", func() {
	Describe("construction", func() {
		DescribeTable("rejects invalid configurations",
			func(mod func(*dynamo.Config)) {
				cfg := referenceConfig(10)
				mod(&cfg)
				_, err := sim.New(cfg)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			},
			Entry("zero time step", func(c *dynamo.Config) { c.TimeStep = 0 }),
			Entry("negative time step", func(c *dynamo.Config) { c.TimeStep = -1 }),
			Entry("zero total steps", func(c *dynamo.Config) { c.TotalSteps = 0 }),
			Entry("empty body list", func(c *dynamo.Config) { c.Bodies = nil }),
			Entry("non-positive mass", func(c *dynamo.Config) { c.Bodies[0].Mass = 0 }),
		)

		It("is not affected by later changes to the caller's bodies", func() {
			cfg := referenceConfig(5)
			e, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			cfg.Bodies[0].Position.X = 100

			snaps, err := collect(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps[0].Bodies[0].Position.X).To(BeNumerically("~", 0.309, 1e-6))
		})
	})

	Describe("the snapshot sequence", func() {
		It("emits one snapshot per step with monotonic time", func() {
			e, err := sim.New(referenceConfig(250))
			Expect(err).NotTo(HaveOccurred())

			snaps, err := collect(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps).To(HaveLen(250))
			for k, s := range snaps {
				Expect(s.Step).To(Equal(k))
				Expect(s.Time).To(Equal(float64(k) * 0.01))
			}
		})

		It("is deterministic and re-runnable", func() {
			e, err := sim.New(referenceConfig(300))
			Expect(err).NotTo(HaveOccurred())
			first, err := collect(e)
			Expect(err).NotTo(HaveOccurred())
			second, err := collect(e)
			Expect(err).NotTo(HaveOccurred())

			other, err := sim.New(referenceConfig(300))
			Expect(err).NotTo(HaveOccurred())
			third, err := collect(other)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
			Expect(third).To(Equal(first))
		})

		It("publishes independent copies", func() {
			e, err := sim.New(referenceConfig(20))
			Expect(err).NotTo(HaveOccurred())

			var held []dynamo.Snapshot
			var kept []dynamo.Snapshot
			for snap, err := range e.Snapshots(context.Background()) {
				Expect(err).NotTo(HaveOccurred())
				held = append(held, snap)
				kept = append(kept, snap.Clone())
			}
			Expect(held).To(Equal(kept))

			held[3].Bodies[0].Position.X = 99
			Expect(held[4].Bodies[0].Position.X).NotTo(Equal(99.0))
			Expect(held[2].Bodies[0].Position.X).NotTo(Equal(99.0))
		})

		It("reads only start-of-step state when computing forces", func() {
			cfg := dynamo.Config{
				TimeStep: 0.1, TotalSteps: 1, G: 1,
				Bodies: []dynamo.Body{
					{Mass: 1, Position: dynamo.Vec{X: -1}},
					{Mass: 1, Position: dynamo.Vec{X: 1}},
				},
			}
			e, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			snaps, err := collect(e)
			Expect(err).NotTo(HaveOccurred())

			// F = 1/4, so each body gains 0.025 towards the other.
			Expect(snaps[0].Bodies[0].Velocity.X).To(BeNumerically("~", 0.025, 1e-15))
			Expect(snaps[0].Bodies[1].Velocity.X).To(BeNumerically("~", -0.025, 1e-15))
			Expect(snaps[0].Bodies[0].Position.X).To(BeNumerically("~", -1+0.0025, 1e-15))
		})

		It("notifies observers of every step", func() {
			rec := &recorder{}
			e, err := sim.New(referenceConfig(30), sim.WithObserver(rec))
			Expect(err).NotTo(HaveOccurred())
			_, err = collect(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.steps).To(HaveLen(30))
			Expect(rec.steps[29]).To(Equal(29))
		})

		It("stops when the consumer stops", func() {
			rec := &recorder{}
			e, err := sim.New(referenceConfig(1000), sim.WithObserver(rec))
			Expect(err).NotTo(HaveOccurred())
			for snap := range e.Snapshots(context.Background()) {
				if snap.Step == 9 {
					break
				}
			}
			Expect(rec.steps).To(HaveLen(10))
		})

		It("can use another integrator", func() {
			e, err := sim.New(referenceConfig(100), sim.WithIntegrator(integrators.NewLeapfrog()))
			Expect(err).NotTo(HaveOccurred())
			snaps, err := collect(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps).To(HaveLen(100))
			Expect(snaps[99].IsFinite()).To(BeTrue())
		})
	})

	Describe("failures", func() {
		It("reports coincident bodies with the failing step and pair", func() {
			cfg := referenceConfig(10)
			cfg.Bodies[2].Position = cfg.Bodies[1].Position
			e, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			snaps, err := collect(e)
			Expect(snaps).To(BeEmpty())
			Expect(err).To(MatchError(dynamo.ErrSingularity))

			var se *dynamo.SimulationError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(Equal(0))
			Expect(se.Pair).To(Equal([2]int{1, 2}))
		})

		It("reports a collapse that happens mid-run", func() {
			cfg := dynamo.Config{
				TimeStep: 0.1, TotalSteps: 100, G: 1e-20, Epsilon: 0.05,
				Bodies: []dynamo.Body{
					{Mass: 1, Position: dynamo.Vec{X: -0.5}, Velocity: dynamo.Vec{X: 1}},
					{Mass: 1, Position: dynamo.Vec{X: 0.5}, Velocity: dynamo.Vec{X: -1}},
				},
			}
			e, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			snaps, err := collect(e)
			Expect(err).To(MatchError(dynamo.ErrSingularity))
			var se *dynamo.SimulationError
			Expect(errors.As(err, &se)).To(BeTrue())
			// closing at 2 units/s from 1 unit apart: coincident at step 5
			Expect(se.Step).To(Equal(5))
			Expect(snaps).To(HaveLen(5))
		})

		It("reports a non-finite state", func() {
			e, err := sim.New(referenceConfig(10), sim.WithField(nanField{}))
			Expect(err).NotTo(HaveOccurred())

			snaps, err := collect(e)
			Expect(snaps).To(BeEmpty())
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})

		It("passes a non-finite state through when the check is off", func() {
			e, err := sim.New(referenceConfig(10), sim.WithField(nanField{}), sim.WithValidateState(false))
			Expect(err).NotTo(HaveOccurred())

			snaps, err := collect(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps).To(HaveLen(10))
			Expect(snaps[0].IsFinite()).To(BeFalse())
		})

		It("stops on context cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			e, err := sim.New(referenceConfig(1000))
			Expect(err).NotTo(HaveOccurred())

			var seen int
			var runErr error
			for snap, err := range e.Snapshots(ctx) {
				if err != nil {
					runErr = err
					break
				}
				seen++
				if snap.Step == 4 {
					cancel()
				}
			}
			Expect(seen).To(Equal(5))
			Expect(runErr).To(MatchError(context.Canceled))
		})
	})

	It("runs the reference scenario end to end", func() {
		e, err := sim.New(referenceConfig(1000))
		Expect(err).NotTo(HaveOccurred())

		snaps, err := collect(e)
		Expect(err).NotTo(HaveOccurred())
		Expect(snaps).To(HaveLen(1000))

		last := snaps[len(snaps)-1]
		Expect(last.Bodies).To(HaveLen(3))
		for _, b := range last.Bodies {
			Expect(math.IsNaN(b.Position.X) || math.IsInf(b.Position.X, 0)).To(BeFalse())
			Expect(math.IsNaN(b.Position.Y) || math.IsInf(b.Position.Y, 0)).To(BeFalse())
			Expect(b.Mass).To(Equal(1.0))
		}
		// G is tiny, so the bodies barely move and keep their order.
		Expect(last.Bodies[0].Position.X).To(BeNumerically("~", 0.309, 1e-3))
		Expect(last.Bodies[1].Position.X).To(BeNumerically("~", -0.5, 1e-3))
		Expect(last.Bodies[2].Position.X).To(BeNumerically("~", 0.5, 1e-3))
	})
})
