package sim_test

import (
	"context"
	"errors"
	"iter"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/sim"
)

func steps(seq iter.Seq2[dynamo.Snapshot, error]) ([]int, error) {
	var out []int
	for snap, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, snap.Step)
	}
	return out, nil
}

var _ = Describe("Sampler", func() {
	DescribeTable("Stride",
		func(total, frames, want int) {
			Expect(sim.Stride(total, frames)).To(Equal(want))
		},
		Entry("even split", 100, 10, 10),
		Entry("truncates", 105, 10, 10),
		Entry("reference run", 100000000, 30*40, 83333),
		Entry("more frames than steps clamps to 1", 10, 100, 1),
		Entry("no frame budget keeps everything", 10, 0, 1),
	)

	It("computes the animation frame count", func() {
		Expect(sim.FrameCount(30, 40)).To(Equal(1200))
	})

	It("keeps multiples of the stride in order", func() {
		e, err := sim.New(referenceConfig(100))
		Expect(err).NotTo(HaveOccurred())

		got, err := steps(sim.Sample(e.Snapshots(context.Background()), 10))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}))
	})

	It("still runs every step underneath", func() {
		rec := &recorder{}
		e, err := sim.New(referenceConfig(100), sim.WithObserver(rec))
		Expect(err).NotTo(HaveOccurred())

		_, err = steps(sim.Sample(e.Snapshots(context.Background()), 25))
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.steps).To(HaveLen(100))
	})

	It("retains snapshots identical to the unsampled ones", func() {
		e, err := sim.New(referenceConfig(50))
		Expect(err).NotTo(HaveOccurred())
		all, err := collect(e)
		Expect(err).NotTo(HaveOccurred())

		var sampled []dynamo.Snapshot
		for snap, err := range sim.Sample(e.Snapshots(context.Background()), 7) {
			Expect(err).NotTo(HaveOccurred())
			sampled = append(sampled, snap)
		}
		Expect(sampled).To(HaveLen(8))
		for _, s := range sampled {
			Expect(s).To(Equal(all[s.Step]))
		}
	})

	It("clamps a non-positive stride to 1", func() {
		e, err := sim.New(referenceConfig(12))
		Expect(err).NotTo(HaveOccurred())
		got, err := steps(sim.Sample(e.Snapshots(context.Background()), 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(12))
	})

	It("forwards upstream errors", func() {
		boom := errors.New("boom")
		upstream := func(yield func(dynamo.Snapshot, error) bool) {
			for i := 0; i < 5; i++ {
				if !yield(dynamo.Snapshot{Step: i}, nil) {
					return
				}
			}
			yield(dynamo.Snapshot{}, boom)
		}
		got, err := steps(sim.Sample(upstream, 2))
		Expect(got).To(Equal([]int{0, 2, 4}))
		Expect(err).To(MatchError(boom))
	})
})

type countingMetric struct {
	n     int
	reset int
}

func (c *countingMetric) OnStep(dynamo.Snapshot) { c.n++ }
func (c *countingMetric) Name() string           { return "count" }
func (c *countingMetric) Value() float64         { return float64(c.n) }
func (c *countingMetric) Reset()                 { c.n = 0; c.reset++ }

var _ = Describe("Run", func() {
	It("collects sampled frames, the final state and metrics", func() {
		e, err := sim.New(referenceConfig(100))
		Expect(err).NotTo(HaveOccurred())
		m := &countingMetric{n: 42}

		res, err := sim.Run(context.Background(), e, 10, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frames).To(HaveLen(10))
		Expect(res.StepsTaken).To(Equal(100))
		Expect(res.Final.Step).To(Equal(99))
		Expect(res.Stride).To(Equal(10))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 100.0))
		Expect(m.reset).To(Equal(1))
	})

	It("does not leave metrics attached to the engine", func() {
		e, err := sim.New(referenceConfig(20))
		Expect(err).NotTo(HaveOccurred())
		m := &countingMetric{}
		_, err = sim.Run(context.Background(), e, 5, m)
		Expect(err).NotTo(HaveOccurred())

		_, err = collect(e)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.n).To(Equal(20))
	})

	It("returns the partial result with the error", func() {
		cfg := referenceConfig(10)
		cfg.Bodies[0].Position = cfg.Bodies[2].Position
		e, err := sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.Run(context.Background(), e, 1)
		Expect(err).To(MatchError(dynamo.ErrSingularity))
		Expect(res).NotTo(BeNil())
		Expect(res.Frames).To(BeEmpty())
		Expect(res.StepsTaken).To(Equal(0))
	})
})
