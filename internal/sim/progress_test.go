package sim_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/threebody/internal/sim"
)

var _ = Describe("ProgressLogger", func() {
	It("logs at the configured interval", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		p := sim.NewProgressLogger(logger, 25, 100)

		e, err := sim.New(referenceConfig(100), sim.WithObserver(p))
		Expect(err).NotTo(HaveOccurred())
		_, err = collect(e)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[0]).To(ContainSubstring("step=0"))
		Expect(lines[3]).To(ContainSubstring("step=75"))
		Expect(lines[3]).To(ContainSubstring("75.0%"))
	})

	It("stays quiet with a zero interval", func() {
		var buf bytes.Buffer
		p := sim.NewProgressLogger(slog.New(slog.NewTextHandler(&buf, nil)), 0, 10)
		_, err := sim.Run(context.Background(), mustEngine(10, p), 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.Len()).To(BeZero())
	})
})

func mustEngine(steps int, observers ...sim.Observer) *sim.Engine {
	opts := make([]sim.Option, 0, len(observers))
	for _, o := range observers {
		opts = append(opts, sim.WithObserver(o))
	}
	e, err := sim.New(referenceConfig(steps), opts...)
	Expect(err).NotTo(HaveOccurred())
	return e
}
