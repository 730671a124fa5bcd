package metrics

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Bounded is the fraction of steps during which every body stayed within
// radius of the origin.
type Bounded struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBounded(radius float64) *Bounded {
	return &Bounded{
		name:   "bounded",
		radius: radius,
	}
}

func (b *Bounded) Name() string {
	return b.name
}

func (b *Bounded) OnStep(s dynamo.Snapshot) {
	b.samples++
	for _, body := range s.Bodies {
		if r2.Norm(body.Position) > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
