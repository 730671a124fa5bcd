package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
)

func benchStep(b *testing.B, integ Integrator, f physics.Field, bodies []dynamo.Body) {
	read := dynamo.CloneBodies(bodies)
	write := make([]dynamo.Body, len(read))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := integ.Step(f, read, write, 0.001); err != nil {
			b.Fatal(err)
		}
		read, write = write, read
	}
}

func ring(n int) []dynamo.Body {
	bodies := make([]dynamo.Body, n)
	for i := range bodies {
		angle := float64(i) * 2 * math.Pi / float64(n)
		bodies[i] = dynamo.Body{
			Mass:     1,
			Position: dynamo.Vec{X: math.Cos(angle), Y: math.Sin(angle)},
			Velocity: dynamo.Vec{X: -math.Sin(angle) * 0.5, Y: math.Cos(angle) * 0.5},
		}
	}
	return bodies
}

func BenchmarkEuler_ThreeBody(b *testing.B) {
	benchStep(b, NewEuler(), physics.NewGravity(dynamo.G, dynamo.DefaultEpsilon), dynamo.DefaultConfig().Bodies)
}

func BenchmarkLeapfrog_ThreeBody(b *testing.B) {
	benchStep(b, NewLeapfrog(), physics.NewGravity(dynamo.G, dynamo.DefaultEpsilon), dynamo.DefaultConfig().Bodies)
}

func BenchmarkEuler_Ring256(b *testing.B) {
	benchStep(b, NewEuler(), &physics.Gravity{G: 1, Workers: 4}, ring(256))
}

func BenchmarkEuler_Ring256BarnesHut(b *testing.B) {
	benchStep(b, NewEuler(), physics.NewBarnesHut(1, 0.5), ring(256))
}

func BenchmarkRK4_ThreeBody(b *testing.B) {
	benchStep(b, NewRK4(), physics.NewGravity(dynamo.G, dynamo.DefaultEpsilon), dynamo.DefaultConfig().Bodies)
}
