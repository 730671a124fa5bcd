package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/threebody/internal/dynamo"
)

// viewport maps simulation coordinates onto canvas dots, centred on the
// origin, with radius simulation units from the centre to the nearest edge.
type viewport struct {
	cw, ch int
	scale  float64
}

func newViewport(c *Canvas, radius float64) viewport {
	cw, ch := c.Dots()
	if !(radius > 0) {
		radius = 1
	}
	return viewport{cw: cw, ch: ch, scale: float64(min(cw, ch)) / 2 / radius}
}

func (v viewport) project(p dynamo.Vec) (int, int) {
	x := v.cw/2 + int(math.Round(p.X*v.scale))
	y := v.ch/2 - int(math.Round(p.Y*v.scale))
	return x, y
}

// Extent is the largest absolute coordinate reached in frames.
func Extent(frames []dynamo.Snapshot) float64 {
	r := 0.0
	for _, f := range frames {
		for _, b := range f.Bodies {
			r = max(r, math.Abs(b.Position.X), math.Abs(b.Position.Y))
		}
	}
	return r
}

// Trajectory draws every body's sampled path on a width x height braille
// canvas, fitted to the frames' extent. The first frame's bodies are drawn
// as blobs.
func Trajectory(frames []dynamo.Snapshot, width, height int) *Canvas {
	c := NewCanvas(width, height)
	if len(frames) == 0 {
		return c
	}
	vp := newViewport(c, Extent(frames)*1.05)

	prev := make([][2]int, len(frames[0].Bodies))
	for k, f := range frames {
		for i, b := range f.Bodies {
			x, y := vp.project(b.Position)
			if k > 0 && i < len(prev) {
				c.DrawLineOwned(prev[i][0], prev[i][1], x, y, i)
			}
			if i < len(prev) {
				prev[i] = [2]int{x, y}
			}
		}
	}
	for i, b := range frames[0].Bodies {
		x, y := vp.project(b.Position)
		c.DrawBlob(x, y, 1, i)
	}
	return c
}

// Coordinate returns one phase-space coordinate of a body: x, y, vx or vy.
func Coordinate(b dynamo.Body, axis string) (float64, error) {
	switch axis {
	case "x":
		return b.Position.X, nil
	case "y":
		return b.Position.Y, nil
	case "vx":
		return b.Velocity.X, nil
	case "vy":
		return b.Velocity.Y, nil
	}
	return 0, fmt.Errorf("unknown axis %q (available: x, y, vx, vy)", axis)
}

// Series extracts one coordinate of one body from every frame.
func Series(frames []dynamo.Snapshot, body int, axis string) ([]float64, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames")
	}
	values := make([]float64, 0, len(frames))
	for _, f := range frames {
		if body < 0 || body >= len(f.Bodies) {
			return nil, fmt.Errorf("body %d out of range [0, %d)", body, len(f.Bodies))
		}
		v, err := Coordinate(f.Bodies[body], axis)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// SeriesPlot charts one coordinate of one body over the frames.
func SeriesPlot(frames []dynamo.Snapshot, body int, axis string, width, height int) (string, error) {
	values, err := Series(frames, body, axis)
	if err != nil {
		return "", err
	}

	caption := fmt.Sprintf("body %d %s (t = %.2f .. %.2f)", body, axis, frames[0].Time, frames[len(frames)-1].Time)
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}
