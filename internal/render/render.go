// Package render draws sampled snapshots as a static PNG plot or an
// animated GIF. Renderers only read the snapshots they are given.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

var ErrNoFrames = errors.New("render: no frames")

var (
	white     = color.RGBA{255, 255, 255, 255}
	black     = color.RGBA{0, 0, 0, 255}
	gridLight = color.RGBA{235, 235, 235, 255}
	gridBold  = color.RGBA{200, 200, 200, 255}
)

// DefaultPalette holds the body colours, in body order.
var DefaultPalette = []color.Color{
	color.RGBA{0, 0, 255, 255},
	color.RGBA{255, 0, 0, 255},
	color.RGBA{0, 255, 0, 255},
	color.RGBA{255, 140, 0, 255},
	color.RGBA{148, 0, 211, 255},
	color.RGBA{0, 200, 200, 255},
}

// Options control the drawing area. Positions are multiplied by Scale and
// rounded to chart units; the chart spans [-Extent, Extent] on both axes and
// fills a Size x Size image.
type Options struct {
	Size    int
	Scale   float64
	Extent  int
	FPS     int
	Palette []color.Color
}

func DefaultOptions() Options {
	return Options{
		Size:    250,
		Scale:   100,
		Extent:  100,
		FPS:     30,
		Palette: DefaultPalette,
	}
}

func (o Options) validate() error {
	switch {
	case o.Size <= 0:
		return fmt.Errorf("render: size must be positive, got %d", o.Size)
	case !(o.Scale > 0):
		return fmt.Errorf("render: scale must be positive, got %g", o.Scale)
	case o.Extent <= 0:
		return fmt.Errorf("render: extent must be positive, got %d", o.Extent)
	}
	return nil
}

func (o Options) bodyColor(i int) color.Color {
	p := o.Palette
	if len(p) == 0 {
		p = DefaultPalette
	}
	return p[i%len(p)]
}

// project maps a simulation coordinate to a pixel. y grows upwards in the
// chart and downwards in the image.
func (o Options) project(x, y float64) (int, int) {
	cx := math.Round(x * o.Scale)
	cy := math.Round(y * o.Scale)
	span := float64(2 * o.Extent)
	k := float64(o.Size-1) / span
	px := int(math.Round((cx + float64(o.Extent)) * k))
	py := int(math.Round((float64(o.Extent) - cy) * k))
	return px, py
}

func fill(img draw.Image, c color.Color) {
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// drawMesh draws light lines every tenth of the extent and bold lines every
// half, axes included.
func drawMesh(img draw.Image, o Options) {
	step := o.Extent / 10
	if step < 1 {
		step = 1
	}
	for u := -o.Extent; u <= o.Extent; u += step {
		c := gridLight
		if u%(step*5) == 0 {
			c = gridBold
		}
		px, _ := o.project(float64(u)/o.Scale, 0)
		_, py := o.project(0, float64(u)/o.Scale)
		for i := 0; i < o.Size; i++ {
			img.Set(px, i, c)
			img.Set(i, py, c)
		}
	}
}

func drawDisc(img draw.Image, px, py, r int, c color.Color) {
	b := img.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			p := image.Pt(px+dx, py+dy)
			if p.In(b) {
				img.Set(p.X, p.Y, c)
			}
		}
	}
}
