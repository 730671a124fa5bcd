package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Animate writes a looping GIF with one frame per snapshot. Each frame shows
// the bodies in their colours and the elapsed time in whole seconds.
func Animate(w io.Writer, frames []dynamo.Snapshot, opt Options) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if err := opt.validate(); err != nil {
		return err
	}
	if opt.FPS <= 0 {
		return fmt.Errorf("render: fps must be positive, got %d", opt.FPS)
	}

	palette := gifPalette(opt, len(frames[0].Bodies))
	delay := max(1, 100/opt.FPS)

	anim := gif.GIF{LoopCount: 0}
	for _, f := range frames {
		anim.Image = append(anim.Image, drawFrame(f, opt, palette))
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

func gifPalette(opt Options, bodies int) color.Palette {
	p := color.Palette{white, black, gridLight, gridBold}
	n := len(opt.Palette)
	if n == 0 {
		n = len(DefaultPalette)
	}
	for i := 0; i < min(bodies, n); i++ {
		p = append(p, opt.bodyColor(i))
	}
	return p
}

func drawFrame(s dynamo.Snapshot, opt Options, palette color.Palette) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, opt.Size, opt.Size), palette)
	fill(img, white)
	drawMesh(img, opt)

	for i, b := range s.Bodies {
		px, py := opt.project(b.Position.X, b.Position.Y)
		drawDisc(img, px, py, 2, opt.bodyColor(i))
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(black),
		Face: face,
		Dot:  fixed.P(5, 5+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(Label(s.Time))
	return img
}

// Label is the time readout drawn on each animation frame.
func Label(t float64) string {
	return fmt.Sprintf("T : %d", int64(math.Round(t)))
}
