package render

import (
	"image"
	"image/png"
	"io"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Plot writes a PNG of every frame's bodies: frames after the first as
// one-pixel-radius points in body colours, then the first frame on top as
// larger black points.
func Plot(w io.Writer, frames []dynamo.Snapshot, opt Options) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if err := opt.validate(); err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, opt.Size, opt.Size))
	fill(img, white)
	drawMesh(img, opt)

	for _, f := range frames[1:] {
		for i, b := range f.Bodies {
			px, py := opt.project(b.Position.X, b.Position.Y)
			drawDisc(img, px, py, 1, opt.bodyColor(i))
		}
	}
	for _, b := range frames[0].Bodies {
		px, py := opt.project(b.Position.X, b.Position.Y)
		drawDisc(img, px, py, 2, black)
	}

	return png.Encode(w, img)
}
