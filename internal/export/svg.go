// Package export writes sampled runs in vector form.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/threebody/internal/dynamo"
)

// BodyColors follow the raster renderers' body order.
var BodyColors = []string{"#0000ff", "#ff0000", "#00aa00", "#ff8c00", "#9400d3", "#00c8c8"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func frameBounds(frames []dynamo.Snapshot) bounds {
	first := frames[0].Bodies[0].Position
	b := bounds{first.X, first.X, first.Y, first.Y}
	for _, f := range frames {
		for _, body := range f.Bodies {
			b.minX = min(b.minX, body.Position.X)
			b.maxX = max(b.maxX, body.Position.X)
			b.minY = min(b.minY, body.Position.Y)
			b.maxY = max(b.maxY, body.Position.Y)
		}
	}

	// square, with 10% padding
	span := max(b.maxX-b.minX, b.maxY-b.minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := span * 0.6
	return bounds{cx - half, cx + half, cy - half, cy + half}
}

// TrajectorySVG writes one polyline per body through its sampled positions,
// with the starting positions marked.
func TrajectorySVG(w io.Writer, frames []dynamo.Snapshot, size int) error {
	if len(frames) == 0 || len(frames[0].Bodies) == 0 {
		return errors.New("export: no frames")
	}
	if size <= 0 {
		return fmt.Errorf("export: size must be positive, got %d", size)
	}

	b := frameBounds(frames)
	px := func(v dynamo.Vec) (float64, float64) {
		x := (v.X - b.minX) / (b.maxX - b.minX) * float64(size)
		y := float64(size) - (v.Y-b.minY)/(b.maxY-b.minY)*float64(size)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, size, size, size, size)

	for i := range frames[0].Bodies {
		color := BodyColors[i%len(BodyColors)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1" d="`, color)
		for k, f := range frames {
			if i >= len(f.Bodies) {
				break
			}
			x, y := px(f.Bodies[i].Position)
			if k == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, body := range frames[0].Bodies {
		x, y := px(body.Position)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"#000000\"/>\n", x, y)
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
