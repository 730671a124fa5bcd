package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const brailleBlank = 0x2800

// Braille cells are 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dots, so a Width x Height
// canvas has (2*Width) x (4*Height) pixels. Each cell remembers the last
// body drawn into it so it can be coloured.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Owner         [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Owner:  make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Owner[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in pixels.
func (c *Canvas) Dots() (int, int) {
	return c.Width * 2, c.Height * 4
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set turns on the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	c.SetOwned(x, y, -1)
}

// SetOwned turns on a dot and records owner for colouring.
func (c *Canvas) SetOwned(x, y, owner int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
	if owner >= 0 {
		c.Owner[row][col] = owner
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	if !ok {
		return false
	}
	return c.Grid[row][col]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.Owner[i][j] = -1
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.DrawLineOwned(x0, y0, x1, y1, -1)
}

func (c *Canvas) DrawLineOwned(x0, y0, x1, y1, owner int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetOwned(x0, y0, owner)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawBlob fills a (2r+1)-dot square centred on (x, y).
func (c *Canvas) DrawBlob(x, y, r, owner int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.SetOwned(x+dx, y+dy, owner)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render is String with owned cells drawn in styles[owner % len(styles)].
func (c *Canvas) Render(styles []lipgloss.Style) string {
	if len(styles) == 0 {
		return c.String()
	}
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			owner := c.Owner[i][j]
			if r == brailleBlank || owner < 0 {
				b.WriteRune(r)
				continue
			}
			b.WriteString(styles[owner%len(styles)].Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
