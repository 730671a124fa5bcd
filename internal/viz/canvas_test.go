package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != brailleBlank|0x1 {
		t.Errorf("expected dot 1 in first cell, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBlank|0x80 {
		t.Errorf("expected dot 8 in second cell, got %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) {
		t.Error("expected (3,3) set")
	}
	if c.IsSet(2, 3) {
		t.Error("expected (2,3) clear")
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0)
	c.Set(0, -1)
	c.Set(4, 0)
	c.Set(0, 8)
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r > brailleBlank && r <= brailleBlank+0xff }) {
		t.Error("out of range dots should be dropped")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 0) {
			t.Errorf("expected dot at (%d,0)", x)
		}
	}
	if c.IsSet(0, 1) {
		t.Error("unexpected dot below the line")
	}
}

func TestCanvasOwnerAndClear(t *testing.T) {
	c := NewCanvas(3, 2)
	c.DrawBlob(2, 4, 1, 2)
	if c.Owner[1][1] != 2 {
		t.Errorf("expected owner 2, got %d", c.Owner[1][1])
	}

	plain := c.String()
	colored := c.Render([]lipgloss.Style{lipgloss.NewStyle()})
	if strings.Count(plain, "\n") != 2 || strings.Count(colored, "\n") != 2 {
		t.Error("expected one line per row")
	}

	c.Clear()
	if c.Owner[1][1] != -1 || c.Grid[1][1] != brailleBlank {
		t.Error("clear should reset cells and owners")
	}
}
