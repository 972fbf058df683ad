package app

import (
	"testing"

	"lavaflow/internal/core"
)

func TestCursorUVRoundTrips(t *testing.T) {
	const n, scale = 16, 4
	view := n * scale
	for _, c := range [][2]int{{0, 0}, {5, 9}, {15, 15}, {0, 15}} {
		mx, my := c[0]*scale+1, c[1]*scale+2
		u, v, ok := cursorUV(mx, my, view)
		if !ok {
			t.Fatalf("(%d,%d) should be inside", mx, my)
		}
		if x, y := core.CellAt(n, u, v); x != c[0] || y != c[1] {
			t.Fatalf("pixel (%d,%d) maps to cell (%d,%d), want %v", mx, my, x, y, c)
		}
	}
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {view, 0}, {0, view}} {
		if _, _, ok := cursorUV(c[0], c[1], view); ok {
			t.Fatalf("%v should be outside", c)
		}
	}
}
