package core

import (
	"math"
	"testing"
)

func TestCellAtFlipsV(t *testing.T) {
	cases := []struct {
		u, v   float64
		x, y   int
		reason string
	}{
		{0, 1, 0, 0, "top-left texture corner maps to row 0"},
		{0, 0, 0, 7, "v=0 maps to the last row"},
		{1, 0, 7, 7, "u=1 clamps to the last column"},
		{0.5, 0.5, 4, 4, "centre"},
		{-3, 9, 0, 0, "out of range clamps"},
		{math.NaN(), math.NaN(), 0, 7, "NaN treated as zero"},
	}
	for _, tc := range cases {
		x, y := CellAt(8, tc.u, tc.v)
		if x != tc.x || y != tc.y {
			t.Fatalf("%s: CellAt(%v,%v) = (%d,%d), want (%d,%d)", tc.reason, tc.u, tc.v, x, y, tc.x, tc.y)
		}
	}
}

func TestCellCenterRoundTrip(t *testing.T) {
	const n = 13
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			u, v := CellCenter(n, x, y)
			gx, gy := CellAt(n, u, v)
			if gx != x || gy != y {
				t.Fatalf("round trip (%d,%d) -> (%f,%f) -> (%d,%d)", x, y, u, v, gx, gy)
			}
		}
	}
}

func TestByteGridHelpers(t *testing.T) {
	g := NewByteGrid(0, -1)
	if g.W != 1 || g.H != 1 {
		t.Fatalf("degenerate sizes should clamp to 1, got %dx%d", g.W, g.H)
	}
	g = NewByteGrid(4, 3)
	if g.Any() {
		t.Fatal("fresh grid should be empty")
	}
	g.Cells()[g.Index(3, 2)] = 9
	g.Cells()[g.Index(0, 0)] = 1
	if g.Sum() != 10 || !g.Any() {
		t.Fatalf("sum = %d, want 10", g.Sum())
	}
	if g.InBounds(4, 0) || g.InBounds(0, -1) || !g.InBounds(3, 2) {
		t.Fatal("InBounds disagrees with grid extents")
	}
	g.Clear()
	if g.Sum() != 0 {
		t.Fatal("Clear should zero the grid")
	}
}
