package core

import "math"

// ByteGrid stores a square-or-rectangular grid of byte-sized cell values in
// row-major order. Row 0 is the top of the grid, which corresponds to v = 1 in
// texture coordinates.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// InBounds reports whether (x, y) addresses a cell. The simulation grids never
// wrap, so out-of-range neighbours are simply skipped.
func (g *ByteGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.W && y < g.H
}

// Sum returns the total of all cell values.
func (g *ByteGrid) Sum() int {
	total := 0
	for _, v := range g.data {
		total += int(v)
	}
	return total
}

// Any reports whether at least one cell is non-zero.
func (g *ByteGrid) Any() bool {
	for _, v := range g.data {
		if v != 0 {
			return true
		}
	}
	return false
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CellAt maps normalized texture coordinates onto the grid cell of an n×n
// grid. The v axis is flipped: texture v grows upwards while grid rows grow
// downwards. Every read and write boundary goes through this function or
// CellCenter so presentation and simulation agree on orientation.
func CellAt(n int, u, v float64) (x, y int) {
	u = Clamp01(u)
	v = Clamp01(v)
	x = int(math.Floor(u * float64(n)))
	y = int(math.Floor((1 - v) * float64(n)))
	if x >= n {
		x = n - 1
	}
	if y >= n {
		y = n - 1
	}
	return x, y
}

// CellCenter returns the texture coordinates of the centre of cell (x, y).
func CellCenter(n, x, y int) (u, v float64) {
	u = (float64(x) + 0.5) / float64(n)
	v = 1 - (float64(y)+0.5)/float64(n)
	return u, v
}
