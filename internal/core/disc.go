package core

import "math"

// MinInjectionRadius is the smallest disc radius in cells.
const MinInjectionRadius = 2

// DiscRadius converts a fractional radius into whole cells for an n-wide grid.
func DiscRadius(n int, radiusFraction float64) int {
	r := int(math.Floor(float64(n) * radiusFraction))
	if r < MinInjectionRadius {
		r = MinInjectionRadius
	}
	return r
}

// Disc visits every cell inside the injection disc centred on the cell nearest
// (u, v) and reports its linear index and falloff weight 1 - d²/R². Cells on or
// beyond the rim have zero weight and are not visited. A negative or NaN
// radius visits nothing.
func Disc(n int, u, v, radiusFraction float64, fn func(idx int, weight float64)) {
	if n <= 0 || math.IsNaN(radiusFraction) || radiusFraction < 0 {
		return
	}
	cx, cy := CellAt(n, u, v)
	r := DiscRadius(n, radiusFraction)
	r2 := float64(r * r)
	for dy := -r; dy <= r; dy++ {
		y := cy + dy
		if y < 0 || y >= n {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			x := cx + dx
			if x < 0 || x >= n {
				continue
			}
			d2 := float64(dx*dx + dy*dy)
			if d2 >= r2 {
				continue
			}
			fn(y*n+x, 1-d2/r2)
		}
	}
}
