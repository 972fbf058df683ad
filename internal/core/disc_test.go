package core

import "testing"

func TestDiscLocalityAndPeak(t *testing.T) {
	const n = 64
	cx, cy := CellAt(n, 0.3, 0.7)
	r := DiscRadius(n, 0.1)
	if r != 6 {
		t.Fatalf("radius = %d, want 6", r)
	}
	seen := map[int]float64{}
	Disc(n, 0.3, 0.7, 0.1, func(idx int, w float64) {
		seen[idx] = w
	})
	if len(seen) == 0 {
		t.Fatal("disc visited nothing")
	}
	centre := cy*n + cx
	if seen[centre] != 1 {
		t.Fatalf("centre weight = %f, want 1", seen[centre])
	}
	for idx, w := range seen {
		x, y := idx%n, idx/n
		dx, dy := x-cx, y-cy
		if dx*dx+dy*dy >= r*r {
			t.Fatalf("cell (%d,%d) outside radius %d was visited", x, y, r)
		}
		if w <= 0 || w > 1 {
			t.Fatalf("weight %f out of (0,1]", w)
		}
		if w > seen[centre] {
			t.Fatal("centre must carry the maximum weight")
		}
	}
}

func TestDiscMinimumRadiusAndEdges(t *testing.T) {
	if got := DiscRadius(10, 0.001); got != MinInjectionRadius {
		t.Fatalf("small fraction should clamp to %d, got %d", MinInjectionRadius, got)
	}
	count := 0
	Disc(10, 0, 0, 0.001, func(idx int, w float64) { count++ })
	// Corner disc of radius 2 keeps only the in-grid quarter: (0,0),(1,0),(0,1),(1,1).
	if count != 4 {
		t.Fatalf("corner disc visited %d cells, want 4", count)
	}
	Disc(10, 0.5, 0.5, -0.1, func(int, float64) {
		t.Fatal("negative radius must be a no-op")
	})
}
