package transport

import (
	"math"
	"slices"
	"testing"

	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/terrain"
	pcore "lavaflow/pkg/core"
)

func flatEngine(t *testing.T, n int) *Engine {
	t.Helper()
	hf, err := terrain.Flat(n, 0)
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(n, hf)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func still() core.TickConfig {
	return core.TickConfig{}
}

func TestNewRejectsBadSize(t *testing.T) {
	hf, _ := terrain.Flat(4, 0)
	if _, err := New(0, hf); err == nil {
		t.Fatal("zero size should fail")
	}
	if _, err := New(4, nil); err == nil {
		t.Fatal("nil terrain should fail")
	}
}

func TestMassConservedWithoutCoolingOrViscosity(t *testing.T) {
	const n = 24
	hf, err := terrain.Hills(n, 30, 11)
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(n, hf)
	if err != nil {
		t.Fatal(err)
	}
	rng := pcore.NewRNG(5)
	cells := e.Thickness()
	for i := range cells {
		cells[i] = uint8(rng.IntN(256))
	}

	cfg := core.TickConfig{Mobility: 1.5}
	prev := e.Mass()
	for tick := 0; tick < 40; tick++ {
		e.Advance(0.1, cfg)
		mass := e.Mass()
		if mass > prev {
			t.Fatalf("tick %d: mass grew from %d to %d", tick, prev, mass)
		}
		if prev-mass > n*n {
			t.Fatalf("tick %d: lost %d units, more than one per cell", tick, prev-mass)
		}
		prev = mass
	}
}

func TestIdleGridStaysEmpty(t *testing.T) {
	hf, _ := terrain.Cone(16, 80)
	e, _ := New(16, hf)
	cfg := core.TickConfig{Mobility: 2, Viscosity: 0.2, CoolingRate: 0.2}
	for tick := 0; tick < 25; tick++ {
		e.Advance(0.1, cfg)
	}
	if e.Mass() != 0 {
		t.Fatalf("idle grid generated %d units", e.Mass())
	}
}

func TestCoolingStrictlyDecreasesUntilZero(t *testing.T) {
	e := flatEngine(t, 8)
	cells := e.Thickness()
	for i := range cells {
		cells[i] = uint8(i * 4)
	}
	cfg := core.TickConfig{CoolingRate: 0.2}
	for tick := 0; tick < 60; tick++ {
		before := slices.Clone(cells)
		e.Advance(0.1, cfg)
		for i, b := range before {
			after := e.Thickness()[i]
			if b > 0 && after >= b {
				t.Fatalf("tick %d cell %d: %d -> %d did not decrease", tick, i, b, after)
			}
			if b == 0 && after != 0 {
				t.Fatalf("tick %d cell %d: dry cell became %d", tick, i, after)
			}
		}
	}
	if e.Mass() != 0 {
		t.Fatalf("grid should have cooled to zero, mass %d", e.Mass())
	}
}

func TestFlatGroundUniformLayerDoesNotMove(t *testing.T) {
	e := flatEngine(t, 12)
	cells := e.Thickness()
	for i := range cells {
		cells[i] = 100
	}
	e.Advance(0.1, core.TickConfig{Mobility: 2})
	for i, v := range e.Thickness() {
		if v != 100 {
			t.Fatalf("cell %d changed to %d on flat ground", i, v)
		}
	}

	// Cooling still applies uniformly.
	e.Advance(0.1, core.TickConfig{Mobility: 2, CoolingRate: 0.1})
	want := e.Thickness()[0]
	if want >= 100 {
		t.Fatalf("cooling should remove mass, got %d", want)
	}
	for i, v := range e.Thickness() {
		if v != want {
			t.Fatalf("cell %d = %d, expected uniform %d", i, v, want)
		}
	}
}

func TestInjectionLocality(t *testing.T) {
	const n = 40
	e := flatEngine(t, n)
	e.Inject(0.25, 0.75, 90, 0.1)

	cx, cy := core.CellAt(n, 0.25, 0.75)
	r := core.DiscRadius(n, 0.1)
	cells := e.Thickness()
	centre := cells[cy*n+cx]
	if centre != 90 {
		t.Fatalf("centre = %d, want 90", centre)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := cells[y*n+x]
			dx, dy := x-cx, y-cy
			inside := dx*dx+dy*dy < r*r
			if !inside && v != 0 {
				t.Fatalf("cell (%d,%d) outside the disc got %d", x, y, v)
			}
			if v > centre {
				t.Fatalf("cell (%d,%d) = %d exceeds centre %d", x, y, v, centre)
			}
		}
	}
}

func TestInjectionEdgeCases(t *testing.T) {
	e := flatEngine(t, 16)
	e.Inject(0.5, 0.5, 0, 0.1)
	e.Inject(0.5, 0.5, -20, 0.1)
	e.Inject(0.5, 0.5, math.NaN(), 0.1)
	e.Inject(0.5, 0.5, 50, -0.3)
	if e.Mass() != 0 {
		t.Fatalf("no-op injections added %d units", e.Mass())
	}

	e.Inject(7, -3, 50, 0.05)
	if e.Thickness()[(16-1)*16+15] != 50 {
		t.Fatal("out-of-range coordinates should clamp onto the corner cell")
	}

	for i := 0; i < 10; i++ {
		e.Inject(0.5, 0.5, 200, 0.05)
	}
	cx, cy := core.CellAt(16, 0.5, 0.5)
	if got := e.Thickness()[cy*16+cx]; got != 255 {
		t.Fatalf("repeated injection should saturate at 255, got %d", got)
	}
}

func TestCentreInjectionScenario(t *testing.T) {
	const n = 128
	e := flatEngine(t, n)
	e.Inject(0.5, 0.5, 255, 0.05)
	e.Advance(0.1, still())

	cx, cy := core.CellAt(n, 0.5, 0.5)
	if got := e.Thickness()[cy*n+cx]; got < 254 {
		t.Fatalf("centre = %d, want ~255", got)
	}
	r := core.DiscRadius(n, 0.05)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy >= r*r && e.Thickness()[y*n+x] != 0 {
				t.Fatalf("cell (%d,%d) outside the disc is %d", x, y, e.Thickness()[y*n+x])
			}
		}
	}
}

func TestElevatedSourceSpreadsSymmetrically(t *testing.T) {
	const n = 21
	const c = n / 2
	data := make([]float64, n*n)
	data[c*n+c] = 100
	hf, err := terrain.New(n, data)
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(n, hf)
	if err != nil {
		t.Fatal(err)
	}
	cells := e.Thickness()
	cells[c*n+c] = 100

	cfg := core.TickConfig{Mobility: 1}
	prevCentre := cells[c*n+c]
	for tick := 0; tick < 4; tick++ {
		e.Advance(0.1, cfg)
		centre := e.Thickness()[c*n+c]
		if centre > prevCentre {
			t.Fatalf("tick %d: centre grew %d -> %d", tick, prevCentre, centre)
		}
		prevCentre = centre
	}
	if prevCentre >= 100 {
		t.Fatal("centre should have drained")
	}

	cells = e.Thickness()
	spread := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := int(cells[y*n+x])
			if v > 0 && (x != c || y != c) {
				spread++
			}
			mirrors := []int{
				int(cells[y*n+(n-1-x)]),
				int(cells[(n-1-y)*n+x]),
				int(cells[x*n+y]),
			}
			for _, m := range mirrors {
				if d := v - m; d > 2 || d < -2 {
					t.Fatalf("asymmetry at (%d,%d): %d vs %d", x, y, v, m)
				}
			}
		}
	}
	if spread == 0 {
		t.Fatal("fluid never left the source cell")
	}
}

func TestViscositySpreadsOnFlatGround(t *testing.T) {
	const n = 9
	e := flatEngine(t, n)
	centre := 4*n + 4
	e.Thickness()[centre] = 200
	e.Advance(0.1, core.TickConfig{Viscosity: 0.2})
	cells := e.Thickness()
	if cells[centre] >= 200 {
		t.Fatalf("centre should lose fluid to diffusion, got %d", cells[centre])
	}
	for _, j := range []int{centre - 1, centre + 1, centre - n, centre + n} {
		if cells[j] == 0 {
			t.Fatalf("orthogonal neighbour %d should gain fluid", j)
		}
	}
	if e.Mass() > 200 {
		t.Fatalf("diffusion created mass: %d", e.Mass())
	}
}

func TestAdvanceClampsAndValidatesStep(t *testing.T) {
	a := flatEngine(t, 10)
	b := flatEngine(t, 10)
	a.Inject(0.5, 0.5, 200, 0.2)
	b.Inject(0.5, 0.5, 200, 0.2)
	cfg := core.TickConfig{Viscosity: 0.1, CoolingRate: 0.05}
	a.Advance(3, cfg)
	b.Advance(core.MaxStep, cfg)
	if !slices.Equal(a.Thickness(), b.Thickness()) {
		t.Fatal("large dt should clamp to MaxStep")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("NaN dt should panic")
		}
	}()
	a.Advance(math.NaN(), cfg)
}

func TestExportAndClear(t *testing.T) {
	const n = 16
	e := flatEngine(t, n)
	e.Inject(0.25, 0.8, 120, 0.01)
	snap := field.NewSnapshot(n)
	e.Export(snap)

	x, y := core.CellAt(n, 0.25, 0.8)
	row := n - 1 - y
	if got := snap.At(x, row, field.ChannelThickness); got != 120 {
		t.Fatalf("exported texel (%d,%d) = %f, want 120", x, row, got)
	}
	if int(snap.Total(field.ChannelThickness)) != e.Mass() {
		t.Fatal("export total must match grid mass")
	}

	e.Clear()
	if e.Mass() != 0 {
		t.Fatal("Clear should empty the grid")
	}
}

func TestRegisteredWithCore(t *testing.T) {
	hf, _ := terrain.Flat(4, 0)
	eng, err := core.Build(Name, 8, hf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if eng.Name() != Name || eng.Size() != 8 {
		t.Fatalf("unexpected engine %s/%d", eng.Name(), eng.Size())
	}
}

func TestStrongViscosityNeverCreatesMass(t *testing.T) {
	const n = 9
	e := flatEngine(t, n)
	centre := (n/2)*n + n/2
	e.Thickness()[centre] = 200

	for _, viscosity := range []float64{2.5, 5, 1000} {
		before := e.Mass()
		e.Advance(0.1, core.TickConfig{Viscosity: viscosity})
		after := e.Mass()
		if after > before {
			t.Fatalf("viscosity %v created mass: %d -> %d", viscosity, before, after)
		}
		if after == 0 {
			t.Fatalf("viscosity %v destroyed all mass", viscosity)
		}
	}
}
