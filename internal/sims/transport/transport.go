package transport

import (
	"fmt"
	"math"

	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/terrain"
)

// Name is the registry key for this engine.
const Name = "transport"

const (
	// maxUnits is the top of the quantized thickness channel.
	maxUnits = 255
	// slopeEpsilon separates "no downhill neighbour" from a real slope.
	slopeEpsilon = 1e-6
	// quantizeGuard absorbs the representation error of raw/255*255 so an
	// untouched cell re-quantizes to its original value.
	quantizeGuard = 1e-9
	// maxDiffusion bounds viscosity·dt for the explicit diffusion pass.
	maxDiffusion = 0.25
)

var invSqrt2 = 1 / math.Sqrt2

// neighbours lists the Moore neighbourhood with transport weights: 1 for the
// orthogonal cells and 1/√2 for the diagonals.
var neighbours = [8]struct {
	dx, dy int
	weight float64
}{
	{-1, 0, 1}, {1, 0, 1}, {0, -1, 1}, {0, 1, 1},
	{-1, -1, invSqrt2}, {1, -1, invSqrt2}, {-1, 1, invSqrt2}, {1, 1, invSqrt2},
}

// Engine advances a quantized thickness grid with slope-capacity transport,
// optional diffusion and uniform cooling.
type Engine struct {
	n int

	grid   *core.ByteGrid
	ground []float64
	value  []float64
	next   []float64

	exporter field.Exporter
}

// New builds an engine over an n×n grid, sampling ground from hf at cell
// centres. Ground is normalized into [0,1] by the height field's range so it
// shares units with the normalized thickness.
func New(n int, hf *terrain.HeightField) (*Engine, error) {
	if n <= 0 {
		return nil, fmt.Errorf("transport: %w: %d", core.ErrInvalidSize, n)
	}
	if hf == nil {
		return nil, fmt.Errorf("transport: %w", core.ErrNilTerrain)
	}
	e := &Engine{
		n:        n,
		grid:     core.NewByteGrid(n, n),
		ground:   make([]float64, n*n),
		value:    make([]float64, n*n),
		next:     make([]float64, n*n),
		exporter: field.NewExporter(n),
	}
	e.sampleGround(hf)
	return e, nil
}

func (e *Engine) sampleGround(hf *terrain.HeightField) {
	lo, hi := hf.Range()
	scale := 0.0
	if hi-lo > slopeEpsilon {
		scale = 1 / (hi - lo)
	}
	for y := 0; y < e.n; y++ {
		for x := 0; x < e.n; x++ {
			u, v := core.CellCenter(e.n, x, y)
			e.ground[y*e.n+x] = (hf.Sample(u, v) - lo) * scale
		}
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return Name }

// Size reports the grid side.
func (e *Engine) Size() int { return e.n }

// Thickness exposes the quantized grid, grid-ordered. Callers outside the
// engine's goroutine should use Export instead.
func (e *Engine) Thickness() []uint8 { return e.grid.Cells() }

// Ground exposes the normalized ground samples.
func (e *Engine) Ground() []float64 { return e.ground }

// Mass returns the total quantized thickness.
func (e *Engine) Mass() int { return e.grid.Sum() }

// Clear zeroes all fluid.
func (e *Engine) Clear() { e.grid.Clear() }

// Export writes a texture-ordered snapshot of the grid into dst.
func (e *Engine) Export(dst *field.Snapshot) {
	e.exporter.Quantized(dst, e.grid.Cells())
}

// Inject adds fluid in a disc around the cell nearest (u, v) with a
// 1 - d²/R² falloff, saturating each cell at 255. Non-positive amounts and
// negative radii are ignored.
func (e *Engine) Inject(u, v, amount, radiusFraction float64) {
	if math.IsNaN(amount) || amount <= 0 {
		return
	}
	cells := e.grid.Cells()
	core.Disc(e.n, u, v, radiusFraction, func(idx int, weight float64) {
		cells[idx] = quantize(float64(cells[idx]) + amount*weight)
	})
}

// Advance integrates one tick. dt is clamped to core.MaxStep.
func (e *Engine) Advance(dt float64, cfg core.TickConfig) {
	step := core.ClampStep(dt)
	cfg = cfg.Sanitize()

	if !e.grid.Any() {
		return
	}

	cells := e.grid.Cells()
	for i, raw := range cells {
		e.value[i] = float64(raw) / maxUnits
	}

	e.transport(step, cfg.Mobility)
	if cfg.Viscosity > slopeEpsilon {
		e.diffuse(step, cfg.Viscosity)
	}

	cool := cfg.CoolingRate * step
	for i, v := range e.value {
		v -= cool
		if v < 0 {
			v = 0
		}
		cells[i] = quantize(v * maxUnits)
	}
}

// transport moves fluid from each cell to its lower neighbours. Results land
// in e.next and are swapped back into e.value.
func (e *Engine) transport(step, mobility float64) {
	n := e.n
	for i := range e.next {
		e.next[i] = 0
	}
	var drops [8]float64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			v := e.value[i]
			if v <= 0 {
				continue
			}
			h := e.ground[i] + v
			slopeSum := 0.0
			for k, nb := range neighbours {
				drops[k] = 0
				nx, ny := x+nb.dx, y+nb.dy
				if nx < 0 || ny < 0 || nx >= n || ny >= n {
					continue
				}
				j := ny*n + nx
				if d := h - (e.ground[j] + e.value[j]); d > 0 {
					drops[k] = d * nb.weight
					slopeSum += drops[k]
				}
			}
			if slopeSum <= slopeEpsilon {
				e.next[i] += v
				continue
			}
			moved := math.Min(v, mobility*step*slopeSum)
			e.next[i] += v - moved
			if moved <= 0 {
				continue
			}
			for k, nb := range neighbours {
				if drops[k] == 0 {
					continue
				}
				j := (y+nb.dy)*n + x + nb.dx
				e.next[j] += moved * drops[k] / slopeSum
			}
		}
	}
	e.value, e.next = e.next, e.value
}

// diffuse applies an explicit 4-neighbour Laplacian. Missing neighbours at the
// border contribute nothing, so the pass conserves mass. The coefficient is
// capped at maxDiffusion, where the scheme stays non-negative.
func (e *Engine) diffuse(step, viscosity float64) {
	n := e.n
	k := math.Min(viscosity*step, maxDiffusion)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			c := e.value[i]
			lap := 0.0
			if x > 0 {
				lap += e.value[i-1] - c
			}
			if x < n-1 {
				lap += e.value[i+1] - c
			}
			if y > 0 {
				lap += e.value[i-n] - c
			}
			if y < n-1 {
				lap += e.value[i+n] - c
			}
			out := c + k*lap
			if out < 0 {
				out = 0
			}
			e.next[i] = out
		}
	}
	e.value, e.next = e.next, e.value
}

func quantize(units float64) uint8 {
	q := math.Floor(units + quantizeGuard)
	if q <= 0 || math.IsNaN(q) {
		return 0
	}
	if q >= maxUnits {
		return maxUnits
	}
	return uint8(q)
}

func init() {
	core.Register(Name, func(n int, hf *terrain.HeightField) (core.Engine, error) {
		return New(n, hf)
	})
}
