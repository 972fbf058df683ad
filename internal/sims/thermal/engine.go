package thermal

import (
	"fmt"
	"math"

	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/terrain"
)

// Name is the registry key for this engine.
const Name = "thermal"

// CellState is a copy of one cell's thermal state.
type CellState struct {
	Thickness   float64
	Temperature float64
	VX, VY      float64
	Viscosity   float64
	Age         float64
	Crust       float64
	Solid       bool
}

// Engine advances lava thickness and temperature with a VFT viscosity, a
// Bingham yield law and terrain feedback. Cells are stored as parallel
// slices indexed y*n+x with row 0 at v = 1.
type Engine struct {
	n      int
	params Params
	hf     *terrain.HeightField

	thickness   []float64
	temperature []float64
	vx, vy      []float64
	viscosity   []float64
	age         []float64
	crust       []float64
	solid       []bool

	nextThickness   []float64
	nextTemperature []float64
	nextSolid       []bool

	// Terrain modification: elevation = base + deposit, origin is the
	// elevation sampled at construction.
	base    []float64
	deposit []float64
	origin  []float64

	exporter field.Exporter
}

// New builds an n×n engine over hf. The engine becomes the single writer of
// hf while terrain feedback is enabled.
func New(n int, hf *terrain.HeightField, params Params) (*Engine, error) {
	if n <= 0 {
		return nil, fmt.Errorf("thermal: %w: %d", core.ErrInvalidSize, n)
	}
	if hf == nil {
		return nil, fmt.Errorf("thermal: %w", core.ErrNilTerrain)
	}
	size := n * n
	e := &Engine{
		n:               n,
		params:          params.Sanitize(),
		hf:              hf,
		thickness:       make([]float64, size),
		temperature:     make([]float64, size),
		vx:              make([]float64, size),
		vy:              make([]float64, size),
		viscosity:       make([]float64, size),
		age:             make([]float64, size),
		crust:           make([]float64, size),
		solid:           make([]bool, size),
		nextThickness:   make([]float64, size),
		nextTemperature: make([]float64, size),
		nextSolid:       make([]bool, size),
		base:            make([]float64, size),
		deposit:         make([]float64, size),
		origin:          make([]float64, size),
		exporter:        field.NewExporter(n),
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			u, v := core.CellCenter(n, x, y)
			e.origin[y*n+x] = hf.Sample(u, v)
		}
	}
	copy(e.base, e.origin)
	e.reset()
	return e, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return Name }

// Size reports the grid side.
func (e *Engine) Size() int { return e.n }

// Params returns the active tunables.
func (e *Engine) Params() Params { return e.params }

// SetParams replaces the tunables. Cell state is left untouched.
func (e *Engine) SetParams(p Params) { e.params = p.Sanitize() }

// Terrain returns the height field the engine writes feedback into.
func (e *Engine) Terrain() *terrain.HeightField { return e.hf }

// TerrainModified reports whether feedback has changed the height field.
func (e *Engine) TerrainModified() bool { return e.hf.Modified() }

// Cell returns the state of cell (x, y).
func (e *Engine) Cell(x, y int) CellState {
	i := y*e.n + x
	return CellState{
		Thickness:   e.thickness[i],
		Temperature: e.temperature[i],
		VX:          e.vx[i],
		VY:          e.vy[i],
		Viscosity:   e.viscosity[i],
		Age:         e.age[i],
		Crust:       e.crust[i],
		Solid:       e.solid[i],
	}
}

// Elevation returns the modified ground elevation of cell (x, y).
func (e *Engine) Elevation(x, y int) float64 {
	i := y*e.n + x
	return e.base[i] + e.deposit[i]
}

// Volume returns the total standing lava in metres of thickness.
func (e *Engine) Volume() float64 {
	total := 0.0
	for _, h := range e.thickness {
		total += h
	}
	return total
}

// Deposited returns the total lava frozen into the terrain.
func (e *Engine) Deposited() float64 {
	total := 0.0
	for _, d := range e.deposit {
		total += d
	}
	return total
}

// Clear empties every cell and restores the original terrain.
func (e *Engine) Clear() {
	e.reset()
	copy(e.base, e.origin)
	for i := range e.deposit {
		e.deposit[i] = 0
	}
	e.hf.Restore()
}

func (e *Engine) reset() {
	for i := range e.thickness {
		e.empty(i)
	}
}

// empty puts cell i in the dry state: ambient, solid and at rest.
func (e *Engine) empty(i int) {
	e.thickness[i] = 0
	e.temperature[i] = AmbientTemp
	e.vx[i], e.vy[i] = 0, 0
	e.viscosity[i] = SolidViscosity
	e.age[i] = 0
	e.crust[i] = 0
	e.solid[i] = true
}

// Inject adds fresh lava at the eruption temperature in a disc around the
// cell nearest (u, v), mixing temperature by mass with what is already there.
func (e *Engine) Inject(u, v, amount, radiusFraction float64) {
	if math.IsNaN(amount) || amount <= 0 {
		return
	}
	hot := e.params.EruptionTemp
	core.Disc(e.n, u, v, radiusFraction, func(i int, weight float64) {
		add := amount * weight * e.params.ThicknessPerUnit
		if add <= 0 {
			return
		}
		h := e.thickness[i]
		t := hot
		if h >= emptyEpsilon {
			t = (h*e.temperature[i] + add*hot) / (h + add)
		}
		e.thickness[i] = h + add
		e.temperature[i] = t
		e.viscosity[i] = Viscosity(t)
		e.age[i] = 0
		e.crust[i] = 0
		e.solid[i] = t < SolidificationTemp
		if e.solid[i] {
			e.vx[i], e.vy[i] = 0, 0
		}
	})
}

// Advance integrates one tick. dt is clamped to core.MaxStep. Mobility
// scales the Bingham velocity; the other rates are governed by the
// rheology itself.
func (e *Engine) Advance(dt float64, cfg core.TickConfig) {
	step := core.ClampStep(dt)
	cfg = cfg.Sanitize()
	if !e.active() {
		return
	}
	e.cool(step)
	e.velocities(cfg.Mobility)
	e.redistribute(step)
	if e.params.TerrainFeedback {
		e.feedback(step)
	}
	e.settle()
}

func (e *Engine) active() bool {
	for _, h := range e.thickness {
		if h >= emptyEpsilon {
			return true
		}
	}
	return false
}

// cool applies the heat balance, crust growth and solidification.
func (e *Engine) cool(step float64) {
	p := e.params
	for i, h := range e.thickness {
		if h < emptyEpsilon {
			continue
		}
		speed := math.Hypot(e.vx[i], e.vy[i])
		t := Cool(e.temperature[i], h, speed, step, p)
		e.temperature[i] = t
		e.viscosity[i] = Viscosity(t)
		e.age[i] += step
		if t < CrustTemp {
			e.crust[i] = math.Min(h, e.crust[i]+p.CrustGrowthRate*step)
		}
		if t < SolidificationTemp {
			e.solid[i] = true
			e.vx[i], e.vy[i] = 0, 0
		}
	}
}

func (e *Engine) surface(i int) float64 {
	return e.base[i] + e.deposit[i] + e.thickness[i]
}

// velocities evaluates the Bingham law on interior cells along the downhill
// gradient of the lava surface.
func (e *Engine) velocities(mobility float64) {
	n := e.n
	p := e.params
	twoDx := 2 * p.CellSize
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			e.vx[i], e.vy[i] = 0, 0
			if x == 0 || y == 0 || x == n-1 || y == n-1 {
				continue
			}
			h := e.thickness[i]
			if e.solid[i] || h < emptyEpsilon {
				continue
			}
			gx := (e.surface(i+1) - e.surface(i-1)) / twoDx
			gy := (e.surface(i+n) - e.surface(i-n)) / twoDx
			slope := math.Hypot(gx, gy)
			if slope < slopeEpsilon {
				continue
			}
			speed := YieldVelocity(h, slope, e.viscosity[i], p) * mobility
			if speed <= 0 {
				continue
			}
			e.vx[i] = -gx / slope * speed
			e.vy[i] = -gy / slope * speed
		}
	}
}

// redistribute moves a capped fraction of each moving cell towards its
// downstream neighbour on each axis. State is read from the current buffers
// and written to the next ones.
func (e *Engine) redistribute(step float64) {
	n := e.n
	p := e.params
	copy(e.nextThickness, e.thickness)
	copy(e.nextTemperature, e.temperature)
	copy(e.nextSolid, e.solid)

	for y := 1; y < n-1; y++ {
		for x := 1; x < n-1; x++ {
			i := y*n + x
			h := e.thickness[i]
			if e.solid[i] || h < p.MinFlowThickness {
				continue
			}
			if math.Hypot(e.vx[i], e.vy[i]) < p.MinFlowVelocity {
				continue
			}
			if vx := e.vx[i]; vx != 0 {
				j := i + 1
				if vx < 0 {
					j = i - 1
				}
				frac := math.Min(p.MaxFluxFraction, math.Abs(vx)*step/p.CellSize)
				e.transfer(i, j, h*frac)
			}
			if vy := e.vy[i]; vy != 0 {
				j := i + n
				if vy < 0 {
					j = i - n
				}
				frac := math.Min(p.MaxFluxFraction, math.Abs(vy)*step/p.CellSize)
				e.transfer(i, j, h*frac)
			}
		}
	}

	e.thickness, e.nextThickness = e.nextThickness, e.thickness
	e.temperature, e.nextTemperature = e.nextTemperature, e.temperature
	e.solid, e.nextSolid = e.nextSolid, e.solid
	for i, h := range e.thickness {
		if h >= emptyEpsilon {
			e.viscosity[i] = Viscosity(e.temperature[i])
		}
	}
}

// transfer moves amount metres from cell i to cell j. Amounts too small to
// register as lava are not moved. A receiver takes the hotter of the two
// temperatures unless it is already solid lava, in which case the arrival
// freezes onto it.
func (e *Engine) transfer(i, j int, amount float64) {
	if amount < emptyEpsilon {
		return
	}
	e.nextThickness[i] -= amount
	e.nextThickness[j] += amount
	if e.solid[j] && e.thickness[j] >= emptyEpsilon {
		return
	}
	if src := e.temperature[i]; src > e.nextTemperature[j] {
		e.nextTemperature[j] = src
	}
	e.nextSolid[j] = e.nextTemperature[j] < SolidificationTemp
}

// settle returns cells drained below the empty threshold to the dry state.
func (e *Engine) settle() {
	for i, h := range e.thickness {
		if h < emptyEpsilon && (h != 0 || !e.solid[i]) {
			e.empty(i)
		}
	}
}

// Export writes the four-channel snapshot, plus the height field when
// feedback has modified it.
func (e *Engine) Export(dst *field.Snapshot) {
	e.exporter.Thermal(dst, field.ThermalFields{
		Thickness:     e.thickness,
		Temperature:   e.temperature,
		VX:            e.vx,
		VY:            e.vy,
		Solid:         e.solid,
		UnitThickness: e.params.ThicknessPerUnit,
	})
	if e.hf.Modified() {
		e.exporter.Terrain(dst, e.hf)
	}
}

func init() {
	core.Register(Name, func(n int, hf *terrain.HeightField) (core.Engine, error) {
		return New(n, hf, DefaultParams())
	})
}
