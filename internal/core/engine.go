package core

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"lavaflow/internal/field"
	"lavaflow/internal/terrain"
)

var (
	// ErrInvalidSize reports a non-positive grid size.
	ErrInvalidSize = errors.New("grid size must be a positive integer")
	// ErrInvalidTimeStep reports a negative or non-finite dt.
	ErrInvalidTimeStep = errors.New("dt must be finite and non-negative")
	// ErrUnknownEngine reports a lookup for an unregistered engine name.
	ErrUnknownEngine = errors.New("unknown engine")
	// ErrNilTerrain reports a missing height field.
	ErrNilTerrain = errors.New("height field is required")
)

// MaxStep caps the time step an engine integrates in a single Advance.
const MaxStep = 0.1

// TickConfig carries the per-tick tunables supplied by the host loop.
type TickConfig struct {
	Mobility        float64
	Viscosity       float64
	CoolingRate     float64
	InjectionAmount float64
	InjectionRadius float64
}

// DefaultTickConfig returns the interactive defaults.
func DefaultTickConfig() TickConfig {
	return TickConfig{
		Mobility:        0.6,
		Viscosity:       0.02,
		CoolingRate:     0.01,
		InjectionAmount: 120,
		InjectionRadius: 0.02,
	}
}

// Sanitize replaces negative or NaN rates with zero and infinite values with
// zero so a tick never propagates non-finite numbers.
func (c TickConfig) Sanitize() TickConfig {
	c.Mobility = nonNegative(c.Mobility)
	c.Viscosity = nonNegative(c.Viscosity)
	c.CoolingRate = nonNegative(c.CoolingRate)
	c.InjectionAmount = nonNegative(c.InjectionAmount)
	c.InjectionRadius = nonNegative(c.InjectionRadius)
	return c
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ValidateStep checks the caller-supplied dt.
func ValidateStep(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeStep, dt)
	}
	return nil
}

// ClampStep validates dt and limits it to MaxStep. Engines call it at the top
// of Advance; an invalid dt is a caller bug and panics.
func ClampStep(dt float64) float64 {
	if err := ValidateStep(dt); err != nil {
		panic(err)
	}
	return math.Min(dt, MaxStep)
}

// Engine is the contract shared by the interchangeable simulators. Engines are
// single-threaded: the host drives Advance from one goroutine and reads state
// only through exported snapshots.
type Engine interface {
	Name() string
	Size() int
	Advance(dt float64, cfg TickConfig)
	Inject(u, v, amount, radiusFraction float64)
	Export(dst *field.Snapshot)
	Clear()
}

// TerrainOwner is implemented by engines that write back into the height field.
type TerrainOwner interface {
	Terrain() *terrain.HeightField
	TerrainModified() bool
}

// Factory constructs an engine over an n×n grid resting on hf.
type Factory func(n int, hf *terrain.HeightField) (Engine, error)

var engines = map[string]Factory{}

// Register adds an engine factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	engines[name] = f
}

// Engines lists the registered engine names in sorted order.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named engine.
func Build(name string, n int, hf *terrain.HeightField) (Engine, error) {
	f, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, name)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	if hf == nil {
		return nil, ErrNilTerrain
	}
	return f(n, hf)
}
