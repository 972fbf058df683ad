package terrain

import (
	"errors"
	"fmt"
	"math"

	"lavaflow/pkg/core"
)

// ErrUnknownKind reports an unsupported synthetic terrain kind.
var ErrUnknownKind = errors.New("terrain: unknown kind")

// Kinds lists the synthetic terrains understood by Generate.
var Kinds = []string{"flat", "ramp", "cone", "hills"}

// Generate builds one of the synthetic terrains used by the tools and tests
// in place of a real tile loader.
func Generate(kind string, r int, relief float64, seed int64) (*HeightField, error) {
	switch kind {
	case "flat":
		return Flat(r, 0)
	case "ramp":
		return Ramp(r, relief)
	case "cone":
		return Cone(r, relief)
	case "hills":
		return Hills(r, relief, seed)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// Flat returns a constant-elevation field.
func Flat(r int, height float64) (*HeightField, error) {
	return build(r, func(u, v float64) float64 { return height })
}

// Ramp returns a plane that falls by rise metres from u=0 to u=1.
func Ramp(r int, rise float64) (*HeightField, error) {
	return build(r, func(u, v float64) float64 { return rise * (1 - u) })
}

// Cone returns a single peak of the given height at the centre, falling
// linearly to zero at distance 0.5.
func Cone(r int, peak float64) (*HeightField, error) {
	return build(r, func(u, v float64) float64 {
		d := math.Hypot(u-0.5, v-0.5)
		return peak * math.Max(0, 1-d/0.5)
	})
}

// Hills sums a handful of seeded Gaussian bumps scaled to the given relief.
func Hills(r int, relief float64, seed int64) (*HeightField, error) {
	rng := core.NewRNG(seed)
	type bump struct{ cx, cy, sigma, amp float64 }
	bumps := make([]bump, 6+rng.IntN(6))
	for i := range bumps {
		bumps[i] = bump{
			cx:    rng.Float64(),
			cy:    rng.Float64(),
			sigma: rng.FloatRange(0.05, 0.25),
			amp:   rng.FloatRange(0.2, 1),
		}
	}
	return build(r, func(u, v float64) float64 {
		h := 0.0
		for _, b := range bumps {
			d2 := (u-b.cx)*(u-b.cx) + (v-b.cy)*(v-b.cy)
			h += b.amp * math.Exp(-d2/(2*b.sigma*b.sigma))
		}
		return h * relief
	})
}

func build(r int, fn func(u, v float64) float64) (*HeightField, error) {
	if r <= 0 {
		return nil, fmt.Errorf("%w: r=%d", ErrInvalidResolution, r)
	}
	data := make([]float64, r*r)
	for j := 0; j < r; j++ {
		v := (float64(j) + 0.5) / float64(r)
		for i := 0; i < r; i++ {
			u := (float64(i) + 0.5) / float64(r)
			data[j*r+i] = fn(u, v)
		}
	}
	return New(r, data)
}
