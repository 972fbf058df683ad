package terrain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidResolution reports a non-positive resolution or mismatched data.
var ErrInvalidResolution = errors.New("terrain: invalid resolution")

// HeightField is an R×R grid of elevations in metres. Texel (i, j) sits at
// texture coordinates ((i+0.5)/R, (j+0.5)/R): i grows with u and j grows with
// v. A pristine copy is kept so terrain feedback can be undone.
type HeightField struct {
	R int

	data     []float64
	pristine []float64
	modified bool
}

// New copies data into a height field of resolution r.
func New(r int, data []float64) (*HeightField, error) {
	if r <= 0 || len(data) != r*r {
		return nil, fmt.Errorf("%w: r=%d len=%d", ErrInvalidResolution, r, len(data))
	}
	h := &HeightField{
		R:        r,
		data:     append([]float64(nil), data...),
		pristine: append([]float64(nil), data...),
	}
	return h, nil
}

// At returns the elevation of texel (i, j).
func (h *HeightField) At(i, j int) float64 { return h.data[j*h.R+i] }

// Set overwrites texel (i, j).
func (h *HeightField) Set(i, j int, v float64) {
	h.data[j*h.R+i] = v
	h.modified = true
}

// Sample bilinearly interpolates the elevation at normalized (u, v). Inputs
// outside [0,1] clamp to the border texels.
func (h *HeightField) Sample(u, v float64) float64 {
	x := clampF(u*float64(h.R)-0.5, 0, float64(h.R-1))
	y := clampF(v*float64(h.R)-0.5, 0, float64(h.R-1))
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= h.R {
		x1 = h.R - 1
	}
	if y1 >= h.R {
		y1 = h.R - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)
	top := h.At(x0, y0)*(1-fx) + h.At(x1, y0)*fx
	bottom := h.At(x0, y1)*(1-fx) + h.At(x1, y1)*fx
	return top*(1-fy) + bottom*fy
}

// Range returns the minimum and maximum elevation.
func (h *HeightField) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Data returns a copy of the live elevations.
func (h *HeightField) Data() []float64 { return append([]float64(nil), h.data...) }

// Modified reports whether any texel differs from the pristine load.
func (h *HeightField) Modified() bool { return h.modified }

// Restore discards all modifications.
func (h *HeightField) Restore() {
	copy(h.data, h.pristine)
	h.modified = false
}

// ApplyDelta rebuilds every texel as pristine + delta(u, v), where (u, v) is
// the texel centre. Engines running on a different grid resolution use it to
// write their terrain modifications back.
func (h *HeightField) ApplyDelta(delta func(u, v float64) float64) {
	changed := false
	r := float64(h.R)
	for j := 0; j < h.R; j++ {
		v := (float64(j) + 0.5) / r
		for i := 0; i < h.R; i++ {
			u := (float64(i) + 0.5) / r
			idx := j*h.R + i
			d := delta(u, v)
			h.data[idx] = h.pristine[idx] + d
			if d != 0 {
				changed = true
			}
		}
	}
	h.modified = changed
}

// Clone returns an independent copy, pristine state included.
func (h *HeightField) Clone() *HeightField {
	return &HeightField{
		R:        h.R,
		data:     append([]float64(nil), h.data...),
		pristine: append([]float64(nil), h.pristine...),
		modified: h.modified,
	}
}

func clampF(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
