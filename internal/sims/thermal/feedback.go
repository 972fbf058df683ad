package thermal

import (
	"math"

	"lavaflow/internal/core"
)

// feedback erodes the bed under hot lava and freezes solid lava into the
// terrain, then writes the modified elevation back into the height field.
func (e *Engine) feedback(step float64) {
	p := e.params
	changed := false
	for i, h := range e.thickness {
		if h < emptyEpsilon {
			continue
		}
		if e.temperature[i] > ErosionTemp && h >= p.MinFlowThickness && p.ErosionRate > 0 {
			cut := math.Min(MaxErosionPerStep, p.ErosionRate*h*step)
			e.base[i] -= cut
			changed = changed || cut > 0
		}
		if e.solid[i] {
			e.deposit[i] += h
			e.empty(i)
			changed = true
		}
	}
	if changed {
		e.writeBack()
	}
}

// writeBack maps each height field texel to the grid cell it falls in and
// offsets the pristine elevation by that cell's modification.
func (e *Engine) writeBack() {
	n := e.n
	e.hf.ApplyDelta(func(u, v float64) float64 {
		x, y := core.CellAt(n, u, v)
		i := y*n + x
		return e.base[i] + e.deposit[i] - e.origin[i]
	})
}
