package render

import (
	"image/color"
	"math"

	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/sims/thermal"
	"lavaflow/internal/terrain"
)

// Mode selects which snapshot channel drives the lava palette.
type Mode int

const (
	// ModeThickness colours lava by quantized thickness.
	ModeThickness Mode = iota
	// ModeTemperature colours lava by temperature.
	ModeTemperature
)

// Next cycles to the following mode.
func (m Mode) Next() Mode {
	if m == ModeTemperature {
		return ModeThickness
	}
	return ModeTemperature
}

func (m Mode) String() string {
	if m == ModeTemperature {
		return "temperature"
	}
	return "thickness"
}

// channel returns the snapshot channel and the value range mapped onto the
// palette.
func (m Mode) channel() (ch int, lo, hi float64) {
	if m == ModeTemperature {
		return field.ChannelTemperature, thermal.SolidificationTemp, thermal.DefaultParams().EruptionTemp
	}
	return field.ChannelThickness, 0, 255
}

var crustColor = color.RGBA{R: 58, G: 52, B: 50, A: 255}

// TerrainShade colours every cell of an n×n grid by elevation, darkening
// flat ground so slopes stand out. The result is in screen order: index
// y*n+x with y = 0 at the top (v = 1).
func TerrainShade(hf *terrain.HeightField, n int) []color.RGBA {
	out := make([]color.RGBA, n*n)
	if hf == nil || n <= 0 {
		return out
	}
	heights := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			heights[y*n+x] = hf.Sample(core.CellCenter(n, x, y))
		}
	}
	lo, hi := heights[0], heights[0]
	for _, h := range heights {
		lo = math.Min(lo, h)
		hi = math.Max(hi, h)
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			idx := y*n + x
			h := heights[idx]
			maxDiff := 0.0
			if x > 0 {
				maxDiff = math.Max(maxDiff, math.Abs(h-heights[idx-1]))
			}
			if x+1 < n {
				maxDiff = math.Max(maxDiff, math.Abs(h-heights[idx+1]))
			}
			if y > 0 {
				maxDiff = math.Max(maxDiff, math.Abs(h-heights[idx-n]))
			}
			if y+1 < n {
				maxDiff = math.Max(maxDiff, math.Abs(h-heights[idx+n]))
			}
			col := elevationColor((h - lo) / span)
			// Neighbour differences are a few percent of the relief at most.
			slope := clamp01(maxDiff / span * float64(n) / 4)
			shade := 0.6 + 0.4*slope
			col.R = scaleComponent(col.R, shade)
			col.G = scaleComponent(col.G, shade)
			col.B = scaleComponent(col.B, shade)
			out[idx] = col
		}
	}
	return out
}

// fillLavaRGBA composes lava from snap over the terrain base into buf, flipping
// the texture-ordered snapshot rows into screen order. Thin lava is drawn
// translucent; solidified lava is drawn as dark crust.
func fillLavaRGBA(buf []byte, snap *field.Snapshot, base []color.RGBA, mode Mode, palette []color.RGBA) {
	n := snap.Size
	if len(buf) < 4*n*n || len(base) < n*n {
		return
	}
	ch, lo, hi := mode.channel()
	last := len(palette) - 1
	for py := 0; py < n; py++ {
		row := n - 1 - py
		for x := 0; x < n; x++ {
			idx := py*n + x
			col := base[idx]
			if thick := snap.At(x, row, field.ChannelThickness); thick > 0 {
				lava := crustColor
				if snap.At(x, row, field.ChannelSolid) == 0 && last >= 0 {
					t := clamp01((float64(snap.At(x, row, ch)) - lo) / (hi - lo))
					lava = palette[int(t*float64(last))]
				}
				col = lerpRGBA(col, lava, clamp01(0.35+float64(thick)/48))
			}
			o := idx * 4
			buf[o+0] = col.R
			buf[o+1] = col.G
			buf[o+2] = col.B
			buf[o+3] = 255
		}
	}
}

func elevationColor(t float64) color.RGBA {
	t = clamp01(t)
	stops := []struct {
		t   float64
		col color.RGBA
	}{
		{0.0, color.RGBA{R: 46, G: 58, B: 44, A: 255}},
		{0.35, color.RGBA{R: 84, G: 104, B: 64, A: 255}},
		{0.65, color.RGBA{R: 128, G: 112, B: 84, A: 255}},
		{1.0, color.RGBA{R: 196, G: 190, B: 180, A: 255}},
	}
	for i := 1; i < len(stops); i++ {
		curr := stops[i]
		if t <= curr.t {
			prev := stops[i-1]
			return lerpRGBA(prev.col, curr.col, (t-prev.t)/(curr.t-prev.t))
		}
	}
	return stops[len(stops)-1].col
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func scaleComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
