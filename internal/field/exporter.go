package field

import (
	"math"

	"lavaflow/internal/terrain"
)

// ThermalFields is the read-only view of the thermal engine's state handed to
// the exporter. All slices are grid-ordered (row 0 is v = 1).
type ThermalFields struct {
	Thickness   []float64
	Temperature []float64
	VX, VY      []float64
	Solid       []bool
	// UnitThickness converts metres into quantized thickness units.
	UnitThickness float64
}

// Exporter projects grid-ordered engine buffers into texture-ordered
// snapshots. It holds no state besides the grid size.
type Exporter struct {
	n int
}

// NewExporter returns an exporter for an n×n grid.
func NewExporter(n int) Exporter { return Exporter{n: n} }

// textureRow flips a grid row into texture order. It mirrors the v flip
// applied when injecting.
func (e Exporter) textureRow(y int) int { return e.n - 1 - y }

// Quantized exports 8-bit thickness. The thermal channels are zeroed.
func (e Exporter) Quantized(dst *Snapshot, thickness []uint8) {
	dst.Resize(e.n)
	dst.Elevation, dst.ElevationSize = nil, 0
	for y := 0; y < e.n; y++ {
		row := e.textureRow(y)
		for x := 0; x < e.n; x++ {
			base := (row*e.n + x) * Channels
			dst.Data[base+ChannelThickness] = float32(thickness[y*e.n+x])
			dst.Data[base+ChannelTemperature] = 0
			dst.Data[base+ChannelSpeed] = 0
			dst.Data[base+ChannelSolid] = 0
		}
	}
}

// Thermal exports the full multi-channel state.
func (e Exporter) Thermal(dst *Snapshot, f ThermalFields) {
	dst.Resize(e.n)
	dst.Elevation, dst.ElevationSize = nil, 0
	unit := f.UnitThickness
	if unit <= 0 {
		unit = 1
	}
	for y := 0; y < e.n; y++ {
		row := e.textureRow(y)
		for x := 0; x < e.n; x++ {
			i := y*e.n + x
			base := (row*e.n + x) * Channels
			q := f.Thickness[i] / unit
			if q > 255 {
				q = 255
			}
			if q < 0 {
				q = 0
			}
			speed := f.VX[i]*f.VX[i] + f.VY[i]*f.VY[i]
			dst.Data[base+ChannelThickness] = float32(int(q))
			dst.Data[base+ChannelTemperature] = float32(f.Temperature[i])
			dst.Data[base+ChannelSpeed] = float32(math.Sqrt(speed))
			if f.Solid[i] && q >= 1 {
				dst.Data[base+ChannelSolid] = 1
			} else {
				dst.Data[base+ChannelSolid] = 0
			}
		}
	}
}

// Terrain attaches the height field. The height field is already
// texture-ordered, so this is a straight copy.
func (e Exporter) Terrain(dst *Snapshot, hf *terrain.HeightField) {
	data := hf.Data()
	if len(dst.Elevation) != len(data) {
		dst.Elevation = make([]float32, len(data))
	}
	for i, v := range data {
		dst.Elevation[i] = float32(v)
	}
	dst.ElevationSize = hf.R
}
