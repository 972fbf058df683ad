//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"lavaflow/internal/field"
	"lavaflow/internal/terrain"
)

// Painter uploads snapshots into a single RGBA image, one pixel per cell.
type Painter struct {
	n   int
	img *ebiten.Image
	buf []byte

	base        []color.RGBA
	baseFor     *terrain.HeightField
	baseDynamic bool
}

// NewPainter allocates a painter for an n×n grid.
func NewPainter(n int) *Painter {
	p := &Painter{}
	p.resize(n)
	return p
}

func (p *Painter) resize(n int) {
	p.n = n
	p.img = ebiten.NewImage(n, n)
	p.buf = make([]byte, 4*n*n)
	p.baseFor = nil
}

// Blit draws snap over the shaded terrain at the given scale. The grid may
// change size between calls.
func (p *Painter) Blit(dst *ebiten.Image, snap *field.Snapshot, hf *terrain.HeightField, mode Mode, palette []color.RGBA, scale float64) {
	if snap.Size <= 0 {
		return
	}
	if snap.Size != p.n {
		p.resize(snap.Size)
	}
	// Terrain feedback rewrites the height field every tick while active.
	if hf != p.baseFor || p.baseDynamic || hf.Modified() {
		p.base = TerrainShade(hf, p.n)
		p.baseFor = hf
		p.baseDynamic = hf.Modified()
	}
	fillLavaRGBA(p.buf, snap, p.base, mode, palette)
	p.img.WritePixels(p.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	dst.DrawImage(p.img, op)
}

// Size returns the grid side currently allocated.
func (p *Painter) Size() int { return p.n }
