//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lavaflow/internal/core"
	"lavaflow/internal/vents"
)

const brushSegments = 32

var (
	ventColor         = color.RGBA{R: 255, G: 230, B: 120, A: 255}
	ventDisabledColor = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	brushColor        = color.RGBA{R: 150, G: 150, B: 156, A: 160}
)

// Overlay draws vent markers and the injection brush over the map.
// Key 1 toggles vents, key 2 toggles the brush.
type Overlay struct {
	showVents bool
	showBrush bool
	pixel     *ebiten.Image
}

// NewOverlay constructs an overlay with both layers visible.
func NewOverlay() *Overlay {
	o := &Overlay{showVents: true, showBrush: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the overlay toggles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showVents = !o.showVents
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showBrush = !o.showBrush
	}
}

// Draw renders the overlay for an n×n grid shown at scale pixels per cell.
// The brush is drawn at (cx, cy) in screen pixels when inside is true.
func (o *Overlay) Draw(screen *ebiten.Image, vs []vents.Vent, enabled bool, n int, scale float64, radiusFraction float64, cx, cy int, inside bool) {
	if n <= 0 || scale <= 0 {
		return
	}
	view := float64(n) * scale
	if o.showVents {
		col := ventColor
		if !enabled {
			col = ventDisabledColor
		}
		size := math.Max(3, scale)
		for _, v := range vs {
			x, y := core.CellAt(n, v.U, v.V)
			px := (float64(x) + 0.5) * scale
			py := (float64(y) + 0.5) * scale
			o.drawPoint(screen, px, py, size+2, color.RGBA{A: 200})
			o.drawPoint(screen, px, py, size, col)
		}
	}
	if o.showBrush && inside {
		r := float64(core.DiscRadius(n, radiusFraction)) * scale
		x, y := float64(cx), float64(cy)
		for i := 0; i < brushSegments; i++ {
			a0 := 2 * math.Pi * float64(i) / brushSegments
			a1 := 2 * math.Pi * float64(i+1) / brushSegments
			x0, y0 := x+r*math.Cos(a0), y+r*math.Sin(a0)
			x1, y1 := x+r*math.Cos(a1), y+r*math.Sin(a1)
			if x0 < 0 || x1 < 0 || x0 > view || x1 > view {
				continue
			}
			o.drawLine(screen, x0, y0, x1, y1, 1, brushColor)
		}
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
