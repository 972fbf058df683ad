package field

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/mazznoer/colorgrad"
)

// Palette names understood by NewPalette.
const (
	PaletteInferno = "inferno"
	PaletteViridis = "viridis"
)

// NewPalette samples a 256-entry lookup table from a named gradient. Unknown
// names fall back to inferno.
func NewPalette(name string) []color.RGBA {
	grad := colorgrad.Inferno()
	if name == PaletteViridis {
		grad = colorgrad.Viridis()
	}
	colors := grad.Colors(256)
	pal := make([]color.RGBA, len(colors))
	for i, c := range colors {
		pal[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return pal
}

// Preview maps one channel of s onto an image through pal, scaling [lo, hi]
// onto the palette. Image row 0 is the top of the map (v = 1), so the
// texture-ordered rows are flipped back. Cells at or below lo are drawn
// transparent.
func Preview(s *Snapshot, ch int, lo, hi float64, pal []color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Size, s.Size))
	if len(pal) == 0 || hi <= lo {
		return img
	}
	last := len(pal) - 1
	for row := 0; row < s.Size; row++ {
		py := s.Size - 1 - row
		for x := 0; x < s.Size; x++ {
			v := float64(s.At(x, row, ch))
			if v <= lo {
				continue
			}
			t := (v - lo) / (hi - lo)
			if t > 1 {
				t = 1
			}
			img.SetRGBA(x, py, pal[int(t*float64(last))])
		}
	}
	return img
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
