package fractal

import (
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

// Image paints the grid with palette.
func (g *Grid) Image(palette Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			img.SetRGBA(x, y, palette(g.At(x, y), g.MaxIter))
		}
	}
	return img
}

// ASCII renders the grid as text, one line per row.
// Points inside the set use the last (densest) character of ramp.
func (g *Grid) ASCII(ramp string) string {
	chars := []rune(ramp)
	if len(chars) == 0 {
		chars = []rune(DefaultRamp)
	}
	last := len(chars) - 1

	var b strings.Builder
	b.Grow((g.Width + 1) * g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			n := g.At(x, y)
			idx := last
			if n < g.MaxIter {
				idx = n * last / g.MaxIter
			}
			b.WriteRune(chars[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// EncodePNG writes img as a PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Thumbnail scales img down to maxWidth, keeping the aspect ratio.
// Images already narrow enough are returned unchanged.
func Thumbnail(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}

	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
