package fractal

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// Palette maps an escape count to a color.
type Palette func(count, maxIter int) color.RGBA

var palettes = map[string]Palette{
	"gray":    Gray,
	"inverse": Inverse,
	"bands":   Bands,
}

// LookupPalette returns the palette registered under name.
func LookupPalette(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q (available: %s)", name, strings.Join(PaletteNames(), ", "))
	}
	return p, nil
}

// PaletteNames lists the registered palettes.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Gray paints the set black and fades escaping points from white (fast) to
// black (slow).
func Gray(count, maxIter int) color.RGBA {
	if count >= maxIter {
		return color.RGBA{A: 0xff}
	}
	v := uint8(255 - 255*count/maxIter)
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

// Inverse is Gray flipped: a white set on a dark background, suited to print.
func Inverse(count, maxIter int) color.RGBA {
	c := Gray(count, maxIter)
	return color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: 0xff}
}

var bandRamp = []color.RGBA{
	{66, 30, 15, 255}, {25, 7, 26, 255}, {9, 1, 47, 255}, {4, 4, 73, 255},
	{0, 7, 100, 255}, {12, 44, 138, 255}, {24, 82, 177, 255}, {57, 125, 209, 255},
	{134, 181, 229, 255}, {211, 236, 248, 255}, {241, 233, 191, 255}, {248, 201, 95, 255},
	{255, 170, 0, 255}, {204, 128, 0, 255}, {153, 87, 0, 255}, {106, 52, 3, 255},
}

// Bands cycles through a sixteen-color ramp so neighbouring counts contrast.
func Bands(count, maxIter int) color.RGBA {
	if count >= maxIter {
		return color.RGBA{A: 0xff}
	}
	return bandRamp[count%len(bandRamp)]
}

// DefaultRamp orders characters from sparse to dense for terminal output.
const DefaultRamp = " .:-=+*#%@"
