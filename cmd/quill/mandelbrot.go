package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill/pkg/fractal"
)

var (
	mbParams  = fractal.DefaultParams()
	mbCenterR float64
	mbCenterI float64
	mbPalette string
	mbOut     string
	mbThumb   int
	mbASCII   bool
	mbWorkers int
)

var mandelbrotCmd = &cobra.Command{
	Use:   "mandelbrot",
	Short: "Render the Mandelbrot set",
	Long: `Render the Mandelbrot set by escape-time iteration of z -> z^2 + c.
Each pixel is colored by the number of iterations before |z| exceeds the
escape radius; points that never escape belong to the set.

Writes a PNG to --out, or text to stdout with --ascii.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := mbParams
		p.Center = complex(mbCenterR, mbCenterI)
		if err := p.Validate(); err != nil {
			fatal("validating parameters", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		grid, err := fractal.Render(ctx, p, mbWorkers)
		if err != nil {
			fatal("rendering", err)
		}

		if mbASCII {
			fmt.Print(grid.ASCII(fractal.DefaultRamp))
			return
		}

		palette, err := fractal.LookupPalette(mbPalette)
		if err != nil {
			fatal("selecting palette", err)
		}
		img := grid.Image(palette)
		if err := writePNG(mbOut, img); err != nil {
			fatal("writing image", err)
		}
		fmt.Printf("Wrote %s (%dx%d, %d points inside)\n", mbOut, p.Width, p.Height, grid.Inside())

		if mbThumb > 0 {
			thumbPath := strings.TrimSuffix(mbOut, ".png") + ".thumb.png"
			if err := writePNG(thumbPath, fractal.Thumbnail(img, mbThumb)); err != nil {
				fatal("writing thumbnail", err)
			}
			fmt.Printf("Wrote %s\n", thumbPath)
		}
	},
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fractal.EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(mandelbrotCmd)
	f := mandelbrotCmd.Flags()
	f.IntVar(&mbParams.Width, "width", mbParams.Width, "Image width in pixels")
	f.IntVar(&mbParams.Height, "height", mbParams.Height, "Image height in pixels")
	f.IntVar(&mbParams.MaxIter, "iter", mbParams.MaxIter, "Maximum iterations per point")
	f.Float64Var(&mbParams.EscapeRadius, "radius", mbParams.EscapeRadius, "Escape radius (at least 2)")
	f.Float64Var(&mbParams.Span, "span", mbParams.Span, "Width of the viewport on the real axis")
	f.Float64Var(&mbCenterR, "center-re", real(mbParams.Center), "Real part of the viewport center")
	f.Float64Var(&mbCenterI, "center-im", imag(mbParams.Center), "Imaginary part of the viewport center")
	f.StringVar(&mbPalette, "palette", "gray", "Palette ("+strings.Join(fractal.PaletteNames(), ", ")+")")
	f.StringVarP(&mbOut, "out", "o", "mandelbrot.png", "Output PNG path")
	f.IntVar(&mbThumb, "thumb", 0, "Also write a thumbnail this many pixels wide")
	f.BoolVar(&mbASCII, "ascii", false, "Print ASCII art to stdout instead of a PNG")
	f.IntVar(&mbWorkers, "workers", runtime.NumCPU(), "Number of render workers")
}
