package fractal

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Params describe the region of the complex plane to render.
type Params struct {
	Width  int
	Height int
	// MaxIter caps the orbit length; points reaching it are treated as inside.
	MaxIter      int
	EscapeRadius float64
	// Center is the complex value at the middle of the image.
	Center complex128
	// Span is the width of the real axis covered by the image.
	Span float64
}

// DefaultParams frames the whole set.
func DefaultParams() Params {
	return Params{
		Width:        800,
		Height:       600,
		MaxIter:      100,
		EscapeRadius: 2,
		Center:       complex(-0.5, 0),
		Span:         3,
	}
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("image size must be positive, got %dx%d", p.Width, p.Height)
	case p.MaxIter <= 0:
		return fmt.Errorf("max iterations must be positive, got %d", p.MaxIter)
	case p.EscapeRadius < 2:
		return fmt.Errorf("escape radius must be at least 2, got %g", p.EscapeRadius)
	case p.Span <= 0:
		return fmt.Errorf("span must be positive, got %g", p.Span)
	}
	return nil
}

// Point maps the center of pixel (x, y) onto the complex plane.
// Row 0 is the top of the image, so imaginary values decrease downwards.
func (p Params) Point(x, y int) complex128 {
	px := p.Span / float64(p.Width)
	re := real(p.Center) - p.Span/2 + (float64(x)+0.5)*px
	im := imag(p.Center) + (float64(p.Height)/2-float64(y)-0.5)*px
	return complex(re, im)
}

// Grid holds escape counts in row-major order.
type Grid struct {
	Width   int
	Height  int
	MaxIter int
	Counts  []int
}

// At returns the escape count of pixel (x, y).
func (g *Grid) At(x, y int) int {
	return g.Counts[y*g.Width+x]
}

// Inside reports the number of pixels that never escaped.
func (g *Grid) Inside() int {
	n := 0
	for _, c := range g.Counts {
		if c >= g.MaxIter {
			n++
		}
	}
	return n
}

// Render computes the escape count of every pixel, spreading rows across
// workers. Zero workers means one per CPU.
func Render(ctx context.Context, p Params, workers int) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	grid := &Grid{
		Width:   p.Width,
		Height:  p.Height,
		MaxIter: p.MaxIter,
		Counts:  make([]int, p.Width*p.Height),
	}

	g, ctx := errgroup.WithContext(ctx)
	rows := make(chan int)

	g.Go(func() error {
		defer close(rows)
		for y := 0; y < p.Height; y++ {
			select {
			case rows <- y:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var m Mandelbrot
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for y := range rows {
				if err := ctx.Err(); err != nil {
					return err
				}
				row := grid.Counts[y*p.Width : (y+1)*p.Width]
				for x := range row {
					row[x] = Escape(m, p.Point(x, y), p.MaxIter, p.EscapeRadius)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("render interrupted: %w", err)
		}
		return nil, err
	}
	return grid, nil
}
