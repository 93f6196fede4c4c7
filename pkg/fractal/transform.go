// Package fractal renders escape-time images of the Mandelbrot set.
package fractal

// Transform advances an orbit by one step.
type Transform interface {
	Next(z, c complex128) complex128
}

// Mandelbrot is the quadratic map z -> z^2 + c.
type Mandelbrot struct{}

func (Mandelbrot) Next(z, c complex128) complex128 {
	return z*z + c
}

var _ Transform = Mandelbrot{}

// Escape iterates t from z0 = 0 and returns the first n for which |z_n|
// exceeds radius. Points that stay bounded for maxIter steps return maxIter.
func Escape(t Transform, c complex128, maxIter int, radius float64) int {
	r2 := radius * radius
	var z complex128
	for n := 1; n <= maxIter; n++ {
		z = t.Next(z, c)
		if real(z)*real(z)+imag(z)*imag(z) > r2 {
			return n
		}
	}
	return maxIter
}
