package noise

import (
	"github.com/aquilax/go-perlin"
)

// Fractal is a multi-octave 2D noise used for small terrain detail on top of Field.
type Fractal struct {
	noise *perlin.Perlin
	seed  int64
}

// NewFractal creates an octave noise.
// alpha is the weight divisor between octaves, beta the frequency multiplier
// and octaves the number of summed layers.
func NewFractal(alpha, beta float64, octaves int32, seed int64) *Fractal {
	return &Fractal{
		noise: perlin.NewPerlin(alpha, beta, octaves, seed),
		seed:  seed,
	}
}

// Sample2D returns the noise value at (x, z).
func (f *Fractal) Sample2D(x, z float64) float64 {
	return f.noise.Noise2D(x, z)
}

// Seed returns the seed the generator was built with.
func (f *Fractal) Seed() int64 {
	return f.seed
}
