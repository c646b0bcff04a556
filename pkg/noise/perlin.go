// Package noise provides the gradient noise used to synthesise terrain heights.
package noise

import (
	"math"
	"math/rand/v2"
)

const tableSize = 256

// Field is an improved Perlin noise generator.
// The permutation table is shuffled once from the seed and never changes,
// so two fields built with the same seed return the same values.
type Field struct {
	seed int64
	// p holds the permutation twice so that p[i+1] and p[A+Z] never need a modulo.
	p [2 * tableSize]int
}

// New creates a noise field whose permutation is derived from seed.
func New(seed int64) *Field {
	f := &Field{seed: seed}
	perm := make([]int, tableSize)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	copy(f.p[:tableSize], perm)
	copy(f.p[tableSize:], perm)
	return f
}

// Seed returns the seed the permutation was shuffled with.
func (f *Field) Seed() int64 {
	return f.seed
}

// Permutation returns a copy of the 256 entry permutation.
func (f *Field) Permutation() []int {
	out := make([]int, tableSize)
	copy(out, f.p[:tableSize])
	return out
}

// Sample evaluates the noise at (x, y, z).
// The result stays close to [-1, 1] and is exactly 0 on integer lattice points.
func (f *Field) Sample(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	X := int(fx) & 255
	Y := int(fy) & 255
	Z := int(fz) & 255

	x -= fx
	y -= fy
	z -= fz

	u := fade(x)
	v := fade(y)
	w := fade(z)

	p := &f.p
	A := p[X] + Y
	AA := p[A] + Z
	AB := p[A+1] + Z
	B := p[X+1] + Y
	BA := p[B] + Z
	BB := p[B+1] + Z

	return lerp(w,
		lerp(v,
			lerp(u, grad(p[AA], x, y, z), grad(p[BA], x-1, y, z)),
			lerp(u, grad(p[AB], x, y-1, z), grad(p[BB], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p[AA+1], x, y, z-1), grad(p[BA+1], x-1, y, z-1)),
			lerp(u, grad(p[AB+1], x, y-1, z-1), grad(p[BB+1], x-1, y-1, z-1))))
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad picks one of 12 edge gradients (plus 4 repeats) from the low 4 bits of hash
// and returns its dot product with (x, y, z).
func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
