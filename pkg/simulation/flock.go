package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
	"go.uber.org/multierr"
)

// Steering holds the three flocking forces acting on one boid.
type Steering struct {
	Avoidance geometry.Vector3D
	Alignment geometry.Vector3D
	Cohesion  geometry.Vector3D
}

// Sum is the acceleration passed to Boid.Integrate.
func (s Steering) Sum() geometry.Vector3D {
	return s.Avoidance.Add(s.Alignment).Add(s.Cohesion)
}

// Flock owns every boid and runs the interaction step.
// Neighbours are found with a plain O(n^2) scan, fine for a few hundred boids;
// a spatial grid is where to start if the population grows.
type Flock struct {
	boids    []*Boid
	params   *Params
	ground   Ground
	steering []Steering
}

// NewFlock spawns p.BoidNumber boids inside the cube [-p.SpawnExtent, p.SpawnExtent]^3
// with a random heading and a speed in [0, 2). The population is fixed afterwards.
func NewFlock(p *Params, ground Ground) *Flock {
	rng := rand.New(rand.NewPCG(uint64(p.Seed), 0x5eed))
	boids := make([]*Boid, 0, max(p.BoidNumber, 0))
	for i := 0; i < p.BoidNumber; i++ {
		boids = append(boids, NewBoid(randomPosition(rng, p.SpawnExtent), randomVelocity(rng), p.BoidModelScale))
	}
	return NewFlockOf(p, ground, boids)
}

// NewFlockOf wraps an explicit population.
func NewFlockOf(p *Params, ground Ground, boids []*Boid) *Flock {
	if ground == nil {
		ground = NoGround{}
	}
	return &Flock{
		boids:    boids,
		params:   p,
		ground:   ground,
		steering: make([]Steering, len(boids)),
	}
}

func randomPosition(rng *rand.Rand, extent float64) geometry.Vector3D {
	return geometry.Vector3D{
		X: (rng.Float64()*2 - 1) * extent,
		Y: (rng.Float64()*2 - 1) * extent,
		Z: (rng.Float64()*2 - 1) * extent,
	}
}

// randomVelocity draws again until the velocity has a usable direction.
func randomVelocity(rng *rand.Rand) geometry.Vector3D {
	for {
		dir := geometry.Vector3D{
			X: rng.Float64()*2 - 1,
			Y: rng.Float64()*2 - 1,
			Z: rng.Float64()*2 - 1,
		}
		if dir.Len() < 1e-3 {
			continue
		}
		speed := rng.Float64() * 2
		if speed < degenerateSpeed {
			continue
		}
		return dir.WithLen(speed)
	}
}

// Boids returns the population in iteration order. The slice is shared.
func (f *Flock) Boids() []*Boid { return f.boids }

// Len returns the population size.
func (f *Flock) Len() int { return len(f.boids) }

// Params returns the parameters the flock reads at every step.
func (f *Flock) Params() *Params { return f.params }

// Ground returns the floor boids are clamped against.
func (f *Flock) Ground() Ground { return f.ground }

// Steering computes the forces on boid i from every other boid.
// The three radii are tested independently. Distances are compared unsquared so
// that a negative radius keeps its "nobody is that close" meaning.
func (f *Flock) Steering(i int) Steering {
	p := f.params
	me := f.boids[i]

	var (
		avoid, velSum, posSum             geometry.Vector3D
		avoidCount, alignCount, cohesionN int
	)
	for j, other := range f.boids {
		if j == i {
			continue
		}
		diff := me.Position.Sub(other.Position)
		dist := diff.Len()

		if dist < p.AvoidRadius && dist > 0 {
			avoid = avoid.Add(diff.Mul(1 / dist).Mul(1 / (dist * dist)))
			avoidCount++
		}
		if dist < p.AlignRadius {
			velSum = velSum.Add(other.Velocity)
			alignCount++
		}
		if dist < p.CohesionRadius {
			posSum = posSum.Add(other.Position)
			cohesionN++
		}
	}

	var s Steering
	if avoidCount > 0 {
		s.Avoidance = avoid.Mul(p.AvoidForce / float64(avoidCount))
	}
	if alignCount > 0 {
		// only the heading of the neighbours matters, their speed is dropped
		s.Alignment = velSum.Mul(1 / float64(alignCount)).Normalize().Mul(p.AlignForce)
	}
	if cohesionN > 0 {
		center := posSum.Mul(1 / float64(cohesionN))
		s.Cohesion = center.Sub(me.Position).Normalize().Mul(p.CohesionForce)
	}
	return s
}

// Step advances every boid by dt.
// All forces are computed from the state at the start of the step, then each
// boid integrates its own. A boid that fails is reported and the others still move.
func (f *Flock) Step(dt float64) error {
	for i := range f.boids {
		f.steering[i] = f.Steering(i)
	}

	var err error
	for i, b := range f.boids {
		if e := b.Integrate(dt, f.steering[i].Sum(), f.params, f.ground); e != nil {
			err = multierr.Append(err, fmt.Errorf("boid %d: %w", i, e))
		}
	}
	return err
}

// LastSteering returns the forces applied to boid i during the last Step.
func (f *Flock) LastSteering(i int) Steering {
	return f.steering[i]
}
