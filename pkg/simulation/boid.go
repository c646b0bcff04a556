package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
)

// degenerateSpeed is the magnitude under which a velocity has no usable direction.
const degenerateSpeed = 1e-6

// ErrDegenerateVelocity is returned whenever a boid's velocity is (nearly) zero.
// It is never silently replaced by a default direction.
var ErrDegenerateVelocity = errors.New("velocity vector cannot be zero")

// Ground answers "how high is the floor under (x, z)".
// It returns negative infinity where there is no ground.
type Ground interface {
	HeightAt(x, z float64) float64
}

// NoGround is a Ground without any floor.
type NoGround struct{}

// HeightAt always returns negative infinity.
func (NoGround) HeightAt(_, _ float64) float64 { return math.Inf(-1) }

// Boid is one member of the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds. https://en.wikipedia.org/wiki/Boids
type Boid struct {
	Position geometry.Vector3D
	Velocity geometry.Vector3D
	Scale    geometry.Vector3D
}

// NewBoid creates a boid.
func NewBoid(pos, vel, scale geometry.Vector3D) *Boid {
	return &Boid{Position: pos, Velocity: vel, Scale: scale}
}

// Integrate advances the boid by dt under acceleration acc.
// Position moves with the old velocity, then the velocity picks up the
// acceleration, a bounce off the ground, the push back from the containment
// cube and finally the speed limits.
func (b *Boid) Integrate(dt float64, acc geometry.Vector3D, p *Params, ground Ground) error {
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.Velocity = b.Velocity.Add(acc.Mul(dt))

	b.clampToGround(p, ground)
	b.applyBounceForce(dt, p)
	return b.limitSpeed(p)
}

// clampToGround lifts a boid that sank under the floor and makes it bounce up.
// A boid above the floor is left alone.
func (b *Boid) clampToGround(p *Params, ground Ground) {
	if ground == nil {
		return
	}
	h := ground.HeightAt(b.Position.X, b.Position.Z)
	if math.IsInf(h, -1) || math.IsNaN(h) {
		return
	}
	floor := h + p.GroundClearance
	if b.Position.Y < floor {
		b.Position.Y = floor
		b.Velocity.Y = math.Abs(b.Velocity.Y) * p.GroundDampening
	}
}

// applyBounceForce pushes the velocity back toward the cube, proportionally to
// how far the boid overshot each face. It is an elastic wall, not a hard clamp.
func (b *Boid) applyBounceForce(dt float64, p *Params) {
	force := geometry.Vector3D{
		X: bounceAxis(b.Position.X, p),
		Y: bounceAxis(b.Position.Y, p),
		Z: bounceAxis(b.Position.Z, p),
	}
	b.Velocity = b.Velocity.Add(force.Mul(dt))
}

func bounceAxis(pos float64, p *Params) float64 {
	switch {
	case pos < p.BoundMin:
		return p.BounceForce * (p.BoundMin - pos)
	case pos > p.BoundMax:
		return -p.BounceForce * (pos - p.BoundMax)
	}
	return 0
}

// limitSpeed rescales the velocity into [MinSpeed, MaxSpeed], keeping its direction.
func (b *Boid) limitSpeed(p *Params) error {
	speed := b.Velocity.Len()
	if speed < degenerateSpeed || math.IsNaN(speed) {
		return fmt.Errorf("%w: |v| = %g at %s", ErrDegenerateVelocity, speed, b.Position)
	}
	if speed > p.MaxSpeed {
		b.Velocity = b.Velocity.Mul(p.MaxSpeed / speed)
	} else if speed < p.MinSpeed {
		b.Velocity = b.Velocity.Mul(p.MinSpeed / speed)
	}
	return nil
}

// Speed returns the magnitude of the velocity.
func (b *Boid) Speed() float64 {
	return b.Velocity.Len()
}

// Orientation returns the rotation turning the model forward axis into the velocity direction.
func (b *Boid) Orientation() (mgl64.Quat, error) {
	return OrientationFromVelocity(b.Velocity)
}

// ModelMatrix returns translate * rotate * scale, ready for a draw call.
func (b *Boid) ModelMatrix() (mgl64.Mat4, error) {
	q, err := b.Orientation()
	if err != nil {
		return mgl64.Ident4(), err
	}
	return modelMatrix(b.Position, q, b.Scale), nil
}

func modelMatrix(pos geometry.Vector3D, q mgl64.Quat, scale geometry.Vector3D) mgl64.Mat4 {
	return mgl64.Translate3D(pos.X, pos.Y, pos.Z).
		Mul4(q.Mat4()).
		Mul4(mgl64.Scale3D(scale.X, scale.Y, scale.Z))
}
