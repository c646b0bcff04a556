package simulation

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
)

const tol = 1e-9

// flatGround is a floor at a constant height over the whole plane.
type flatGround float64

func (g flatGround) HeightAt(_, _ float64) float64 { return float64(g) }

func testParams() *Params {
	p := DefaultParams()
	return &p
}

func TestIntegrate_MovesWithOldVelocity(t *testing.T) {
	p := testParams()
	b := NewBoid(geometry.Vector3D{}, geometry.Vector3D{X: 1}, geometry.Splat(1))

	if err := b.Integrate(0.5, geometry.Vector3D{Z: 2}, p, NoGround{}); err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}
	if want := (geometry.Vector3D{X: 0.5}); !b.Position.Eq(want) {
		t.Errorf("Position = %v; want %v", b.Position, want)
	}
	if want := (geometry.Vector3D{X: 1, Z: 1}); !b.Velocity.Eq(want) {
		t.Errorf("Velocity = %v; want %v", b.Velocity, want)
	}
}

func TestIntegrate_SpeedClamp(t *testing.T) {
	p := testParams()
	tests := []struct {
		name string
		vel  geometry.Vector3D
		want float64
	}{
		{"too fast", geometry.Vector3D{X: 30, Y: 40}, p.MaxSpeed},
		{"too slow", geometry.Vector3D{Z: 0.01}, p.MinSpeed},
		{"in range", geometry.Vector3D{X: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoid(geometry.Vector3D{}, tt.vel, geometry.Splat(1))
			if err := b.Integrate(0.05, geometry.Vector3D{}, p, NoGround{}); err != nil {
				t.Fatalf("Integrate returned error: %v", err)
			}
			if got := b.Speed(); math.Abs(got-tt.want) > tol {
				t.Errorf("speed = %v; want %v", got, tt.want)
			}
			if d := b.Velocity.Normalize().Dot(tt.vel.Normalize()); math.Abs(d-1) > tol {
				t.Errorf("direction changed: %v -> %v", tt.vel, b.Velocity)
			}
		})
	}
}

func TestIntegrate_SpeedInvariantRandom(t *testing.T) {
	p := testParams()
	rng := rand.New(rand.NewPCG(7, 7))
	ground := flatGround(-3)
	for i := 0; i < 2000; i++ {
		b := NewBoid(randomPosition(rng, 10), randomVelocity(rng).Mul(rng.Float64()*5), geometry.Splat(1))
		acc := randomPosition(rng, 50)
		if err := b.Integrate(p.DeltaTime, acc, p, ground); err != nil {
			if errors.Is(err, ErrDegenerateVelocity) {
				continue
			}
			t.Fatalf("Integrate returned unexpected error: %v", err)
		}
		if s := b.Speed(); s < p.MinSpeed-tol || s > p.MaxSpeed+tol {
			t.Fatalf("iteration %d: speed %v outside [%v, %v]", i, s, p.MinSpeed, p.MaxSpeed)
		}
	}
}

func TestIntegrate_DegenerateVelocity(t *testing.T) {
	p := testParams()
	b := NewBoid(geometry.Vector3D{}, geometry.Vector3D{}, geometry.Splat(1))
	err := b.Integrate(0.05, geometry.Vector3D{}, p, NoGround{})
	if !errors.Is(err, ErrDegenerateVelocity) {
		t.Fatalf("Integrate with zero velocity: err = %v; want ErrDegenerateVelocity", err)
	}
	if !b.Velocity.IsZero() {
		t.Errorf("velocity was replaced by %v; a degenerate velocity must not be fixed silently", b.Velocity)
	}
}

func TestIntegrate_GroundClamp(t *testing.T) {
	p := testParams()

	t.Run("below floor bounces", func(t *testing.T) {
		b := NewBoid(geometry.Vector3D{Y: 1}, geometry.Vector3D{Y: -1}, geometry.Splat(1))
		if err := b.Integrate(0.05, geometry.Vector3D{}, p, flatGround(2)); err != nil {
			t.Fatalf("Integrate returned error: %v", err)
		}
		if want := 2 + p.GroundClearance; b.Position.Y != want {
			t.Errorf("Position.Y = %v; want %v", b.Position.Y, want)
		}
		if want := 1 * p.GroundDampening; math.Abs(b.Velocity.Y-want) > tol {
			t.Errorf("Velocity.Y = %v; want %v", b.Velocity.Y, want)
		}
	})

	t.Run("above floor untouched", func(t *testing.T) {
		b := NewBoid(geometry.Vector3D{Y: 5}, geometry.Vector3D{Y: -1}, geometry.Splat(1))
		if err := b.Integrate(0.05, geometry.Vector3D{}, p, flatGround(2)); err != nil {
			t.Fatalf("Integrate returned error: %v", err)
		}
		if math.Abs(b.Position.Y-4.95) > tol || b.Velocity.Y != -1 {
			t.Errorf("boid above floor changed: pos %v vel %v", b.Position, b.Velocity)
		}
	})

	t.Run("no ground", func(t *testing.T) {
		b := NewBoid(geometry.Vector3D{Y: -5}, geometry.Vector3D{Y: -1}, geometry.Splat(1))
		if err := b.Integrate(0.05, geometry.Vector3D{}, p, NoGround{}); err != nil {
			t.Fatalf("Integrate returned error: %v", err)
		}
		if b.Velocity.Y >= 0 {
			t.Errorf("Velocity.Y = %v; nothing should bounce without ground", b.Velocity.Y)
		}
	})
}

func TestIntegrate_BoundaryContainment(t *testing.T) {
	p := testParams()
	p.BounceForce = 1.5
	dt := 0.05

	t.Run("past max", func(t *testing.T) {
		b := NewBoid(geometry.Vector3D{X: p.BoundMax + 5}, geometry.Vector3D{Z: 1}, geometry.Splat(1))
		if err := b.Integrate(dt, geometry.Vector3D{}, p, NoGround{}); err != nil {
			t.Fatalf("Integrate returned error: %v", err)
		}
		if want := -1.5 * 5 * dt; b.Velocity.X != want {
			t.Errorf("Velocity.X = %v; want exactly %v", b.Velocity.X, want)
		}
	})

	t.Run("below min", func(t *testing.T) {
		b := NewBoid(geometry.Vector3D{Y: p.BoundMin - 2}, geometry.Vector3D{Z: 1}, geometry.Splat(1))
		if err := b.Integrate(dt, geometry.Vector3D{}, p, NoGround{}); err != nil {
			t.Fatalf("Integrate returned error: %v", err)
		}
		if want := 1.5 * 2 * dt; math.Abs(b.Velocity.Y-want) > tol {
			t.Errorf("Velocity.Y = %v; want %v", b.Velocity.Y, want)
		}
	})

	t.Run("inside", func(t *testing.T) {
		b := NewBoid(geometry.Vector3D{X: 1, Y: 1, Z: 1}, geometry.Vector3D{Z: 1}, geometry.Splat(1))
		if err := b.Integrate(dt, geometry.Vector3D{}, p, NoGround{}); err != nil {
			t.Fatalf("Integrate returned error: %v", err)
		}
		if want := (geometry.Vector3D{Z: 1}); !b.Velocity.Eq(want) {
			t.Errorf("Velocity = %v; want %v", b.Velocity, want)
		}
	})
}

func TestModelMatrix(t *testing.T) {
	b := NewBoid(geometry.Vector3D{X: 1, Y: 2, Z: 3}, geometry.Vector3D{X: 1}, geometry.Splat(2))
	m, err := b.ModelMatrix()
	if err != nil {
		t.Fatalf("ModelMatrix returned error: %v", err)
	}
	// the model nose (0, -1, 0) scaled by 2 must end up 2 units ahead along +X
	nose := m.Mul4x1(Forward.Vec3().Vec4(1))
	want := geometry.Vector3D{X: 3, Y: 2, Z: 3}
	if got := (geometry.Vector3D{X: nose[0], Y: nose[1], Z: nose[2]}); !got.EqTol(want, 1e-9) {
		t.Errorf("model * forward = %v; want %v", got, want)
	}

	b.Velocity = geometry.Vector3D{}
	if _, err := b.ModelMatrix(); !errors.Is(err, ErrDegenerateVelocity) {
		t.Errorf("ModelMatrix with zero velocity: err = %v; want ErrDegenerateVelocity", err)
	}
}
