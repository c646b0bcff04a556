package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used by Eq and by Normalize to detect a zero-length vector.
const (
	Epsilon = 1e-9
)

// ErrDivideByZero is returned by Div when the scalar is zero.
var ErrDivideByZero = errors.New("vector cannot be divided by zero")

// Vector3D is a point or a direction in world space.
// Fields are public because they are plain data: v := Vector3D{1, 2, 3}
type Vector3D struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
	Z float64 `json:"z" toml:"z"`
}

// NewVector creates a new Vector3D.
func NewVector(x, y, z float64) Vector3D {
	return Vector3D{X: x, Y: y, Z: z}
}

// Splat returns a vector with the three components set to s.
func Splat(s float64) Vector3D {
	return Vector3D{s, s, s}
}

// String implements the fmt.Stringer interface.
func (v Vector3D) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers, every operation returns a new vector.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return Vector3D{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vector3D) Mul(scalar float64) Vector3D {
	return Vector3D{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Div scales the vector by 1/scalar.
// A zero scalar yields an Inf vector and ErrDivideByZero.
func (v Vector3D) Div(scalar float64) (Vector3D, error) {
	if scalar == 0 {
		return Vector3D{math.Inf(1), math.Inf(1), math.Inf(1)}, ErrDivideByZero
	}
	return Vector3D{v.X / scalar, v.Y / scalar, v.Z / scalar}, nil
}

// Neg returns the opposite vector.
func (v Vector3D) Neg() Vector3D {
	return Vector3D{-v.X, -v.Y, -v.Z}
}

// ---------------------------------------------------------------------
// Vector3D Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector3D) Dot(other Vector3D) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross calculates the right-handed cross product v x other.
func (v Vector3D) Cross(other Vector3D) Vector3D {
	return Vector3D{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Cheaper than Len, use it for comparisons.
func (v Vector3D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (length) of the vector.
func (v Vector3D) Len() float64 {
	return math.Sqrt(v.LenSqr())
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero.
func (v Vector3D) Normalize() Vector3D {
	l := v.Len()
	if l < Epsilon {
		return Vector3D{}
	}
	return v.Mul(1 / l)
}

// WithLen rescales the vector to the given length, keeping its direction.
func (v Vector3D) WithLen(length float64) Vector3D {
	return v.Normalize().Mul(length)
}

// IsZero reports whether every component is exactly zero.
func (v Vector3D) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector3D) DistanceTo(other Vector3D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector3D) DistanceSquaredTo(other Vector3D) float64 {
	return v.Sub(other).LenSqr()
}

// Lerp calculates a point between v and target based on t [0, 1].
func (v Vector3D) Lerp(target Vector3D, t float64) Vector3D {
	return v.Add(target.Sub(v).Mul(t))
}

// ---------------------------------------------------------------------
// mathgl interop
// ---------------------------------------------------------------------

// Vec3 converts to a mathgl double precision vector.
func (v Vector3D) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Vec3f converts to a mathgl single precision vector, the layout GPU buffers use.
func (v Vector3D) Vec3f() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// FromVec3 converts a mathgl double precision vector.
func FromVec3(v mgl64.Vec3) Vector3D {
	return Vector3D{v[0], v[1], v[2]}
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector3D) Eq(other Vector3D) bool {
	return v.EqTol(other, Epsilon)
}

// EqTol checks if two vectors are equal within tol on every axis.
func (v Vector3D) EqTol(other Vector3D, tol float64) bool {
	return math.Abs(v.X-other.X) <= tol &&
		math.Abs(v.Y-other.Y) <= tol &&
		math.Abs(v.Z-other.Z) <= tol
}
