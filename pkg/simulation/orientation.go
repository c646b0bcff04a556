package simulation

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
)

// Forward is the axis the boid model points along before rotation.
var Forward = geometry.Vector3D{Y: -1}

const parallelTolerance = 1e-6

// OrientationFromVelocity returns the rotation aligning Forward with velocity.
//
// A velocity opposite to Forward gives a half turn around the X axis; any
// axis perpendicular to Forward would do, X is the one used here.
// A (nearly) zero velocity returns ErrDegenerateVelocity.
func OrientationFromVelocity(velocity geometry.Vector3D) (mgl64.Quat, error) {
	speed := velocity.Len()
	if speed < degenerateSpeed || math.IsNaN(speed) {
		return mgl64.QuatIdent(), fmt.Errorf("%w: |v| = %g", ErrDegenerateVelocity, speed)
	}
	dir := velocity.Mul(1 / speed)

	if dir.Add(Forward).Len() < parallelTolerance {
		return halfTurn(), nil
	}

	axis := Forward.Cross(dir)
	if axis.Len() < parallelTolerance {
		if Forward.Dot(dir) < 0 {
			return halfTurn(), nil
		}
		return mgl64.QuatIdent(), nil
	}

	cosTheta := math.Max(-1, math.Min(1, Forward.Dot(dir)))
	theta := math.Acos(cosTheta)
	return mgl64.QuatRotate(theta, axis.Normalize().Vec3()), nil
}

func halfTurn() mgl64.Quat {
	return mgl64.QuatRotate(math.Pi, mgl64.Vec3{1, 0, 0})
}
