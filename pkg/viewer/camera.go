package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	minPitch    = -1.5
	maxPitch    = 1.5
	minDistance = 2.0
	maxDistance = 200.0
)

// Camera orbits around Target at Distance, Yaw and Pitch are in radians.
type Camera struct {
	Target   mgl64.Vec3
	Yaw      float64
	Pitch    float64
	Distance float64
	FovY     float64 // degrees
	Near     float64
	Far      float64
}

// NewCamera frames the default scene: the containment cube above the terrain.
func NewCamera() *Camera {
	return &Camera{
		Target:   mgl64.Vec3{0, -4, 0},
		Yaw:      0.6,
		Pitch:    0.45,
		Distance: 32,
		FovY:     45,
		Near:     0.1,
		Far:      500,
	}
}

// Eye is the camera position in world space.
func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	return c.Target.Add(mgl64.Vec3{
		cp * math.Sin(c.Yaw),
		math.Sin(c.Pitch),
		cp * math.Cos(c.Yaw),
	}.Mul(c.Distance))
}

// Orbit turns the camera around its target.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = mgl64.Clamp(c.Pitch+dPitch, minPitch, maxPitch)
}

// Zoom moves toward the target for positive notches.
func (c *Camera) Zoom(notches float64) {
	c.Distance = mgl64.Clamp(c.Distance*math.Pow(0.9, notches), minDistance, maxDistance)
}

// View is the world to camera transform.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), c.Target, mgl64.Vec3{0, 1, 0})
}

// Projector builds the world to screen mapping for a w x h target.
func (c *Camera) Projector(w, h int) Projector {
	aspect := float64(w) / float64(max(h, 1))
	proj := mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
	return Projector{
		viewProj: proj.Mul4(c.View()),
		width:    float64(w),
		height:   float64(h),
		near:     c.Near,
	}
}

// Projector maps world points to screen pixels.
type Projector struct {
	viewProj      mgl64.Mat4
	width, height float64
	near          float64
}

// Project returns the pixel position of p and its distance along the view axis.
// ok is false for points behind the near plane.
func (pr Projector) Project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	clip := pr.viewProj.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w < pr.near {
		return 0, 0, 0, false
	}
	x = (clip[0]/w + 1) / 2 * pr.width
	y = (1 - clip[1]/w) / 2 * pr.height
	return x, y, w, true
}
