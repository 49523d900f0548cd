package tavern

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// pitchLimit keeps the view direction away from the poles so the cross
	// product against world-up never degenerates.
	pitchLimit = 89.0

	defaultCameraSpeed       = 5.0
	defaultCameraSensitivity = 0.1
)

// Camera is a first-person camera. Yaw and pitch are in degrees; Rotate
// clamps pitch to ±pitchLimit and rebuilds the front/right/up basis, which
// stays orthonormal after every update.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3

	Yaw   float32
	Pitch float32

	Speed       float32
	Sensitivity float32
}

// NewCamera places the camera at eye height facing −Z, matching the demo's
// spawn point inside the tavern.
func NewCamera() *Camera {
	c := &Camera{
		Position:    mgl32.Vec3{0, 1.6, 5},
		Yaw:         -90,
		Pitch:       0,
		Speed:       defaultCameraSpeed,
		Sensitivity: defaultCameraSensitivity,
	}
	c.updateBasis()
	return c
}

// Rotate applies mouse deltas scaled by sensitivity and rebuilds the basis.
func (c *Camera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity

	if c.Pitch > pitchLimit {
		c.Pitch = pitchLimit
	}
	if c.Pitch < -pitchLimit {
		c.Pitch = -pitchLimit
	}

	c.updateBasis()
}

// Move translates the camera along its basis: x strafes, y rises along
// world-up, z walks along front.
func (c *Camera) Move(x, y, z float32) {
	c.Position = c.Position.Add(c.Right.Mul(x))
	c.Position = c.Position.Add(mgl32.Vec3{0, 1, 0}.Mul(y))
	c.Position = c.Position.Add(c.Front.Mul(z))
}

func (c *Camera) updateBasis() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))

	c.Front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()

	c.Right = c.Front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}
