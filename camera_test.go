package tavern

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const cameraEps = 1e-5

func vecNear(t *testing.T, want, got mgl32.Vec3, label string) {
	t.Helper()
	if got.Sub(want).Len() > cameraEps {
		t.Errorf("%s: expected %v, got %v", label, want, got)
	}
}

func TestCamera_Defaults(t *testing.T) {
	cam := NewCamera()

	vecNear(t, mgl32.Vec3{0, 1.6, 5}, cam.Position, "position")
	vecNear(t, mgl32.Vec3{0, 0, -1}, cam.Front, "front")
	if cam.Yaw != -90 || cam.Pitch != 0 {
		t.Errorf("Expected yaw -90 pitch 0, got %v %v", cam.Yaw, cam.Pitch)
	}
}

func TestCamera_BasisStaysOrthonormal(t *testing.T) {
	cam := NewCamera()

	for _, delta := range [][2]float32{
		{300, 0}, {-37, 200}, {15.5, -123}, {9999, 9999}, {-9999, -9999},
	} {
		cam.Rotate(delta[0], delta[1])

		for _, v := range []struct {
			name string
			vec  mgl32.Vec3
		}{
			{"front", cam.Front}, {"right", cam.Right}, {"up", cam.Up},
		} {
			if math.Abs(float64(v.vec.Len())-1) > cameraEps {
				t.Errorf("%s not unit length after rotate %v: %v", v.name, delta, v.vec.Len())
			}
		}
		if f := math.Abs(float64(cam.Front.Dot(cam.Right))); f > cameraEps {
			t.Errorf("front/right not perpendicular after rotate %v: %v", delta, f)
		}
		if f := math.Abs(float64(cam.Front.Dot(cam.Up))); f > cameraEps {
			t.Errorf("front/up not perpendicular after rotate %v: %v", delta, f)
		}
	}
}

func TestCamera_PitchClamped(t *testing.T) {
	cam := NewCamera()

	cam.Rotate(0, 100000)
	if cam.Pitch != pitchLimit {
		t.Errorf("Expected pitch clamped to %v, got %v", float32(pitchLimit), cam.Pitch)
	}

	cam.Rotate(0, -200000)
	if cam.Pitch != -pitchLimit {
		t.Errorf("Expected pitch clamped to %v, got %v", float32(-pitchLimit), cam.Pitch)
	}

	// Even at the clamp the basis must stay usable.
	if cam.Right.Len() < 0.9 {
		t.Errorf("Right vector degenerated at pitch clamp: %v", cam.Right)
	}
}

func TestCamera_RotateScalesBySensitivity(t *testing.T) {
	cam := NewCamera()
	cam.Sensitivity = 0.5

	cam.Rotate(10, 4)
	if cam.Yaw != -90+5 {
		t.Errorf("Expected yaw %v, got %v", -90+5, cam.Yaw)
	}
	if cam.Pitch != 2 {
		t.Errorf("Expected pitch 2, got %v", cam.Pitch)
	}
}

func TestCamera_MoveFollowsBasis(t *testing.T) {
	cam := NewCamera()

	// Facing -Z: forward decreases Z, strafe right increases X.
	cam.Move(0, 0, 1)
	vecNear(t, mgl32.Vec3{0, 1.6, 4}, cam.Position, "forward step")

	cam.Move(1, 0, 0)
	vecNear(t, mgl32.Vec3{1, 1.6, 4}, cam.Position, "strafe step")

	// Vertical movement is along world up regardless of pitch.
	cam.Rotate(0, 400)
	cam.Move(0, 2, 0)
	vecNear(t, mgl32.Vec3{1, 3.6, 4}, cam.Position, "vertical step")
}

func TestCamera_ViewMatrixLooksAlongFront(t *testing.T) {
	cam := NewCamera()
	view := cam.ViewMatrix()

	// A point one unit in front of the camera lands on the -Z axis in view
	// space.
	ahead := cam.Position.Add(cam.Front)
	p := view.Mul4x1(ahead.Vec4(1))
	vecNear(t, mgl32.Vec3{0, 0, -1}, p.Vec3(), "point ahead")
}
