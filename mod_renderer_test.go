package tavern

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNormalMatrix_RigidTransform(t *testing.T) {
	model := mgl32.Translate3D(3, 1, -2).Mul4(mgl32.HomogRotate3DY(0.7))
	nm := normalMatrix(model)

	// Without scale the normal matrix is just the rotation block.
	want := model.Mat3()
	for i := range want {
		if math.Abs(float64(nm[i]-want[i])) > 1e-5 {
			t.Fatalf("Expected rotation block %v, got %v", want, nm)
		}
	}
}

func TestNormalMatrix_NonUniformScale(t *testing.T) {
	// Stretching a surface along X must not tilt its normals along with the
	// tangents; the inverse transpose keeps them perpendicular.
	model := mgl32.Scale3D(2, 1, 1)
	nm := normalMatrix(model)

	tangent := mgl32.Vec3{1, -1, 0}.Normalize()
	normal := mgl32.Vec3{1, 1, 0}.Normalize()

	worldTangent := model.Mat3().Mul3x1(tangent)
	worldNormal := nm.Mul3x1(normal)

	if dot := worldTangent.Dot(worldNormal); math.Abs(float64(dot)) > 1e-5 {
		t.Errorf("Expected transformed normal perpendicular to surface, dot %v", dot)
	}
}

func TestNormalMatrix_SingularModel(t *testing.T) {
	// A zero-scale axis makes the model non-invertible; the fallback keeps
	// the draw well defined instead of emitting NaNs.
	model := mgl32.Scale3D(1, 0, 1)
	nm := normalMatrix(model)

	for i := range nm {
		if math.IsNaN(float64(nm[i])) {
			t.Fatalf("Expected finite fallback matrix, got %v", nm)
		}
	}
	if nm != model.Mat3() {
		t.Errorf("Expected plain upper 3x3 fallback, got %v", nm)
	}
}
