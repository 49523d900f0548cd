package tavern

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestShadowFaces_CoverAllAxes(t *testing.T) {
	want := map[mgl32.Vec3]bool{
		{1, 0, 0}: false, {-1, 0, 0}: false,
		{0, 1, 0}: false, {0, -1, 0}: false,
		{0, 0, 1}: false, {0, 0, -1}: false,
	}

	for _, dir := range shadowFaceDirs {
		seen, ok := want[dir]
		if !ok {
			t.Errorf("Unexpected face direction %v", dir)
			continue
		}
		if seen {
			t.Errorf("Duplicate face direction %v", dir)
		}
		want[dir] = true
	}
	for dir, seen := range want {
		if !seen {
			t.Errorf("Missing face direction %v", dir)
		}
	}
}

func TestShadowFaces_UpsPerpendicular(t *testing.T) {
	for i := range shadowFaceDirs {
		dir, up := shadowFaceDirs[i], shadowFaceUps[i]

		if dot := dir.Dot(up); dot != 0 {
			t.Errorf("Face %d up not perpendicular to direction: dot %v", i, dot)
		}
		if up.Len() != 1 {
			t.Errorf("Face %d up not unit length: %v", i, up)
		}
	}
}

// Every face must yield a usable look-at basis; a parallel dir/up pair would
// produce NaNs that silently corrupt the entire cube map.
func TestShadowFaces_LookAtNonDegenerate(t *testing.T) {
	lightPos := mgl32.Vec3{1.5, 2, -0.5}

	for i := range shadowFaceDirs {
		view := mgl32.LookAtV(lightPos, lightPos.Add(shadowFaceDirs[i]), shadowFaceUps[i])

		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				if math.IsNaN(float64(view.At(r, c))) {
					t.Fatalf("Face %d view matrix has NaN at (%d,%d)", i, r, c)
				}
			}
		}

		// The view transform must keep a point along the face direction in
		// front of the camera (negative view-space Z).
		ahead := lightPos.Add(shadowFaceDirs[i].Mul(3))
		p := view.Mul4x1(ahead.Vec4(1))
		if p.Z() >= 0 {
			t.Errorf("Face %d direction does not map in front of the camera: %v", i, p)
		}
	}
}

func TestShadowProjection_SquareNinetyDegrees(t *testing.T) {
	cfg := DefaultConfig().Shadow
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, cfg.NearPlane, cfg.FarPlane)

	// At 90 degrees with aspect 1 the frustum edge slope is exactly 1:
	// a point at distance d maps to the clip boundary when |x| == d.
	p := proj.Mul4x1(mgl32.Vec4{5, 0, -5, 1})
	ndcX := p.X() / p.W()
	if math.Abs(float64(ndcX)-1) > 1e-5 {
		t.Errorf("Expected frustum edge at |x|==depth, ndc x %v", ndcX)
	}
}

func TestShadowPass_SetConfigRebuildsProjection(t *testing.T) {
	cfg := DefaultConfig().Shadow
	p := &ShadowPass{}
	p.SetConfig(cfg)

	want := mgl32.Perspective(mgl32.DegToRad(90), 1, cfg.NearPlane, cfg.FarPlane)
	if p.projection != want {
		t.Errorf("Expected projection built from config planes, got %v", p.projection)
	}

	// A live far-plane change must move the clip range with the distance
	// encoding, otherwise occluders past the old far vanish from the map.
	cfg.FarPlane = 60
	p.SetConfig(cfg)
	want = mgl32.Perspective(mgl32.DegToRad(90), 1, cfg.NearPlane, 60)
	if p.projection != want {
		t.Errorf("Expected projection rebuilt for far plane 60, got %v", p.projection)
	}
	if p.cfg.FarPlane != 60 {
		t.Errorf("Expected stored far plane 60, got %v", p.cfg.FarPlane)
	}
}

func TestShadowPass_SetConfigClampsNearPlane(t *testing.T) {
	p := &ShadowPass{}
	p.SetConfig(ShadowConfig{NearPlane: 0, FarPlane: 25})

	want := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 25)
	if p.projection != want {
		t.Errorf("Expected degenerate near plane clamped to 0.1, got %v", p.projection)
	}
}
