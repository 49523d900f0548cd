package tavern

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAttenuation(t *testing.T) {
	if a := Attenuation(0, 0.09, 0.032); a != 1 {
		t.Errorf("Expected attenuation 1 at distance 0, got %v", a)
	}

	// Strictly decreasing with distance.
	prev := float32(2)
	for _, d := range []float32{0, 0.5, 1, 2, 5, 10, 25} {
		a := Attenuation(d, 0.09, 0.032)
		if a >= prev {
			t.Errorf("Attenuation not decreasing at d=%v: %v >= %v", d, a, prev)
		}
		if a < 0 || a > 1 {
			t.Errorf("Attenuation out of range at d=%v: %v", d, a)
		}
		prev = a
	}
}

func TestLambertDiffuse(t *testing.T) {
	normal := mgl32.Vec3{0, 1, 0}
	albedo := mgl32.Vec3{1, 0.5, 0.25}
	white := mgl32.Vec3{1, 1, 1}

	head := LambertDiffuse(normal, mgl32.Vec3{0, 1, 0}, albedo, white)
	if head.Sub(albedo).Len() > 1e-6 {
		t.Errorf("Head-on light should give full albedo, got %v", head)
	}

	grazing := LambertDiffuse(normal, mgl32.Vec3{1, 0, 0}, albedo, white)
	if grazing.Len() != 0 {
		t.Errorf("Grazing light should give zero, got %v", grazing)
	}

	below := LambertDiffuse(normal, mgl32.Vec3{0, -1, 0}, albedo, white)
	if below.Len() != 0 {
		t.Errorf("Light from below should clamp to zero, got %v", below)
	}
}

func TestBlinnSpecular(t *testing.T) {
	normal := mgl32.Vec3{0, 1, 0}
	white := mgl32.Vec3{1, 1, 1}

	// Mirror geometry: light and view both at 45 degrees puts the half
	// vector on the normal.
	lightDir := mgl32.Vec3{1, 1, 0}.Normalize()
	viewDir := mgl32.Vec3{-1, 1, 0}.Normalize()
	peak := BlinnSpecular(normal, lightDir, viewDir, 32, 1, white)
	if peak.X() < 0.99 {
		t.Errorf("Expected near-full specular at mirror angle, got %v", peak)
	}

	// Opposed directions degenerate to a zero half vector; must not NaN.
	opposed := BlinnSpecular(normal, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{-1, 0, 0}, 32, 1, white)
	if opposed.Len() != 0 {
		t.Errorf("Expected zero specular for opposed light/view, got %v", opposed)
	}

	// Higher shininess tightens the lobe.
	offAxis := mgl32.Vec3{0.5, 1, 0}.Normalize()
	low := BlinnSpecular(normal, offAxis, viewDir, 8, 1, white)
	high := BlinnSpecular(normal, offAxis, viewDir, 64, 1, white)
	if high.X() >= low.X() {
		t.Errorf("Expected higher shininess to dim off-axis specular: %v vs %v", high.X(), low.X())
	}
}

func TestShadowFactor(t *testing.T) {
	// Occluder closer to the light than the fragment: shadowed.
	if f := ShadowFactor(10, 5, 0.05); f != 1 {
		t.Errorf("Expected shadowed, got %v", f)
	}
	// Nothing between fragment and light: lit.
	if f := ShadowFactor(5, 10, 0.05); f != 0 {
		t.Errorf("Expected lit, got %v", f)
	}
	// The fragment is its own occluder; bias keeps it lit.
	if f := ShadowFactor(10, 9.99, 0.05); f != 0 {
		t.Errorf("Expected bias to prevent self-shadowing, got %v", f)
	}
}

func TestDecodeShadowDistance(t *testing.T) {
	far := float32(25)
	for _, d := range []float32{0, 0.1, 7.3, 24.99} {
		encoded := d / far
		if got := DecodeShadowDistance(encoded, far); math.Abs(float64(got-d)) > 1e-4 {
			t.Errorf("Roundtrip failed for %v: got %v", d, got)
		}
	}
}

func TestPointLightContribution_RadiusCutoff(t *testing.T) {
	cfg := DefaultConfig().Light
	light := PointLight{
		Position: mgl32.Vec3{0, 10, 0},
		Color:    mgl32.Vec3{1, 1, 1},
		Radius:   8,
	}

	// Fragment beyond the radius gets exactly zero, not merely a small
	// value.
	out := PointLightContribution(
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1}, 0.5,
		mgl32.Vec3{0, 1.6, 5}, light, cfg, 0)
	if out != (mgl32.Vec3{}) {
		t.Errorf("Expected zero beyond radius, got %v", out)
	}

	// Just inside the radius there is light.
	light.Radius = 11
	out = PointLightContribution(
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1}, 0.5,
		mgl32.Vec3{0, 1.6, 5}, light, cfg, 0)
	if out.Len() == 0 {
		t.Errorf("Expected nonzero contribution inside radius")
	}
}

func TestPointLightContribution_ShadowSuppresses(t *testing.T) {
	cfg := DefaultConfig().Light
	light := PointLight{
		Position: mgl32.Vec3{0, 3, 0},
		Color:    mgl32.Vec3{1, 0.62, 0.25},
		Radius:   8,
	}
	frag := mgl32.Vec3{1, 0, 1}
	normal := mgl32.Vec3{0, 1, 0}
	albedo := mgl32.Vec3{0.45, 0.31, 0.18}
	viewPos := mgl32.Vec3{0, 1.6, 5}

	lit := PointLightContribution(frag, normal, albedo, 0.3, viewPos, light, cfg, 0)
	shadowed := PointLightContribution(frag, normal, albedo, 0.3, viewPos, light, cfg, 1)

	if lit.Len() == 0 {
		t.Errorf("Expected lit fragment to receive light")
	}
	if shadowed != (mgl32.Vec3{}) {
		t.Errorf("Expected full shadow to suppress the light entirely, got %v", shadowed)
	}
}

// One light above a wooden floor, as in the demo scene: a fragment under the
// light is brighter than one at the edge of the radius, the ambient term
// survives shadow, and occlusion scales only ambient.
func TestShading_FloorScenario(t *testing.T) {
	cfg := DefaultConfig()
	light := PointLight{
		Position: mgl32.Vec3{0, 2, 0},
		Color:    mgl32.Vec3{1, 0.8, 0.5}.Mul(2),
		Radius:   8,
	}
	normal := mgl32.Vec3{0, 1, 0}
	albedo := mgl32.Vec3{0.45, 0.31, 0.18}
	viewPos := mgl32.Vec3{0, 1.6, 5}

	under := PointLightContribution(mgl32.Vec3{0, 0, 0}, normal, albedo, 0.3, viewPos, light, cfg.Light, 0)
	edge := PointLightContribution(mgl32.Vec3{6, 0, 0}, normal, albedo, 0.3, viewPos, light, cfg.Light, 0)

	if under.Len() <= edge.Len() {
		t.Errorf("Fragment under the light should be brighter: %v vs %v", under.Len(), edge.Len())
	}

	// Ambient is independent of shadow and scaled by occlusion.
	open := AmbientTerm(albedo, cfg.Light.Ambient, 1)
	halfOccluded := AmbientTerm(albedo, cfg.Light.Ambient, 0.5)
	if halfOccluded.Len() >= open.Len() {
		t.Errorf("Occlusion should darken ambient: %v vs %v", halfOccluded.Len(), open.Len())
	}
	if open.X() != albedo.X()*cfg.Light.Ambient {
		t.Errorf("Unexpected ambient term: %v", open)
	}
}

func TestReinhardBounded(t *testing.T) {
	for _, c := range []float32{0, 0.5, 1, 10, 1000} {
		r := Reinhard(c)
		if r < 0 || r >= 1 {
			t.Errorf("Reinhard(%v) out of [0,1): %v", c, r)
		}
	}
	if Reinhard(0) != 0 {
		t.Errorf("Reinhard(0) should be 0")
	}
}

func TestToneMap(t *testing.T) {
	// Monotone per channel.
	dim := ToneMap(mgl32.Vec3{0.1, 0.1, 0.1}, 1, 2.2)
	bright := ToneMap(mgl32.Vec3{5, 5, 5}, 1, 2.2)
	for i := 0; i < 3; i++ {
		if bright[i] <= dim[i] {
			t.Errorf("ToneMap not monotone on channel %d", i)
		}
		if bright[i] >= 1 || dim[i] <= 0 {
			t.Errorf("ToneMap out of range on channel %d: %v %v", i, dim[i], bright[i])
		}
	}

	// Exposure brightens before the curve.
	base := ToneMap(mgl32.Vec3{0.5, 0.5, 0.5}, 1, 2.2)
	exposed := ToneMap(mgl32.Vec3{0.5, 0.5, 0.5}, 2, 2.2)
	if exposed.X() <= base.X() {
		t.Errorf("Higher exposure should brighten: %v vs %v", exposed.X(), base.X())
	}
}

func TestPerturbNormal(t *testing.T) {
	// A floor quad seen head-on: position gradients along +X and +Z, UVs
	// aligned with them.
	normal := mgl32.Vec3{0, 1, 0}
	dp1 := mgl32.Vec3{1, 0, 0}
	dp2 := mgl32.Vec3{0, 0, 1}
	duv1 := mgl32.Vec2{1, 0}
	duv2 := mgl32.Vec2{0, 1}

	// The neutral sample leaves the surface normal untouched.
	flat := PerturbNormal(normal, dp1, dp2, duv1, duv2, mgl32.Vec3{0, 0, 1})
	if flat.Sub(normal).Len() > 1e-5 {
		t.Errorf("Expected neutral sample to keep %v, got %v", normal, flat)
	}

	// Tilting the sample toward +U must tilt the normal off the surface in
	// the tangent direction while staying unit length.
	tilted := PerturbNormal(normal, dp1, dp2, duv1, duv2, mgl32.Vec3{0.5, 0, 0.8})
	if math.Abs(float64(tilted.Len())-1) > 1e-5 {
		t.Errorf("Expected unit result, got length %v", tilted.Len())
	}
	if tilted.X() == 0 {
		t.Errorf("Expected tangent tilt to move the normal, got %v", tilted)
	}
	if tilted.Y() <= 0 {
		t.Errorf("Expected the normal to stay on the surface's front side, got %v", tilted)
	}
}

func TestPerturbNormal_DegenerateGradients(t *testing.T) {
	// Zero UV gradients (an unmapped or stretched-to-a-point texel) must
	// fall back to the surface normal instead of producing NaNs.
	normal := mgl32.Vec3{0, 1, 0}
	out := PerturbNormal(normal, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1},
		mgl32.Vec2{}, mgl32.Vec2{}, mgl32.Vec3{0.3, 0.3, 0.9})
	if out != normal {
		t.Errorf("Expected surface normal fallback, got %v", out)
	}
}
