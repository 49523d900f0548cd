package tavern

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CPU reference implementations of the per-pixel shading math. The GLSL in
// lighting.go, ssao.go and postprocess.go mirrors these functions exactly;
// the tests pin the contract here, where no GL context is needed.

// Attenuation is the distance falloff 1/(1 + k1·d + k2·d²).
func Attenuation(distance, k1, k2 float32) float32 {
	return 1.0 / (1.0 + k1*distance + k2*distance*distance)
}

// LambertDiffuse is max(dot(N,L),0) * albedo * lightColor.
func LambertDiffuse(normal, lightDir, albedo, lightColor mgl32.Vec3) mgl32.Vec3 {
	ndotl := normal.Dot(lightDir)
	if ndotl < 0 {
		ndotl = 0
	}
	return mulVec3(albedo, lightColor).Mul(ndotl)
}

// BlinnSpecular is pow(max(dot(N,H),0), shininess) * specScalar * lightColor
// with H the half vector between light and view directions.
func BlinnSpecular(normal, lightDir, viewDir mgl32.Vec3, shininess, specScalar float32, lightColor mgl32.Vec3) mgl32.Vec3 {
	half := lightDir.Add(viewDir)
	if half.Len() == 0 {
		return mgl32.Vec3{}
	}
	half = half.Normalize()
	ndoth := normal.Dot(half)
	if ndoth < 0 {
		ndoth = 0
	}
	s := float32(math.Pow(float64(ndoth), float64(shininess))) * specScalar
	return lightColor.Mul(s)
}

// ShadowFactor compares the fragment's metric distance to the light against
// the occluder distance stored in the cube map (already decoded by the far
// plane). Returns 1 when the fragment is in shadow, 0 when lit. The bias
// absorbs depth quantization so surfaces do not shadow themselves.
func ShadowFactor(fragmentDistance, occluderDistance, bias float32) float32 {
	if fragmentDistance-bias > occluderDistance {
		return 1
	}
	return 0
}

// DecodeShadowDistance converts a normalized cube-map sample back to a
// metric distance using the same far plane the shadow pass divided by.
func DecodeShadowDistance(sample, farPlane float32) float32 {
	return sample * farPlane
}

// PointLightContribution is the full per-light term the lighting shader
// accumulates: (1−shadow) · attenuated (diffuse + specular), and exactly
// zero at or beyond the light's radius.
func PointLightContribution(fragPos, normal, albedo mgl32.Vec3, specScalar float32,
	viewPos mgl32.Vec3, light PointLight, cfg LightConfig, shadow float32) mgl32.Vec3 {

	toLight := light.Position.Sub(fragPos)
	distance := toLight.Len()
	if distance >= light.Radius || distance == 0 {
		return mgl32.Vec3{}
	}
	lightDir := toLight.Mul(1 / distance)
	viewDir := viewPos.Sub(fragPos)
	if viewDir.Len() > 0 {
		viewDir = viewDir.Normalize()
	}

	diffuse := LambertDiffuse(normal, lightDir, albedo, light.Color)
	specular := BlinnSpecular(normal, lightDir, viewDir, cfg.Shininess, specScalar, light.Color)

	atten := Attenuation(distance, cfg.AttenLinear, cfg.AttenQuad)
	return diffuse.Add(specular).Mul(atten * (1 - shadow))
}

// AmbientTerm is the near-zero base illumination; ambient occlusion scales
// only this indirect term, never the direct per-light contributions.
func AmbientTerm(albedo mgl32.Vec3, ambient, occlusion float32) mgl32.Vec3 {
	return albedo.Mul(ambient * occlusion)
}

// OcclusionEstimate maps an occluded-sample count to the SSAO output:
// (1 − occluded/total)^power, clamped to [0,1]. Power sharpens contrast.
func OcclusionEstimate(occluded, total int, power float32) float32 {
	if total <= 0 {
		return 1
	}
	open := 1 - float32(occluded)/float32(total)
	if open < 0 {
		open = 0
	}
	if open > 1 {
		open = 1
	}
	return float32(math.Pow(float64(open), float64(power)))
}

// CircleKernel returns n offsets evenly spaced on a circle of the given
// radius. The SSAO pass samples a flat 2D ring, not a normal-oriented
// hemisphere; that is a deliberate cheap screen-space heuristic, kept as
// designed rather than upgraded to horizon-based AO.
func CircleKernel(n int, radius float32) [][2]float32 {
	kernel := make([][2]float32, n)
	for i := range kernel {
		angle := 2 * math.Pi * float64(i) / float64(n)
		kernel[i] = [2]float32{
			radius * float32(math.Cos(angle)),
			radius * float32(math.Sin(angle)),
		}
	}
	return kernel
}

// PerturbNormal applies a tangent-space normal-map sample to a surface
// normal using the cotangent frame derived from position and UV gradients
// (dp1/dp2 and duv1/duv2 are the screen-space derivatives the shader gets
// from dFdx/dFdy). A neutral sample (0,0,1) returns the surface normal
// unchanged; the result is always unit length.
func PerturbNormal(normal, dp1, dp2 mgl32.Vec3, duv1, duv2 mgl32.Vec2, sampled mgl32.Vec3) mgl32.Vec3 {
	dp2perp := dp2.Cross(normal)
	dp1perp := normal.Cross(dp1)
	tangent := dp2perp.Mul(duv1.X()).Add(dp1perp.Mul(duv2.X()))
	bitangent := dp2perp.Mul(duv1.Y()).Add(dp1perp.Mul(duv2.Y()))

	maxSq := tangent.Dot(tangent)
	if b := bitangent.Dot(bitangent); b > maxSq {
		maxSq = b
	}
	if maxSq == 0 {
		return normal
	}
	invmax := 1 / float32(math.Sqrt(float64(maxSq)))

	out := tangent.Mul(invmax * sampled.X()).
		Add(bitangent.Mul(invmax * sampled.Y())).
		Add(normal.Mul(sampled.Z()))
	if out.Len() == 0 {
		return normal
	}
	return out.Normalize()
}

// Reinhard compresses an HDR channel into [0,1): c/(c+1).
func Reinhard(c float32) float32 {
	return c / (c + 1)
}

// ToneMap is the post-process reference: exposure scale, Reinhard, then
// gamma correction, per channel.
func ToneMap(color mgl32.Vec3, exposure, gamma float32) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := 0; i < 3; i++ {
		c := Reinhard(color[i] * exposure)
		out[i] = float32(math.Pow(float64(c), float64(1/gamma)))
	}
	return out
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}
