package tavern

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxShadowMaps is the size of the shadow cube-map sampler array. Lights
// past this bound still shade the scene; they just cast no shadow.
const MaxShadowMaps = 8

// Texture units for the composition pass: the G-buffer occupies 0..2, SSAO
// sits at 3, shadow cube maps start at 4.
const (
	unitSSAO      = 3
	unitShadowMap = 4
)

// lightingFragSrc accumulates per-light Blinn-Phong over the G-buffer. The
// running color starts from a near-zero ambient term scaled by SSAO (AO only
// darkens indirect light); each in-radius light adds
// (1−shadow)·attenuation·(diffuse+specular). Shadow lookup samples the
// light's cube map along the light→fragment direction and decodes linear
// distance by the shared far plane. Mirrors PointLightContribution and
// ShadowFactor in shading.go.
const lightingFragSrc = `
#version 410 core
in vec2 UV;

const int MAX_LIGHTS = 8;

uniform sampler2D gPosition;
uniform sampler2D gNormal;
uniform sampler2D gAlbedoSpec;
uniform sampler2D ssao;
uniform samplerCube shadowMaps[MAX_LIGHTS];

uniform int lightCount;
uniform vec3 lightPositions[MAX_LIGHTS];
uniform vec3 lightColors[MAX_LIGHTS];
uniform float lightRadii[MAX_LIGHTS];
uniform int lightHasShadow[MAX_LIGHTS];

uniform vec3 viewPos;
uniform float farPlane;
uniform float shadowBias;
uniform float ambient;
uniform float shininess;
uniform float attenLinear;
uniform float attenQuad;

layout(location = 0) out vec4 fragColor;

float shadowFactor(int i, vec3 fragPos) {
    if (lightHasShadow[i] == 0) {
        return 0.0;
    }
    vec3 fromLight = fragPos - lightPositions[i];
    float occluderDist = texture(shadowMaps[i], fromLight).r * farPlane;
    float fragDist = length(fromLight);
    return fragDist - shadowBias > occluderDist ? 1.0 : 0.0;
}

void main() {
    vec3 fragPos = texture(gPosition, UV).xyz;
    vec3 normal = texture(gNormal, UV).xyz;
    vec4 albedoSpec = texture(gAlbedoSpec, UV);
    float occlusion = texture(ssao, UV).r;

    if (dot(normal, normal) < 0.0001) {
        fragColor = vec4(0.0, 0.0, 0.0, 1.0);
        return;
    }
    normal = normalize(normal);

    vec3 albedo = albedoSpec.rgb;
    float specScalar = albedoSpec.a;
    vec3 viewDir = normalize(viewPos - fragPos);

    vec3 color = albedo * ambient * occlusion;

    for (int i = 0; i < lightCount; i++) {
        vec3 toLight = lightPositions[i] - fragPos;
        float dist = length(toLight);
        if (dist >= lightRadii[i]) {
            continue;
        }
        vec3 lightDir = toLight / dist;

        vec3 diffuse = max(dot(normal, lightDir), 0.0) * albedo * lightColors[i];

        vec3 halfDir = normalize(lightDir + viewDir);
        vec3 specular = pow(max(dot(normal, halfDir), 0.0), shininess)
            * specScalar * lightColors[i];

        float atten = 1.0 / (1.0 + attenLinear * dist + attenQuad * dist * dist);
        float shadow = shadowFactor(i, fragPos);

        color += (1.0 - shadow) * (diffuse + specular) * atten;
    }

    fragColor = vec4(color, 1.0);
}
`

// LightingPass is the fullscreen composition stage. All uniform locations,
// including the per-light array slots, are resolved once at construction.
type LightingPass struct {
	program uint32

	locLightCount  int32
	locViewPos     int32
	locFarPlane    int32
	locShadowBias  int32
	locAmbient     int32
	locShininess   int32
	locAttenLinear int32
	locAttenQuad   int32

	locLightPositions [MaxShadowMaps]int32
	locLightColors    [MaxShadowMaps]int32
	locLightRadii     [MaxShadowMaps]int32
	locLightHasShadow [MaxShadowMaps]int32

	shadowCfg ShadowConfig
	lightCfg  LightConfig
}

func NewLightingPass(shadowCfg ShadowConfig, lightCfg LightConfig) (*LightingPass, error) {
	program, err := newProgram(fullscreenVertSrc, lightingFragSrc)
	if err != nil {
		return nil, fmt.Errorf("lighting shader: %w", err)
	}

	p := &LightingPass{
		program:        program,
		locLightCount:  uniformLoc(program, "lightCount"),
		locViewPos:     uniformLoc(program, "viewPos"),
		locFarPlane:    uniformLoc(program, "farPlane"),
		locShadowBias:  uniformLoc(program, "shadowBias"),
		locAmbient:     uniformLoc(program, "ambient"),
		locShininess:   uniformLoc(program, "shininess"),
		locAttenLinear: uniformLoc(program, "attenLinear"),
		locAttenQuad:   uniformLoc(program, "attenQuad"),
		shadowCfg:      shadowCfg,
		lightCfg:       lightCfg,
	}

	gl.UseProgram(program)
	gl.Uniform1i(uniformLoc(program, "gPosition"), unitGPosition)
	gl.Uniform1i(uniformLoc(program, "gNormal"), unitGNormal)
	gl.Uniform1i(uniformLoc(program, "gAlbedoSpec"), unitGAlbedoSpec)
	gl.Uniform1i(uniformLoc(program, "ssao"), unitSSAO)

	for i := 0; i < MaxShadowMaps; i++ {
		p.locLightPositions[i] = uniformLoc(program, fmt.Sprintf("lightPositions[%d]", i))
		p.locLightColors[i] = uniformLoc(program, fmt.Sprintf("lightColors[%d]", i))
		p.locLightRadii[i] = uniformLoc(program, fmt.Sprintf("lightRadii[%d]", i))
		p.locLightHasShadow[i] = uniformLoc(program, fmt.Sprintf("lightHasShadow[%d]", i))
		gl.Uniform1i(uniformLoc(program, fmt.Sprintf("shadowMaps[%d]", i)), unitShadowMap+int32(i))
	}
	return p, nil
}

// shadowUsable reports whether a light's cube map may be sampled this
// frame: the resource must exist and the shadow pass must have rendered it
// since the last light or config change. An allocated map that was skipped
// this frame holds depths from a stale light position and must not be read.
func shadowUsable(light *PointLight, rendered map[*PointLight]bool) bool {
	return light.HasShadow() && rendered[light]
}

// Render composes lighting into the given target (the HDR scene buffer the
// post-process pass reads). rendered is the set of lights whose cube maps
// the shadow pass refreshed this frame; everything else shades without
// shadow. A zero light count leaves only the ambient term.
func (p *LightingPass) Render(target *RenderTarget, gb *GBuffer, ssaoTex uint32,
	lights []*PointLight, rendered map[*PointLight]bool, viewPos mgl32.Vec3, quad *FullscreenQuad) {

	gl.Disable(gl.DEPTH_TEST)

	target.BindForWrite()
	gl.UseProgram(p.program)

	gb.BindForRead()
	gl.ActiveTexture(gl.TEXTURE0 + unitSSAO)
	gl.BindTexture(gl.TEXTURE_2D, ssaoTex)

	count := len(lights)
	if count > MaxShadowMaps {
		count = MaxShadowMaps
	}
	gl.Uniform1i(p.locLightCount, int32(count))
	gl.Uniform3f(p.locViewPos, viewPos.X(), viewPos.Y(), viewPos.Z())
	gl.Uniform1f(p.locFarPlane, p.shadowCfg.FarPlane)
	gl.Uniform1f(p.locShadowBias, p.shadowCfg.Bias)
	gl.Uniform1f(p.locAmbient, p.lightCfg.Ambient)
	gl.Uniform1f(p.locShininess, p.lightCfg.Shininess)
	gl.Uniform1f(p.locAttenLinear, p.lightCfg.AttenLinear)
	gl.Uniform1f(p.locAttenQuad, p.lightCfg.AttenQuad)

	for i := 0; i < count; i++ {
		light := lights[i]
		gl.Uniform3f(p.locLightPositions[i], light.Position.X(), light.Position.Y(), light.Position.Z())
		gl.Uniform3f(p.locLightColors[i], light.Color.X(), light.Color.Y(), light.Color.Z())
		gl.Uniform1f(p.locLightRadii[i], light.Radius)

		if shadowUsable(light, rendered) {
			gl.Uniform1i(p.locLightHasShadow[i], 1)
			gl.ActiveTexture(gl.TEXTURE0 + unitShadowMap + uint32(i))
			gl.BindTexture(gl.TEXTURE_CUBE_MAP, light.shadow.cubeMap)
		} else {
			gl.Uniform1i(p.locLightHasShadow[i], 0)
		}
	}

	quad.Render()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Enable(gl.DEPTH_TEST)
}

func (p *LightingPass) Destroy() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
