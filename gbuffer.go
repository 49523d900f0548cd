package tavern

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GBuffer holds the per-pixel geometric and material data the lighting pass
// consumes: world position, world normal, albedo+specular. These four values
// are the only per-object state that survives the geometry pass; that is the
// deferred-shading invariant the rest of the pipeline relies on.
type GBuffer struct {
	target *RenderTarget
}

// G-buffer read units, fixed for the whole pipeline.
const (
	unitGPosition   = 0
	unitGNormal     = 1
	unitGAlbedoSpec = 2
)

func NewGBuffer(width, height int) (*GBuffer, error) {
	target, err := NewRenderTarget(width, height, []AttachmentFormat{
		AttachRGB16F, // world position
		AttachRGB16F, // world normal
		AttachRGBA8,  // albedo rgb + specular a
	}, true)
	if err != nil {
		return nil, fmt.Errorf("gbuffer: %w", err)
	}
	return &GBuffer{target: target}, nil
}

func (gb *GBuffer) BindForWrite()             { gb.target.BindForWrite() }
func (gb *GBuffer) BindForRead()              { gb.target.BindForRead(unitGPosition) }
func (gb *GBuffer) Width() int32              { return gb.target.Width }
func (gb *GBuffer) Height() int32             { return gb.target.Height }
func (gb *GBuffer) Destroy()                  { gb.target.Destroy() }
func (gb *GBuffer) PositionTexture() uint32   { return gb.target.Colors[0] }
func (gb *GBuffer) NormalTexture() uint32     { return gb.target.Colors[1] }
func (gb *GBuffer) AlbedoSpecTexture() uint32 { return gb.target.Colors[2] }

const geometryVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertPosition;
layout(location = 1) in vec3 vertNormal;
layout(location = 2) in vec2 vertUV;

uniform mat4 model;
uniform mat3 normalMatrix;
uniform mat4 view;
uniform mat4 projection;

out vec3 WorldPos;
out vec3 Normal;
out vec2 UV;

void main() {
    vec4 world = model * vec4(vertPosition, 1.0);
    WorldPos = world.xyz;
    Normal = normalMatrix * vertNormal;
    UV = vertUV;
    gl_Position = projection * view * world;
}
`

const geometryFragSrc = `
#version 410 core
in vec3 WorldPos;
in vec3 Normal;
in vec2 UV;

uniform bool useDiffuseMap;
uniform bool useNormalMap;
uniform bool useSpecularMap;
uniform vec3 flatColor;
uniform float roughness;
uniform float metallic;
uniform sampler2D diffuseMap;
uniform sampler2D normalMap;
uniform sampler2D specularMap;

layout(location = 0) out vec3 gPosition;
layout(location = 1) out vec3 gNormal;
layout(location = 2) out vec4 gAlbedoSpec;

// Tangent basis from screen-space derivatives, so meshes need no tangent
// attribute. Mirrors PerturbNormal in shading.go.
vec3 perturbNormal(vec3 n) {
    vec3 dp1 = dFdx(WorldPos);
    vec3 dp2 = dFdy(WorldPos);
    vec2 duv1 = dFdx(UV);
    vec2 duv2 = dFdy(UV);

    vec3 dp2perp = cross(dp2, n);
    vec3 dp1perp = cross(n, dp1);
    vec3 tangent = dp2perp * duv1.x + dp1perp * duv2.x;
    vec3 bitangent = dp2perp * duv1.y + dp1perp * duv2.y;

    float invmax = inversesqrt(max(dot(tangent, tangent), dot(bitangent, bitangent)));
    vec3 sampled = texture(normalMap, UV).rgb * 2.0 - 1.0;
    return normalize(mat3(tangent * invmax, bitangent * invmax, n) * sampled);
}

void main() {
    gPosition = WorldPos;
    vec3 n = normalize(Normal);
    if (useNormalMap) {
        n = perturbNormal(n);
    }
    gNormal = n;

    vec3 albedo = useDiffuseMap ? texture(diffuseMap, UV).rgb : flatColor;
    float spec = useSpecularMap
        ? texture(specularMap, UV).r
        : mix(0.5 * (1.0 - roughness), 1.0, metallic);

    gAlbedoSpec = vec4(albedo, spec);
}
`

// GeometryPass rasterizes every draw item once per frame into the G-buffer
// using the camera's view and projection. Uniform locations are resolved
// once at construction.
type GeometryPass struct {
	program uint32

	locModel      int32
	locView       int32
	locProjection int32
}

// Material/texture units used while writing the G-buffer.
const (
	unitGeomDiffuse  = 0
	unitGeomSpecular = 1
	unitGeomNormal   = 2
)

func NewGeometryPass() (*GeometryPass, error) {
	program, err := newProgram(geometryVertSrc, geometryFragSrc)
	if err != nil {
		return nil, fmt.Errorf("geometry shader: %w", err)
	}

	p := &GeometryPass{
		program:       program,
		locModel:      uniformLoc(program, "model"),
		locView:       uniformLoc(program, "view"),
		locProjection: uniformLoc(program, "projection"),
	}

	gl.UseProgram(program)
	gl.Uniform1i(uniformLoc(program, "diffuseMap"), unitGeomDiffuse)
	gl.Uniform1i(uniformLoc(program, "specularMap"), unitGeomSpecular)
	gl.Uniform1i(uniformLoc(program, "normalMap"), unitGeomNormal)
	return p, nil
}

func (p *GeometryPass) ModelLocation() int32 { return p.locModel }
func (p *GeometryPass) Program() uint32      { return p.program }

// Render fills the G-buffer: binds it for writing and hands the bound
// geometry program to the scene renderer, which issues one draw per item.
func (p *GeometryPass) Render(gb *GBuffer, view, projection mgl32.Mat4, scene SceneRenderer) {
	gb.BindForWrite()
	gl.Enable(gl.DEPTH_TEST)

	gl.UseProgram(p.program)
	gl.UniformMatrix4fv(p.locView, 1, false, &view[0])
	gl.UniformMatrix4fv(p.locProjection, 1, false, &projection[0])

	scene.Draw(p.program)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (p *GeometryPass) Destroy() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
