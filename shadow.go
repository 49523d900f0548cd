package tavern

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneRenderer issues draw calls for all shadow-casting geometry under
// whatever program the caller has bound. It is the reuse boundary between
// the shadow subsystem and the scene: the shadow code knows nothing about
// what it renders, and the same implementation serves all six cube faces and
// the main geometry pass. Must be safe to call repeatedly within a frame.
type SceneRenderer interface {
	Draw(program uint32)
}

// shadowFaceDirs are the six principal view directions of a cube map, in
// face order +X −X +Y −Y +Z −Z.
var shadowFaceDirs = [6]mgl32.Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// shadowFaceUps pair each direction with an up vector that keeps the look-at
// basis non-degenerate: −Y for the horizontal faces, ±Z for the vertical
// ones.
var shadowFaceUps = [6]mgl32.Vec3{
	{0, -1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
	{0, -1, 0},
	{0, -1, 0},
}

// ShadowCaster is one light's shadow resource: a framebuffer plus a cube map
// of six depth faces.
type ShadowCaster struct {
	fbo     uint32
	cubeMap uint32
	size    int32
}

func NewShadowCaster(size int) (*ShadowCaster, error) {
	sc := &ShadowCaster{size: int32(size)}

	gl.GenTextures(1, &sc.cubeMap)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, sc.cubeMap)
	for i := 0; i < 6; i++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.DEPTH_COMPONENT24,
			sc.size, sc.size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

	gl.GenFramebuffers(1, &sc.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sc.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT,
		gl.TEXTURE_CUBE_MAP_POSITIVE_X, sc.cubeMap, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		sc.Destroy()
		return nil, fmt.Errorf("shadow framebuffer incomplete: status=0x%X", status)
	}
	return sc, nil
}

func (sc *ShadowCaster) Destroy() {
	if sc.fbo != 0 {
		gl.DeleteFramebuffers(1, &sc.fbo)
		sc.fbo = 0
	}
	if sc.cubeMap != 0 {
		gl.DeleteTextures(1, &sc.cubeMap)
		sc.cubeMap = 0
	}
}

const shadowVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertPosition;

uniform mat4 model;
uniform mat4 lightView;
uniform mat4 lightProjection;

out vec3 worldPos;

void main() {
    vec4 world = model * vec4(vertPosition, 1.0);
    worldPos = world.xyz;
    gl_Position = lightProjection * lightView * world;
}
`

// The fragment stage overwrites the native non-linear depth with linear
// distance from the light, normalized by the far plane. The lighting side
// decodes by multiplying back, so one comparison works for every face
// without per-face inverse-projection math.
const shadowFragSrc = `
#version 410 core
in vec3 worldPos;

uniform vec3 lightPos;
uniform float farPlane;

void main() {
    gl_FragDepth = length(worldPos - lightPos) / farPlane;
}
`

// ShadowPass renders one cube shadow map per shadowed light each frame.
type ShadowPass struct {
	program uint32

	locModel      int32
	locView       int32
	locProjection int32
	locLightPos   int32
	locFarPlane   int32

	projection mgl32.Mat4
	cfg        ShadowConfig
}

func NewShadowPass(cfg ShadowConfig) (*ShadowPass, error) {
	program, err := newProgram(shadowVertSrc, shadowFragSrc)
	if err != nil {
		return nil, fmt.Errorf("shadow shader: %w", err)
	}

	p := &ShadowPass{
		program:       program,
		locModel:      uniformLoc(program, "model"),
		locView:       uniformLoc(program, "lightView"),
		locProjection: uniformLoc(program, "lightProjection"),
		locLightPos:   uniformLoc(program, "lightPos"),
		locFarPlane:   uniformLoc(program, "farPlane"),
	}
	p.SetConfig(cfg)
	return p, nil
}

// SetConfig swaps tuning values and rebuilds the face projection, so the
// clip range always matches the far plane the distance encoding divides by.
func (p *ShadowPass) SetConfig(cfg ShadowConfig) {
	near := cfg.NearPlane
	if near <= 0 {
		near = 0.1
	}
	p.cfg = cfg
	// 90° FOV over a square face: the six faces tile the sphere exactly.
	p.projection = mgl32.Perspective(mgl32.DegToRad(90), 1.0, near, cfg.FarPlane)
}

// ModelLocation lets the scene renderer set per-draw model matrices without
// re-resolving the uniform by name.
func (p *ShadowPass) ModelLocation() int32 { return p.locModel }
func (p *ShadowPass) Program() uint32      { return p.program }

// Render draws the scene's depth from the light's position into all six
// faces of the light's cube map. Lights without a shadow resource are
// skipped, not treated as an error.
func (p *ShadowPass) Render(light *PointLight, scene SceneRenderer) {
	if light.shadow == nil {
		return
	}
	sc := light.shadow

	gl.BindFramebuffer(gl.FRAMEBUFFER, sc.fbo)
	gl.Viewport(0, 0, sc.size, sc.size)
	gl.Enable(gl.DEPTH_TEST)

	gl.UseProgram(p.program)
	proj := p.projection
	gl.UniformMatrix4fv(p.locProjection, 1, false, &proj[0])
	gl.Uniform3f(p.locLightPos, light.Position.X(), light.Position.Y(), light.Position.Z())
	gl.Uniform1f(p.locFarPlane, p.cfg.FarPlane)

	for face := 0; face < 6; face++ {
		target := light.Position.Add(shadowFaceDirs[face])
		view := mgl32.LookAtV(light.Position, target, shadowFaceUps[face])

		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT,
			gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), sc.cubeMap, 0)
		gl.Clear(gl.DEPTH_BUFFER_BIT)

		gl.UniformMatrix4fv(p.locView, 1, false, &view[0])
		scene.Draw(p.program)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (p *ShadowPass) Destroy() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
