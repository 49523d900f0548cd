package tavern

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// ssaoMaxSamples bounds the kernel uniform array in the shader.
const ssaoMaxSamples = 32

// ssaoFragSrc estimates occlusion by sampling a flat circular ring around
// the fragment's view-space position. Samples whose stored geometry sits in
// front of them count as occluded; the result is (1 − occluded/N)^power.
// This is a cheap screen-space heuristic, not hemisphere-oriented AO, and
// mirrors OcclusionEstimate/CircleKernel in shading.go.
const ssaoFragSrc = `
#version 410 core
in vec2 UV;

uniform sampler2D gPosition;
uniform sampler2D gNormal;
uniform mat4 view;
uniform mat4 projection;
uniform vec2 kernel[32];
uniform int sampleCount;
uniform float power;
uniform float bias;

layout(location = 0) out float occlusion;

void main() {
    vec3 worldPos = texture(gPosition, UV).xyz;
    vec3 normal = texture(gNormal, UV).xyz;

    // Background pixels keep the clear value; leave them unoccluded.
    if (dot(normal, normal) < 0.0001) {
        occlusion = 1.0;
        return;
    }

    vec3 viewPos = (view * vec4(worldPos, 1.0)).xyz;

    int occluded = 0;
    for (int i = 0; i < sampleCount; i++) {
        vec3 samplePos = viewPos + vec3(kernel[i], 0.0);

        vec4 clip = projection * vec4(samplePos, 1.0);
        vec2 sampleUV = clamp(clip.xy / clip.w * 0.5 + 0.5, 0.001, 0.999);

        vec3 storedWorld = texture(gPosition, sampleUV).xyz;
        float storedViewZ = (view * vec4(storedWorld, 1.0)).z;

        // View space looks down -Z: larger z means closer to the camera.
        if (storedViewZ >= samplePos.z + bias) {
            occluded++;
        }
    }

    float open = 1.0 - float(occluded) / float(sampleCount);
    occlusion = pow(clamp(open, 0.0, 1.0), power);
}
`

const ssaoBlurFragSrc = `
#version 410 core
in vec2 UV;

uniform sampler2D occlusionInput;

layout(location = 0) out float occlusion;

void main() {
    vec2 texel = 1.0 / vec2(textureSize(occlusionInput, 0));
    float sum = 0.0;
    for (int x = -2; x < 2; x++) {
        for (int y = -2; y < 2; y++) {
            sum += texture(occlusionInput, UV + vec2(x, y) * texel).r;
        }
    }
    occlusion = sum / 16.0;
}
`

// SSAOPass computes a single-channel occlusion buffer in [0,1] from the
// G-buffer's position and normal attachments, optionally box-blurred.
type SSAOPass struct {
	program     uint32
	blurProgram uint32

	aoTarget   *RenderTarget
	blurTarget *RenderTarget

	locView        int32
	locProjection  int32
	locSampleCount int32
	locPower       int32
	locBias        int32
	locBlurInput   int32

	cfg SSAOConfig
}

func NewSSAOPass(width, height int, cfg SSAOConfig) (*SSAOPass, error) {
	if cfg.Samples > ssaoMaxSamples {
		cfg.Samples = ssaoMaxSamples
	}
	if cfg.Samples < 1 {
		cfg.Samples = 1
	}
	if cfg.Bias <= 0 {
		cfg.Bias = DefaultConfig().SSAO.Bias
	}

	program, err := newProgram(fullscreenVertSrc, ssaoFragSrc)
	if err != nil {
		return nil, fmt.Errorf("ssao shader: %w", err)
	}
	blurProgram, err := newProgram(fullscreenVertSrc, ssaoBlurFragSrc)
	if err != nil {
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("ssao blur shader: %w", err)
	}

	p := &SSAOPass{
		program:        program,
		blurProgram:    blurProgram,
		locView:        uniformLoc(program, "view"),
		locProjection:  uniformLoc(program, "projection"),
		locSampleCount: uniformLoc(program, "sampleCount"),
		locPower:       uniformLoc(program, "power"),
		locBias:        uniformLoc(program, "bias"),
		locBlurInput:   uniformLoc(blurProgram, "occlusionInput"),
		cfg:            cfg,
	}

	gl.UseProgram(program)
	gl.Uniform1i(uniformLoc(program, "gPosition"), unitGPosition)
	gl.Uniform1i(uniformLoc(program, "gNormal"), unitGNormal)

	// The ring kernel is fixed for the pass's lifetime; upload it once.
	kernel := CircleKernel(cfg.Samples, cfg.Radius)
	flat := make([]float32, 0, len(kernel)*2)
	for _, k := range kernel {
		flat = append(flat, k[0], k[1])
	}
	gl.Uniform2fv(uniformLoc(program, "kernel"), int32(len(kernel)), &flat[0])

	gl.UseProgram(blurProgram)
	gl.Uniform1i(p.locBlurInput, 0)

	p.aoTarget, err = NewRenderTarget(width, height, []AttachmentFormat{AttachR16F}, false)
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("ssao buffer: %w", err)
	}
	if cfg.Blur {
		p.blurTarget, err = NewRenderTarget(width, height, []AttachmentFormat{AttachR16F}, false)
		if err != nil {
			p.Destroy()
			return nil, fmt.Errorf("ssao blur buffer: %w", err)
		}
	}
	return p, nil
}

// Render reads the bound G-buffer and fills the occlusion buffer.
func (p *SSAOPass) Render(gb *GBuffer, view, projection mgl32.Mat4, quad *FullscreenQuad) {
	gl.Disable(gl.DEPTH_TEST)

	p.aoTarget.BindForWrite()
	gl.UseProgram(p.program)
	gb.BindForRead()

	gl.UniformMatrix4fv(p.locView, 1, false, &view[0])
	gl.UniformMatrix4fv(p.locProjection, 1, false, &projection[0])
	gl.Uniform1i(p.locSampleCount, int32(p.cfg.Samples))
	gl.Uniform1f(p.locPower, p.cfg.Power)
	gl.Uniform1f(p.locBias, p.cfg.Bias)

	quad.Render()

	if p.blurTarget != nil {
		p.blurTarget.BindForWrite()
		gl.UseProgram(p.blurProgram)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, p.aoTarget.Colors[0])
		quad.Render()
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Enable(gl.DEPTH_TEST)
}

// OcclusionTexture is the pass output: blurred when blur is enabled.
func (p *SSAOPass) OcclusionTexture() uint32 {
	if p.blurTarget != nil {
		return p.blurTarget.Colors[0]
	}
	return p.aoTarget.Colors[0]
}

func (p *SSAOPass) Destroy() {
	if p.aoTarget != nil {
		p.aoTarget.Destroy()
		p.aoTarget = nil
	}
	if p.blurTarget != nil {
		p.blurTarget.Destroy()
		p.blurTarget = nil
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
	if p.blurProgram != 0 {
		gl.DeleteProgram(p.blurProgram)
		p.blurProgram = 0
	}
}
