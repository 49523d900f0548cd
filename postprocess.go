package tavern

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// postprocessFragSrc is a pure per-pixel chain: exposure scale, Reinhard
// tone mapping, gamma correction, then a warm tint and vignette. The HDR
// values the lighting pass produces need this to reach displayable range.
// Mirrors ToneMap in shading.go.
const postprocessFragSrc = `
#version 410 core
in vec2 UV;

uniform sampler2D sceneColor;
uniform float exposure;
uniform float gamma;
uniform vec3 warmTint;
uniform float vignette;

layout(location = 0) out vec4 fragColor;

void main() {
    vec3 hdr = texture(sceneColor, UV).rgb * exposure;
    vec3 mapped = hdr / (hdr + vec3(1.0));
    mapped = pow(mapped, vec3(1.0 / gamma));

    mapped *= warmTint;

    float dist = length(UV - vec2(0.5));
    mapped *= 1.0 - vignette * smoothstep(0.4, 0.7, dist);

    fragColor = vec4(mapped, 1.0);
}
`

// PostProcessPass tone-maps the composed HDR frame onto the display
// framebuffer.
type PostProcessPass struct {
	program uint32

	locExposure int32
	locGamma    int32
	locWarmTint int32
	locVignette int32

	cfg PostConfig
}

func NewPostProcessPass(cfg PostConfig) (*PostProcessPass, error) {
	program, err := newProgram(fullscreenVertSrc, postprocessFragSrc)
	if err != nil {
		return nil, fmt.Errorf("postprocess shader: %w", err)
	}

	p := &PostProcessPass{
		program:     program,
		locExposure: uniformLoc(program, "exposure"),
		locGamma:    uniformLoc(program, "gamma"),
		locWarmTint: uniformLoc(program, "warmTint"),
		locVignette: uniformLoc(program, "vignette"),
		cfg:         cfg,
	}

	gl.UseProgram(program)
	gl.Uniform1i(uniformLoc(program, "sceneColor"), 0)
	return p, nil
}

// Render draws the final image to the default framebuffer.
func (p *PostProcessPass) Render(sceneTex uint32, width, height int32, quad *FullscreenQuad) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, width, height)
	gl.Disable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(p.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, sceneTex)

	gl.Uniform1f(p.locExposure, p.cfg.Exposure)
	gl.Uniform1f(p.locGamma, p.cfg.Gamma)
	gl.Uniform3f(p.locWarmTint, p.cfg.WarmTint[0], p.cfg.WarmTint[1], p.cfg.WarmTint[2])
	gl.Uniform1f(p.locVignette, p.cfg.Vignette)

	quad.Render()
	gl.Enable(gl.DEPTH_TEST)
}

func (p *PostProcessPass) Destroy() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
