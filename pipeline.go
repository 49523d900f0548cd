package tavern

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameInput is everything a frame needs from the outside world: camera
// matrices and position, the refreshed light list, and the scene renderer
// callback. The pipeline holds no reference to any of it between frames.
type FrameInput struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	CameraPos  mgl32.Vec3
	Lights     []*PointLight
	Scene      SceneRenderer
}

// framePass is one step of the frame. The sequencer runs passes strictly in
// slice order; every pass consumes buffers the previous ones wrote, so the
// order is the correctness contract of the whole pipeline.
type framePass struct {
	name string
	run  func(in *FrameInput) error
}

// RenderPipeline owns every render target, compiled program and pass of the
// deferred pipeline. All state lives here and is passed explicitly; there
// are no package-level render globals, so a single pass can be exercised in
// isolation.
type RenderPipeline struct {
	cfg PipelineConfig

	gbuffer  *GBuffer
	sceneHDR *RenderTarget

	shadow   *ShadowPass
	geometry *GeometryPass
	ssao     *SSAOPass
	lighting *LightingPass
	post     *PostProcessPass
	quad     *FullscreenQuad

	outWidth  int32
	outHeight int32

	passes []framePass
	trace  []string
	// shadowed holds the lights whose cube maps the shadow pass rendered
	// this frame; the lighting pass samples only those.
	shadowed map[*PointLight]bool
	logger   Logger
}

// NewRenderPipeline allocates every buffer and program up front. Any failure
// here is fatal to the caller: the pipeline cannot run without its targets.
func NewRenderPipeline(width, height int, cfg PipelineConfig, logger Logger) (*RenderPipeline, error) {
	if logger == nil {
		logger = NewNopLogger()
	}

	bufW, bufH := width, height
	if cfg.GBuffer.Width > 0 && cfg.GBuffer.Height > 0 {
		bufW, bufH = cfg.GBuffer.Width, cfg.GBuffer.Height
	}

	p := &RenderPipeline{
		cfg:       cfg,
		outWidth:  int32(width),
		outHeight: int32(height),
		shadowed:  make(map[*PointLight]bool),
		logger:    logger,
	}

	var err error
	if p.gbuffer, err = NewGBuffer(bufW, bufH); err != nil {
		return nil, err
	}
	if p.sceneHDR, err = NewRenderTarget(bufW, bufH, []AttachmentFormat{AttachRGB16F}, false); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("scene buffer: %w", err)
	}
	if p.shadow, err = NewShadowPass(cfg.Shadow); err != nil {
		p.Destroy()
		return nil, err
	}
	if p.geometry, err = NewGeometryPass(); err != nil {
		p.Destroy()
		return nil, err
	}
	if p.ssao, err = NewSSAOPass(bufW, bufH, cfg.SSAO); err != nil {
		p.Destroy()
		return nil, err
	}
	if p.lighting, err = NewLightingPass(cfg.Shadow, cfg.Light); err != nil {
		p.Destroy()
		return nil, err
	}
	if p.post, err = NewPostProcessPass(cfg.Post); err != nil {
		p.Destroy()
		return nil, err
	}
	p.quad = NewFullscreenQuad()

	p.passes = p.buildPasses()
	logger.Infof("render pipeline ready: %dx%d gbuffer, %d shadow faces per light",
		bufW, bufH, 6)
	return p, nil
}

func (p *RenderPipeline) buildPasses() []framePass {
	return []framePass{
		{name: "shadow", run: p.runShadowPass},
		{name: "geometry", run: p.runGeometryPass},
		{name: "ssao", run: p.runSSAOPass},
		{name: "lighting", run: p.runLightingPass},
		{name: "postprocess", run: p.runPostProcessPass},
	}
}

// RenderFrame executes one full frame in fixed pass order. The caller must
// have refreshed lights (positions, flicker) before calling; the shadow
// pass snapshots them here.
func (p *RenderPipeline) RenderFrame(in FrameInput) error {
	p.trace = p.trace[:0]
	for _, pass := range p.passes {
		if err := pass.run(&in); err != nil {
			return fmt.Errorf("%s pass: %w", pass.name, err)
		}
		p.trace = append(p.trace, pass.name)
	}
	return nil
}

// Trace lists the pass names executed by the most recent RenderFrame, in
// order. Used by ordering assertions and debug logging.
func (p *RenderPipeline) Trace() []string {
	out := make([]string, len(p.trace))
	copy(out, p.trace)
	return out
}

func (p *RenderPipeline) runShadowPass(in *FrameInput) error {
	if in.Scene == nil {
		return fmt.Errorf("no scene renderer")
	}
	if p.shadowed == nil {
		p.shadowed = make(map[*PointLight]bool)
	}
	// Reset the rendered set every frame. A light that keeps its cube map
	// but falls past the cap (a live MaxShadowed drop, a reordered
	// registry) must not be sampled from stale depths.
	for light := range p.shadowed {
		delete(p.shadowed, light)
	}
	for _, light := range in.Lights {
		if len(p.shadowed) >= p.cfg.Shadow.MaxShadowed {
			break
		}
		if !light.HasShadow() {
			// Uninitialized shadow resource means "casts no shadow",
			// never an error.
			continue
		}
		p.shadow.Render(light, in.Scene)
		p.shadowed[light] = true
	}
	return nil
}

func (p *RenderPipeline) runGeometryPass(in *FrameInput) error {
	if in.Scene == nil {
		return fmt.Errorf("no scene renderer")
	}
	p.geometry.Render(p.gbuffer, in.View, in.Projection, in.Scene)
	return nil
}

func (p *RenderPipeline) runSSAOPass(in *FrameInput) error {
	p.ssao.Render(p.gbuffer, in.View, in.Projection, p.quad)
	return nil
}

func (p *RenderPipeline) runLightingPass(in *FrameInput) error {
	p.lighting.Render(p.sceneHDR, p.gbuffer, p.ssao.OcclusionTexture(),
		in.Lights, p.shadowed, in.CameraPos, p.quad)
	return nil
}

func (p *RenderPipeline) runPostProcessPass(in *FrameInput) error {
	p.post.Render(p.sceneHDR.Colors[0], p.outWidth, p.outHeight, p.quad)
	return nil
}

// GeometryProgram exposes the geometry-pass program so the scene renderer
// can resolve its material uniforms once.
func (p *RenderPipeline) GeometryProgram() uint32 { return p.geometry.Program() }
func (p *RenderPipeline) ShadowProgram() uint32   { return p.shadow.Program() }

// Config returns the active tuning values.
func (p *RenderPipeline) Config() PipelineConfig { return p.cfg }

// ApplyConfig swaps in new tuning constants at runtime. Scalar uniforms take
// effect next frame; buffer sizes and sample counts need a pipeline rebuild
// and are ignored here.
func (p *RenderPipeline) ApplyConfig(cfg PipelineConfig) {
	cfg.GBuffer = p.cfg.GBuffer
	cfg.SSAO.Samples = p.cfg.SSAO.Samples
	cfg.SSAO.Blur = p.cfg.SSAO.Blur
	// The ring kernel was uploaded once at the construction radius.
	cfg.SSAO.Radius = p.cfg.SSAO.Radius
	p.cfg = cfg

	p.shadow.SetConfig(cfg.Shadow)
	p.ssao.cfg.Power = cfg.SSAO.Power
	p.ssao.cfg.Bias = cfg.SSAO.Bias
	p.lighting.shadowCfg = cfg.Shadow
	p.lighting.lightCfg = cfg.Light
	p.post.cfg = cfg.Post

	p.logger.Debugf("pipeline config applied: bias=%.3f far=%.1f exposure=%.2f",
		cfg.Shadow.Bias, cfg.Shadow.FarPlane, cfg.Post.Exposure)
}

func (p *RenderPipeline) Destroy() {
	if p.quad != nil {
		p.quad.Destroy()
		p.quad = nil
	}
	if p.post != nil {
		p.post.Destroy()
		p.post = nil
	}
	if p.lighting != nil {
		p.lighting.Destroy()
		p.lighting = nil
	}
	if p.ssao != nil {
		p.ssao.Destroy()
		p.ssao = nil
	}
	if p.geometry != nil {
		p.geometry.Destroy()
		p.geometry = nil
	}
	if p.shadow != nil {
		p.shadow.Destroy()
		p.shadow = nil
	}
	if p.sceneHDR != nil {
		p.sceneHDR.Destroy()
		p.sceneHDR = nil
	}
	if p.gbuffer != nil {
		p.gbuffer.Destroy()
		p.gbuffer = nil
	}
}
