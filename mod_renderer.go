package tavern

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderable is the draw-item component: a mesh, its material, and a world
// model matrix. Entities carrying one are drawn by both the shadow and the
// geometry pass.
type Renderable struct {
	Mesh     *Mesh
	Material Material
	Model    mgl32.Mat4
}

// drawLocs caches per-program uniform locations so no draw ever resolves a
// uniform by name. Locations missing from a program (the shadow program has
// no material uniforms) resolve to -1 and the matching uploads are skipped.
type drawLocs struct {
	model          int32
	normalMatrix   int32
	flatColor      int32
	useDiffuseMap  int32
	useNormalMap   int32
	useSpecularMap int32
	roughness      int32
	metallic       int32
}

func resolveDrawLocs(program uint32) drawLocs {
	return drawLocs{
		model:          uniformLoc(program, "model"),
		normalMatrix:   uniformLoc(program, "normalMatrix"),
		flatColor:      uniformLoc(program, "flatColor"),
		useDiffuseMap:  uniformLoc(program, "useDiffuseMap"),
		useNormalMap:   uniformLoc(program, "useNormalMap"),
		useSpecularMap: uniformLoc(program, "useSpecularMap"),
		roughness:      uniformLoc(program, "roughness"),
		metallic:       uniformLoc(program, "metallic"),
	}
}

// normalMatrix is the inverse transpose of the model's upper 3x3, which
// keeps normals perpendicular to surfaces under non-uniform scale. A
// singular model matrix falls back to the plain rotation+scale block.
func normalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	if model.Det() == 0 {
		return model.Mat3()
	}
	return model.Inv().Transpose().Mat3()
}

// sceneDrawer walks every Renderable in scene order and issues one draw per
// item with the caller's program bound. It is the single boundary between
// the scene store and the pipeline; the passes never see entities.
type sceneDrawer struct {
	cmd  *Commands
	locs map[uint32]drawLocs
}

func newSceneDrawer() *sceneDrawer {
	return &sceneDrawer{locs: make(map[uint32]drawLocs)}
}

func (d *sceneDrawer) Draw(program uint32) {
	locs, ok := d.locs[program]
	if !ok {
		locs = resolveDrawLocs(program)
		d.locs[program] = locs
	}

	MakeQuery1[Renderable](d.cmd).Map(func(eid EntityId, r *Renderable) bool {
		if r.Mesh == nil {
			return true
		}
		model := r.Model
		gl.UniformMatrix4fv(locs.model, 1, false, &model[0])
		if locs.normalMatrix >= 0 {
			nm := normalMatrix(model)
			gl.UniformMatrix3fv(locs.normalMatrix, 1, false, &nm[0])
		}

		if locs.flatColor >= 0 {
			d.bindMaterial(&locs, &r.Material)
		}
		r.Mesh.Draw()
		return true
	})
}

func (d *sceneDrawer) bindMaterial(locs *drawLocs, mat *Material) {
	useDiffuse := mat.HasDiffuse && mat.Diffuse != nil
	useNormal := mat.HasNormal && mat.Normal != nil
	useSpecular := mat.HasSpecular && mat.Specular != nil

	gl.Uniform1i(locs.useDiffuseMap, boolUniform(useDiffuse))
	gl.Uniform1i(locs.useNormalMap, boolUniform(useNormal))
	gl.Uniform1i(locs.useSpecularMap, boolUniform(useSpecular))
	gl.Uniform3f(locs.flatColor, mat.FlatColor.X(), mat.FlatColor.Y(), mat.FlatColor.Z())
	gl.Uniform1f(locs.roughness, mat.Roughness)
	gl.Uniform1f(locs.metallic, mat.Metallic)

	if useDiffuse {
		gl.ActiveTexture(gl.TEXTURE0 + unitGeomDiffuse)
		gl.BindTexture(gl.TEXTURE_2D, mat.Diffuse.Handle)
	}
	if useNormal {
		gl.ActiveTexture(gl.TEXTURE0 + unitGeomNormal)
		gl.BindTexture(gl.TEXTURE_2D, mat.Normal.Handle)
	}
	if useSpecular {
		gl.ActiveTexture(gl.TEXTURE0 + unitGeomSpecular)
		gl.BindTexture(gl.TEXTURE_2D, mat.Specular.Handle)
	}
}

func boolUniform(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// RendererModule installs the deferred pipeline, the texture manager and the
// Render-stage frame system. It requires WindowModule, WalkCameraModule and
// LightsModule to be installed on the same app.
type RendererModule struct {
	// ConfigPath points at an optional TOML tuning file. Empty means
	// compiled-in defaults.
	ConfigPath string
	// LiveReload watches ConfigPath and applies scalar tuning changes at
	// frame start.
	LiveReload bool
	// Fov is the vertical field of view in degrees. Zero means 60.
	Fov float32
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	logger := app.Logger()

	// One pipeline per app. Installing a second renderer is a wiring bug,
	// not a configuration.
	if Resource[RenderPipeline](app) != nil {
		panic("renderer already installed")
	}

	cfg, err := LoadConfig(m.ConfigPath)
	if err != nil {
		logger.Warnf("pipeline config: %v, using defaults", err)
		cfg = DefaultConfig()
	}

	ws := Resource[WindowState](app)
	if ws == nil {
		panic("RendererModule requires WindowModule")
	}

	pipeline, err := NewRenderPipeline(ws.WindowWidth, ws.WindowHeight, cfg, logger)
	if err != nil {
		panic(err)
	}

	fov := m.Fov
	if fov <= 0 {
		fov = 60
	}

	cmd.AddResources(
		pipeline,
		NewTextureManager(logger),
		newSceneDrawer(),
		&frameCamera{fov: fov},
	)

	if m.LiveReload && m.ConfigPath != "" {
		watcher, werr := NewConfigWatcher(m.ConfigPath, logger)
		if werr != nil {
			logger.Warnf("config live reload disabled: %v", werr)
		} else {
			cmd.AddResources(watcher)
			app.UseSystem(System(configReloadSystem).InStage(PreUpdate))
			app.OnShutdown(func() { watcher.Close() })
		}
	}

	app.UseSystem(System(renderSystem).InStage(Render))
}

// frameCamera carries projection parameters that belong to the renderer, not
// to the walk camera.
type frameCamera struct {
	fov  float32
	near float32
	far  float32
}

func (f *frameCamera) planes() (float32, float32) {
	near, far := f.near, f.far
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = 100
	}
	return near, far
}

func configReloadSystem(watcher *ConfigWatcher, pipeline *RenderPipeline) {
	select {
	case cfg, ok := <-watcher.Updates():
		if ok {
			pipeline.ApplyConfig(cfg)
		}
	default:
	}
}

// renderSystem runs once per frame in the Render stage. Light state was
// refreshed in Update, so positions and colors are current when the shadow
// pass snapshots them here.
func renderSystem(cmd *Commands, pipeline *RenderPipeline, ws *WindowState,
	cam *Camera, registry *LightRegistry, drawer *sceneDrawer, fc *frameCamera) {

	shadowCfg := pipeline.Config().Shadow
	shadowed := 0
	for _, light := range registry.Active() {
		if shadowed >= shadowCfg.MaxShadowed {
			break
		}
		if err := light.EnsureShadow(shadowCfg.MapSize); err != nil {
			cmd.app.Logger().Warnf("light shadow allocation: %v", err)
			continue
		}
		shadowed++
	}

	aspect := float32(ws.WindowWidth) / float32(ws.WindowHeight)
	near, far := fc.planes()
	drawer.cmd = cmd

	err := pipeline.RenderFrame(FrameInput{
		View:       cam.ViewMatrix(),
		Projection: mgl32.Perspective(mgl32.DegToRad(fc.fov), aspect, near, far),
		CameraPos:  cam.Position,
		Lights:     registry.Active(),
		Scene:      drawer,
	})
	if err != nil {
		cmd.app.Logger().Errorf("frame: %v", err)
	}
}
