package tavern

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PointLight is an omnidirectional emitter. Radius is the hard cutoff beyond
// which attenuation is treated as zero. The shadow resource is allocated once
// on demand and repositioned afterwards, never reallocated per toggle.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Radius   float32

	shadow *ShadowCaster
}

// HasShadow reports whether this light owns an initialized shadow resource.
// Lights without one are shaded but never sampled for shadowing.
func (l *PointLight) HasShadow() bool {
	return l.shadow != nil
}

// EnsureShadow allocates the cube-map shadow resource if missing.
func (l *PointLight) EnsureShadow(mapSize int) error {
	if l.shadow != nil {
		return nil
	}
	sc, err := NewShadowCaster(mapSize)
	if err != nil {
		return fmt.Errorf("shadow resource: %w", err)
	}
	l.shadow = sc
	return nil
}

func (l *PointLight) DestroyShadow() {
	if l.shadow != nil {
		l.shadow.Destroy()
		l.shadow = nil
	}
}

// LightRegistry is the per-frame source of truth for active lights. It is
// refreshed before the shadow and lighting passes run; that ordering is a
// correctness requirement, not an optimization.
type LightRegistry struct {
	lights []*PointLight
	max    int
}

// NewLightRegistry builds a registry holding at most maxLights lights.
// Zero or negative means the configured default. The capacity never exceeds
// MaxShadowMaps: the lighting shader's uniform arrays cannot address more
// lights than that, and silently dropping the overflow at draw time would
// be worse than refusing the registration.
func NewLightRegistry(maxLights int) *LightRegistry {
	if maxLights <= 0 {
		maxLights = DefaultConfig().Light.MaxLights
	}
	if maxLights > MaxShadowMaps {
		maxLights = MaxShadowMaps
	}
	return &LightRegistry{max: maxLights}
}

func (r *LightRegistry) Add(l *PointLight) error {
	if len(r.lights) >= r.max {
		return fmt.Errorf("light registry full (%d)", r.max)
	}
	r.lights = append(r.lights, l)
	return nil
}

func (r *LightRegistry) Remove(l *PointLight) {
	for i, have := range r.lights {
		if have == l {
			r.lights = append(r.lights[:i], r.lights[i+1:]...)
			return
		}
	}
}

func (r *LightRegistry) Active() []*PointLight { return r.lights }
func (r *LightRegistry) Count() int            { return len(r.lights) }
func (r *LightRegistry) Max() int              { return r.max }

// Candle flickers its light color around a base intensity. The waveform is a
// sum of two incommensurate sines, cheap and aperiodic enough to read as
// flame.
type Candle struct {
	Light     *PointLight
	Base      mgl32.Vec3
	Amplitude float32
	Speed     float32
	phase     float32
}

func candleFlickerSystem(cmd *Commands, time *Time) {
	dt := float32(time.Dt.Seconds())
	MakeQuery1[Candle](cmd).Map(func(eid EntityId, c *Candle) bool {
		if c.Light == nil {
			return true
		}
		c.phase += dt * c.Speed
		flicker := 1 + c.Amplitude*(0.6*float32(math.Sin(float64(c.phase)))+
			0.4*float32(math.Sin(2.7*float64(c.phase)+1.3)))
		c.Light.Color = c.Base.Mul(flicker)
		return true
	})
}

// FlashlightState is the edge-triggered toggle state machine: Off → On → Off
// on each key press, decoupled from the render pipeline.
type FlashlightState int

const (
	FlashlightOff FlashlightState = iota
	FlashlightOn
)

// Flashlight is a camera-mounted light. Its PointLight keeps its shadow
// resource across toggles; turning it on only re-registers and repositions
// it.
type Flashlight struct {
	State FlashlightState
	Light *PointLight
}

// LightsModule installs the registry and the light-update systems. They run
// in Update, strictly before the Render-stage shadow pass consumes light
// positions. When no explicit MaxLights is given, the registry capacity
// comes from the render pipeline's light config, so install RendererModule
// first to honor a TOML max_lights override.
type LightsModule struct {
	MaxLights int
}

func (m LightsModule) Install(app *App, cmd *Commands) {
	max := m.MaxLights
	if max <= 0 {
		max = DefaultConfig().Light.MaxLights
		if pipeline := Resource[RenderPipeline](app); pipeline != nil {
			max = pipeline.Config().Light.MaxLights
		}
	}
	if max > MaxShadowMaps {
		app.Logger().Warnf("light registry capacity %d exceeds the %d-light shader bound, capping",
			max, MaxShadowMaps)
	}
	cmd.AddResources(NewLightRegistry(max))
	app.UseSystem(System(candleFlickerSystem).InStage(Update))
	app.UseSystem(System(flashlightSystem).InStage(Update))
}

func flashlightSystem(cmd *Commands, input *Input, cam *Camera, registry *LightRegistry) {
	MakeQuery1[Flashlight](cmd).Map(func(eid EntityId, f *Flashlight) bool {
		if f.Light == nil {
			return true
		}

		if input.JustPressed[KeyF] {
			switch f.State {
			case FlashlightOff:
				if err := registry.Add(f.Light); err == nil {
					f.State = FlashlightOn
				}
			case FlashlightOn:
				registry.Remove(f.Light)
				f.State = FlashlightOff
			}
		}

		if f.State == FlashlightOn {
			// Carried slightly ahead of the eye so near geometry still
			// receives light.
			f.Light.Position = cam.Position.Add(cam.Front.Mul(0.2))
		}
		return true
	})
}
