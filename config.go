package tavern

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PipelineConfig collects every tuned constant of the render pipeline. The
// bias and attenuation values are empirical; they are configuration, not
// derived quantities, and ship with defaults that match the demo scene.
type PipelineConfig struct {
	Shadow  ShadowConfig  `toml:"shadow"`
	SSAO    SSAOConfig    `toml:"ssao"`
	Light   LightConfig   `toml:"light"`
	Post    PostConfig    `toml:"post"`
	GBuffer GBufferConfig `toml:"gbuffer"`
}

type ShadowConfig struct {
	MapSize   int     `toml:"map_size"`
	NearPlane float32 `toml:"near_plane"`
	FarPlane  float32 `toml:"far_plane"`
	Bias      float32 `toml:"bias"`
	// MaxShadowed caps the number of index-aligned shadow cube maps the
	// lighting shader samples. Lights past the cap shade without shadow.
	MaxShadowed int `toml:"max_shadowed"`
}

type SSAOConfig struct {
	Samples int     `toml:"samples"`
	Radius  float32 `toml:"radius"`
	Power   float32 `toml:"power"`
	// Bias keeps coplanar samples from self-occluding; view-space units.
	Bias float32 `toml:"bias"`
	Blur bool    `toml:"blur"`
}

type LightConfig struct {
	// MaxLights is the default light registry capacity; the registry hard
	// caps at MaxShadowMaps, the lighting shader's array bound.
	MaxLights   int     `toml:"max_lights"`
	Ambient     float32 `toml:"ambient"`
	Shininess   float32 `toml:"shininess"`
	AttenLinear float32 `toml:"atten_linear"`
	AttenQuad   float32 `toml:"atten_quad"`
}

type PostConfig struct {
	Exposure float32    `toml:"exposure"`
	Gamma    float32    `toml:"gamma"`
	WarmTint [3]float32 `toml:"warm_tint"`
	Vignette float32    `toml:"vignette"`
}

type GBufferConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// DefaultConfig returns the tuned defaults. Zero width/height means "match
// the window".
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Shadow: ShadowConfig{
			MapSize:     512,
			NearPlane:   0.1,
			FarPlane:    25.0,
			Bias:        0.05,
			MaxShadowed: 8,
		},
		SSAO: SSAOConfig{
			Samples: 16,
			Radius:  0.5,
			Power:   2.0,
			Bias:    0.025,
			Blur:    true,
		},
		Light: LightConfig{
			MaxLights:   8,
			Ambient:     0.03,
			Shininess:   32.0,
			AttenLinear: 0.09,
			AttenQuad:   0.032,
		},
		Post: PostConfig{
			Exposure: 1.0,
			Gamma:    2.2,
			WarmTint: [3]float32{1.05, 1.0, 0.92},
			Vignette: 0.35,
		},
	}
}

// LoadConfig reads a TOML override file on top of the defaults. A missing
// path is not an error: the defaults are returned unchanged.
func LoadConfig(path string) (PipelineConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
