package tavern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 512, cfg.Shadow.MapSize)
	assert.Equal(t, float32(0.1), cfg.Shadow.NearPlane)
	assert.Equal(t, float32(25.0), cfg.Shadow.FarPlane)
	assert.Equal(t, float32(0.05), cfg.Shadow.Bias)
	assert.Equal(t, 8, cfg.Shadow.MaxShadowed)

	assert.Equal(t, 16, cfg.SSAO.Samples)
	assert.Equal(t, float32(0.5), cfg.SSAO.Radius)
	assert.Equal(t, float32(0.025), cfg.SSAO.Bias)
	assert.True(t, cfg.SSAO.Blur)

	assert.Equal(t, 8, cfg.Light.MaxLights)
	assert.Equal(t, float32(0.03), cfg.Light.Ambient)
	assert.Equal(t, float32(2.2), cfg.Post.Gamma)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesOnTopOfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tavern.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[shadow]
bias = 0.1
far_plane = 40.0

[post]
exposure = 1.5
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, float32(0.1), cfg.Shadow.Bias)
	assert.Equal(t, float32(40.0), cfg.Shadow.FarPlane)
	assert.Equal(t, float32(1.5), cfg.Post.Exposure)

	// Everything not mentioned keeps its default.
	assert.Equal(t, 512, cfg.Shadow.MapSize)
	assert.Equal(t, 16, cfg.SSAO.Samples)
	assert.Equal(t, float32(2.2), cfg.Post.Gamma)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[shadow\nbias ="), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
