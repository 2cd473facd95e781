package lightpass

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, RendererWGPU, cfg.Renderer)
	assert.Len(t, cfg.Models, 6)
	assert.Equal(t, float32(3), cfg.Movement.Speed)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
renderer: gl
window:
  width: 800
  clear_colour: [0.2, 0.2, 0.2, 1]
lights:
  point:
    - position: [1, 2, 3]
      colour: [0, 1, 0]
      attenuation: [1, 0, 0]
models:
  - name: crate
    path: crate.glb
    position: [0, 1, 0]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, RendererGL, cfg.Renderer)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 768, cfg.Window.Height, "unset fields keep defaults")
	assert.Equal(t, mgl32.Vec4{0.2, 0.2, 0.2, 1}, cfg.Window.ClearColour)
	require.Len(t, cfg.Lights.Point, 1)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cfg.Lights.Point[0].Position)
	require.NotNil(t, cfg.Lights.Directional)
	require.Len(t, cfg.Models, 1)
	assert.Equal(t, float32(1), cfg.Models[0].Scale)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "window: [oops"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "renderer: vulkan\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	cfg.Camera.Near = 0
	cfg.Models = append(cfg.Models, ModelConfig{Name: "beast", Path: "x.glb", Scale: 1, Tracked: true})

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "clip planes")
	assert.Contains(t, err.Error(), `duplicate model name "beast"`)
	assert.Contains(t, err.Error(), "at most one model can be tracked")
}

func TestAssetPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AssetDir = "data"

	assert.Equal(t, filepath.Join("data", "beast", "beast.glb"), cfg.AssetPath("beast/beast.glb"))
	assert.Equal(t, "", cfg.AssetPath(""))
	abs := filepath.Join(t.TempDir(), "a.bmp")
	assert.Equal(t, abs, cfg.AssetPath(abs))
}

func TestConfigModuleRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Renderer = "vulkan"
	app := NewAppBuilder().UseModule(ConfigModule{Config: cfg}).Build()

	assert.ErrorIs(t, app.Run(), ErrInvalidConfig)
	_, ok := Resource[Config](app)
	assert.False(t, ok)
}
