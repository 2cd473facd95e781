package lightpass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureSingleRenderer(t *testing.T) {
	app := NewAppBuilder().Build()

	ensureSingleRenderer(app, RendererWGPU)
	assert.NotPanics(t, func() { ensureSingleRenderer(app, RendererWGPU) })
	assert.PanicsWithValue(t, "Multiple renderers installed: wgpu and gl", func() {
		ensureSingleRenderer(app, RendererGL)
	})

	tag, ok := Resource[RendererTag](app)
	assert.True(t, ok)
	assert.Equal(t, RendererWGPU, tag.Name)
}

func TestRendererModuleFollowsConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.IsType(t, WGPUModule{}, RendererModule(cfg))

	cfg.Renderer = RendererGL
	cfg.ShaderDir = "shaders"
	mod, ok := RendererModule(cfg).(GLModule)
	assert.True(t, ok)
	assert.Equal(t, "shaders", mod.ShaderDir)
}

func TestConfiguredRendererRefusesSecondBackend(t *testing.T) {
	app := NewAppBuilder().Build()
	ensureSingleRenderer(app, RendererWGPU)

	cfg := DefaultConfig()
	cfg.Renderer = RendererGL
	assert.PanicsWithValue(t, "Multiple renderers installed: wgpu and gl", func() {
		app.UseModules(RendererModule(cfg))
	})
}
